package feed

import (
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/op/go-logging"

	"github.com/CrestNiraj12/hntui/app"
	"github.com/CrestNiraj12/hntui/domain"
	"github.com/CrestNiraj12/hntui/tui/common"
)

var log = logging.MustGetLogger("feed")

const hnItemURL = "https://news.ycombinator.com/item?id=%d"

// ViewMode selects which list the controller is showing.
type ViewMode int

const (
	ViewStories ViewMode = iota
	ViewComments
)

// LoadMode says whether a story result replaces or extends the list.
type LoadMode int

const (
	LoadReplace LoadMode = iota
	LoadAppend
)

// Every background result carries the generation it was issued under and
// is dropped when that generation is no longer current.

// StoriesLoadedMsg is sent when a story list fetch completes.
// IDs is the full top-level id list and is only set for LoadReplace.
type StoriesLoadedMsg struct {
	Gen     uint64
	Mode    LoadMode
	IDs     []int64
	Stories []domain.Story
}

// StoriesErrorMsg is sent when a story list fetch fails.
type StoriesErrorMsg struct {
	Gen  uint64
	Mode LoadMode
	Err  error
}

// CommentsLoadedMsg is sent when a foreground comment load completes.
type CommentsLoadedMsg struct {
	Gen     uint64
	StoryID int64
	Nodes   []domain.CommentNode
}

// CommentsErrorMsg is sent when a foreground comment load fails.
type CommentsErrorMsg struct {
	Gen     uint64
	StoryID int64
	Err     error
}

// CommentsPrefetchedMsg is sent when an idle prefetch completes.
type CommentsPrefetchedMsg struct {
	Gen     uint64
	StoryID int64
	Nodes   []domain.CommentNode
}

// CommentsPrefetchErrorMsg is sent when an idle prefetch fails.
type CommentsPrefetchErrorMsg struct {
	Gen     uint64
	StoryID int64
	Err     error
}

// CommentChildrenLoadedMsg is sent when the replies of one comment arrive.
type CommentChildrenLoadedMsg struct {
	Gen      uint64
	ParentID int64
	Nodes    []domain.CommentNode
}

// CommentChildrenErrorMsg is sent when loading the replies of one comment fails.
type CommentChildrenErrorMsg struct {
	Gen      uint64
	ParentID int64
	Err      error
}

// TickMsg drives the spinner and the idle prefetch check.
type TickMsg time.Time

// StateSavedMsg reports the result of a background story list save.
type StateSavedMsg struct {
	Err error
}

type browserResultMsg struct {
	Err error
}

// Options tunes the controller.
type Options struct {
	Count                int           // stories in the first page
	PageSize             int           // stories appended per page
	PrefetchIdleDelay    time.Duration // idle time before comment prefetch
	MaxCommentPrefetches int           // concurrent comment prefetches
	DefaultVisibleLevels int           // comment levels shown expanded on open
	TickInterval         time.Duration
}

// DefaultOptions mirrors the config defaults.
func DefaultOptions() Options {
	return Options{
		Count:                30,
		PageSize:             30,
		PrefetchIdleDelay:    400 * time.Millisecond,
		MaxCommentPrefetches: 2,
		DefaultVisibleLevels: 2,
		TickInterval:         120 * time.Millisecond,
	}
}

// --- Model ---

type modelServices struct {
	svc   app.StoryService
	store app.StateStore // nil disables persistence
}

type storyState struct {
	stories      []domain.Story
	storyIDs     []int64
	storyList    listState
	storyLoading bool // replace load in flight
	pageLoading  bool // append load in flight
}

type commentState struct {
	currentStory       *domain.Story
	commentTree        []domain.CommentNode
	commentList        []domain.Comment // flattened visible rows
	commentCursor      listState
	commentLoading     bool
	childrenInFlight   map[int64]uint64 // parent id -> generation
	awaitingPrefetchID int64
}

type prefetchState struct {
	prefetched       map[int64][]domain.CommentNode
	prefetchInFlight map[int64]struct{}
	lastInput        time.Time
}

// generations holds one counter per operation class. The children counter
// is a shared source; childrenInFlight records which value each parent's
// request was issued under.
type generations struct {
	stories         uint64
	comments        uint64
	commentPrefetch uint64
	commentChildren uint64
}

type uiState struct {
	keys        common.KeyMap
	help        help.Model
	spinner     spinner.Model
	width       int
	height      int
	view        ViewMode
	helpVisible bool
	quit        bool
	pendingG    bool
	lastError   string
	now         func() time.Time
}

// Model is the story/comment controller. It is the only writer of the
// list, selection and comment tree state.
type Model struct {
	modelServices
	storyState
	commentState
	prefetchState
	uiState
	opts Options
	gen  generations
}

// New creates a controller. store may be nil.
func New(svc app.StoryService, store app.StateStore, opts Options) Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(common.Accent)

	return Model{
		modelServices: modelServices{
			svc:   svc,
			store: store,
		},
		storyState: storyState{
			storyLoading: true,
		},
		commentState: commentState{
			childrenInFlight: make(map[int64]uint64),
		},
		prefetchState: prefetchState{
			prefetched:       make(map[int64][]domain.CommentNode),
			prefetchInFlight: make(map[int64]struct{}),
			lastInput:        time.Now(),
		},
		uiState: uiState{
			keys:    common.DefaultKeyMap(),
			help:    help.New(),
			spinner: s,
			now:     time.Now,
		},
		opts: opts,
	}
}

// Init starts the initial story fetch and the tick loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.fetchStories(m.gen.stories, false),
		m.scheduleTick(),
	)
}

// Update handles messages for the controller.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	return m.update(msg)
}

// Restore shows a saved story list before the first fetch completes.
// An empty snapshot is refused.
func (m Model) Restore(st domain.StoryListState) Model {
	if len(st.StoryIDs) == 0 || len(st.Stories) == 0 {
		m.lastError = "refusing to restore empty story list state"
		return m
	}
	m.storyIDs = slices.Clone(st.StoryIDs)
	m.stories = slices.Clone(st.Stories)
	m.storyList = listState{}
	return m
}

// --- Accessors ---

func (m Model) Mode() ViewMode                    { return m.view }
func (m Model) Stories() []domain.Story           { return m.stories }
func (m Model) StoryIDs() []int64                 { return m.storyIDs }
func (m Model) StoryCursor() int                  { return m.storyList.selected }
func (m Model) StoryOffset() int                  { return m.storyList.offset }
func (m Model) Comments() []domain.Comment        { return m.commentList }
func (m Model) CommentCursor() int                { return m.commentCursor.selected }
func (m Model) CommentTree() []domain.CommentNode { return m.commentTree }
func (m Model) StoryLoading() bool                { return m.storyLoading }
func (m Model) CommentLoading() bool              { return m.commentLoading }
func (m Model) LastError() string                 { return m.lastError }
func (m Model) HelpVisible() bool                 { return m.helpVisible }
func (m Model) ShouldQuit() bool                  { return m.quit }

// SelectedStory returns the story under the cursor.
func (m Model) SelectedStory() (domain.Story, bool) {
	i := m.storyList.selected
	if i < 0 || i >= len(m.stories) {
		return domain.Story{}, false
	}
	return m.stories[i], true
}

// CurrentStory returns the story whose comments are shown or loading.
func (m Model) CurrentStory() (domain.Story, bool) {
	if m.currentStory == nil {
		return domain.Story{}, false
	}
	return *m.currentStory, true
}

// Busy reports whether any background load is outstanding.
func (m Model) Busy() bool {
	return m.storyLoading ||
		m.pageLoading ||
		m.commentLoading ||
		len(m.prefetchInFlight) > 0 ||
		len(m.childrenInFlight) > 0
}

func (m Model) selectedComment() (domain.Comment, bool) {
	i := m.commentCursor.selected
	if i < 0 || i >= len(m.commentList) {
		return domain.Comment{}, false
	}
	return m.commentList[i], true
}

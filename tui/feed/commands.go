package feed

import (
	"context"
	"fmt"
	"net/url"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/hntui/domain"
)

func (m Model) scheduleTick() tea.Cmd {
	return tea.Tick(m.opts.TickInterval, func(t time.Time) tea.Msg {
		return TickMsg(t)
	})
}

// fetchStories loads the top id list and the first Count stories.
func (m Model) fetchStories(gen uint64, force bool) tea.Cmd {
	svc := m.svc
	count := m.opts.Count
	return func() tea.Msg {
		ctx := context.Background()
		var (
			ids []int64
			err error
		)
		if force {
			ids, err = svc.FetchTopStoryIDsForce(ctx)
		} else {
			ids, err = svc.FetchTopStoryIDs(ctx)
		}
		if err != nil {
			return StoriesErrorMsg{Gen: gen, Mode: LoadReplace, Err: err}
		}
		stories, err := svc.FetchStoriesBatch(ctx, ids[:min(count, len(ids))])
		if err != nil {
			return StoriesErrorMsg{Gen: gen, Mode: LoadReplace, Err: err}
		}
		return StoriesLoadedMsg{Gen: gen, Mode: LoadReplace, IDs: ids, Stories: stories}
	}
}

func (m Model) fetchStoryPage(ids []int64, gen uint64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		stories, err := svc.FetchStoriesBatch(context.Background(), ids)
		if err != nil {
			return StoriesErrorMsg{Gen: gen, Mode: LoadAppend, Err: err}
		}
		return StoriesLoadedMsg{Gen: gen, Mode: LoadAppend, Stories: stories}
	}
}

func (m Model) fetchComments(story domain.Story, gen uint64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		nodes, err := svc.FetchCommentRoots(context.Background(), story)
		if err != nil {
			return CommentsErrorMsg{Gen: gen, StoryID: story.ID, Err: err}
		}
		return CommentsLoadedMsg{Gen: gen, StoryID: story.ID, Nodes: nodes}
	}
}

func (m Model) prefetchComments(story domain.Story, gen uint64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		nodes, err := svc.FetchCommentRoots(context.Background(), story)
		if err != nil {
			return CommentsPrefetchErrorMsg{Gen: gen, StoryID: story.ID, Err: err}
		}
		return CommentsPrefetchedMsg{Gen: gen, StoryID: story.ID, Nodes: nodes}
	}
}

func (m Model) fetchChildren(parentID int64, kids []int64, depth int, gen uint64) tea.Cmd {
	svc := m.svc
	return func() tea.Msg {
		nodes, err := svc.FetchCommentChildren(context.Background(), kids, depth)
		if err != nil {
			return CommentChildrenErrorMsg{Gen: gen, ParentID: parentID, Err: err}
		}
		return CommentChildrenLoadedMsg{Gen: gen, ParentID: parentID, Nodes: nodes}
	}
}

// saveState persists the story list in the background.
func (m Model) saveState() tea.Cmd {
	store := m.store
	if store == nil || len(m.storyIDs) == 0 || len(m.stories) == 0 {
		return nil
	}
	ids := slices.Clone(m.storyIDs)
	stories := slices.Clone(m.stories)
	return func() tea.Msg {
		return StateSavedMsg{Err: store.Save(context.Background(), ids, stories)}
	}
}

// SaveState persists the story list synchronously. It is a no-op without
// a store or with nothing loaded.
func (m Model) SaveState(ctx context.Context) error {
	if m.store == nil || len(m.storyIDs) == 0 || len(m.stories) == 0 {
		return nil
	}
	return m.store.Save(ctx, m.storyIDs, m.stories)
}

func storyURL(st domain.Story) string {
	if st.URL != "" && isSafeExternalURL(st.URL) {
		return st.URL
	}
	return itemURL(st.ID)
}

func itemURL(id int64) string {
	return fmt.Sprintf(hnItemURL, id)
}

func openURL(rawURL string) tea.Cmd {
	return func() tea.Msg {
		if !isSafeExternalURL(rawURL) {
			return browserResultMsg{Err: fmt.Errorf("refusing to open %q", rawURL)}
		}
		name, args := browserCommand(rawURL)
		if err := exec.Command(name, args...).Start(); err != nil {
			return browserResultMsg{Err: fmt.Errorf("open in browser: %w", err)}
		}
		return browserResultMsg{}
	}
}

func browserCommand(rawURL string) (string, []string) {
	switch runtime.GOOS {
	case "darwin":
		return "open", []string{rawURL}
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", rawURL}
	default:
		return "xdg-open", []string{rawURL}
	}
}

func isSafeExternalURL(raw string) bool {
	parsed, err := url.Parse(raw)
	if err != nil {
		return false
	}
	if parsed.Host == "" {
		return false
	}
	switch strings.ToLower(parsed.Scheme) {
	case "http", "https":
		return true
	default:
		return false
	}
}

package feed

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/hntui/domain"
)

func (m Model) handleDetailThreadMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case CommentsLoadedMsg:
		if !m.isCurrentCommentLoad(msg.Gen, msg.StoryID) {
			return m, nil
		}
		m.applyComments(msg.Nodes)
		return m, nil

	case CommentsErrorMsg:
		if !m.isCurrentCommentLoad(msg.Gen, msg.StoryID) {
			return m, nil
		}
		m.commentLoading = false
		m.lastError = msg.Err.Error()
		return m, nil

	case CommentsPrefetchedMsg:
		if msg.Gen != m.gen.commentPrefetch {
			return m, nil
		}
		delete(m.prefetchInFlight, msg.StoryID)
		if m.isAwaiting(msg.StoryID) {
			m.applyComments(msg.Nodes)
			return m, nil
		}
		m.prefetched[msg.StoryID] = msg.Nodes
		return m, nil

	case CommentsPrefetchErrorMsg:
		if msg.Gen != m.gen.commentPrefetch {
			return m, nil
		}
		delete(m.prefetchInFlight, msg.StoryID)
		log.Warningf("prefetch comments for story %d: %v", msg.StoryID, msg.Err)
		if m.isAwaiting(msg.StoryID) {
			cmd := m.loadComments(*m.currentStory)
			return m, cmd
		}
		return m, nil

	case CommentChildrenLoadedMsg:
		if !m.takeChildrenLoad(msg.ParentID, msg.Gen) {
			return m, nil
		}
		if err := domain.AttachChildren(m.commentTree, msg.ParentID, msg.Nodes); err != nil {
			m.lastError = err.Error()
			return m, nil
		}
		m.rebuildComments(msg.ParentID)
		return m, nil

	case CommentChildrenErrorMsg:
		if !m.takeChildrenLoad(msg.ParentID, msg.Gen) {
			return m, nil
		}
		m.lastError = msg.Err.Error()
		if err := domain.SetChildrenLoading(m.commentTree, msg.ParentID, false); err != nil {
			log.Warningf("failed replies of comment %d: %v", msg.ParentID, err)
			m.lastError = err.Error()
			return m, nil
		}
		if err := domain.SetCollapsed(m.commentTree, msg.ParentID, true); err != nil {
			m.lastError = err.Error()
			return m, nil
		}
		m.rebuildComments(msg.ParentID)
		return m, nil
	}

	return m, nil
}

func (m Model) isCurrentCommentLoad(gen uint64, storyID int64) bool {
	return gen == m.gen.comments && m.currentStory != nil && m.currentStory.ID == storyID
}

func (m Model) isAwaiting(storyID int64) bool {
	return m.awaitingPrefetchID == storyID && m.currentStory != nil && m.currentStory.ID == storyID
}

// takeChildrenLoad consumes the in-flight record for parentID when gen is
// the one it was issued under.
func (m *Model) takeChildrenLoad(parentID int64, gen uint64) bool {
	issued, ok := m.childrenInFlight[parentID]
	if !ok || issued != gen {
		return false
	}
	delete(m.childrenInFlight, parentID)
	return true
}

// openSelected shows the comments of the selected story, reusing a loaded
// or prefetched tree, or waiting on a running prefetch, before falling back
// to a foreground load.
func (m *Model) openSelected() tea.Cmd {
	st, ok := m.SelectedStory()
	if !ok {
		return nil
	}
	m.view = ViewComments

	if m.currentStory != nil && m.currentStory.ID == st.ID && len(m.commentTree) > 0 && !m.commentLoading {
		return nil
	}

	if nodes, ok := m.prefetched[st.ID]; ok {
		delete(m.prefetched, st.ID)
		m.resetComments(st)
		m.applyComments(nodes)
		return nil
	}

	if _, ok := m.prefetchInFlight[st.ID]; ok {
		m.resetComments(st)
		m.lastError = ""
		m.commentLoading = true
		m.awaitingPrefetchID = st.ID
		return nil
	}

	return m.loadComments(st)
}

// resetComments points the comment view at story with an empty tree and
// supersedes any foreground load still running for the previous story.
func (m *Model) resetComments(story domain.Story) {
	m.gen.comments++
	m.currentStory = &story
	m.commentTree = nil
	m.commentList = nil
	m.commentCursor = listState{}
	m.childrenInFlight = make(map[int64]uint64)
	m.awaitingPrefetchID = 0
}

func (m *Model) loadComments(story domain.Story) tea.Cmd {
	m.resetComments(story)
	m.lastError = ""
	m.commentLoading = true
	return m.fetchComments(story, m.gen.comments)
}

func (m *Model) applyComments(nodes []domain.CommentNode) {
	m.commentLoading = false
	m.awaitingPrefetchID = 0
	m.childrenInFlight = make(map[int64]uint64)
	m.lastError = ""
	m.commentTree = nodes
	domain.ExpandLoaded(m.commentTree, m.opts.DefaultVisibleLevels-1)
	m.commentCursor = listState{}
	m.rebuildComments(0)
}

// rebuildComments re-flattens the tree, keeping the cursor on keepID when
// it is still visible.
func (m *Model) rebuildComments(keepID int64) {
	m.commentList = domain.Flatten(m.commentTree)
	if keepID != 0 {
		i := slices.IndexFunc(m.commentList, func(c domain.Comment) bool { return c.ID == keepID })
		m.commentCursor.selectIndex(i, len(m.commentList))
	}
	m.commentCursor.ensureVisible(len(m.commentList), m.commentPageSize())
}

func (m *Model) collapseSelected() {
	c, ok := m.selectedComment()
	if !ok || !c.HasReplies() || c.Collapsed {
		return
	}
	if err := domain.SetCollapsed(m.commentTree, c.ID, true); err != nil {
		m.lastError = err.Error()
		return
	}
	m.rebuildComments(c.ID)
}

// expandSelected uncollapses the selected comment, loading its replies
// first when they have never been fetched.
func (m *Model) expandSelected() tea.Cmd {
	c, ok := m.selectedComment()
	if !ok || !c.HasReplies() {
		return nil
	}
	if err := domain.SetCollapsed(m.commentTree, c.ID, false); err != nil {
		m.lastError = err.Error()
		return nil
	}
	if !c.ChildrenLoaded && !c.ChildrenLoading {
		return m.loadChildren(c.ID)
	}
	m.rebuildComments(c.ID)
	return nil
}

func (m *Model) toggleSelected() tea.Cmd {
	c, ok := m.selectedComment()
	if !ok || !c.HasReplies() {
		return nil
	}
	if c.Collapsed {
		return m.expandSelected()
	}
	m.collapseSelected()
	return nil
}

// loadChildren fetches exactly the immediate replies of parentID.
func (m *Model) loadChildren(parentID int64) tea.Cmd {
	if _, ok := m.childrenInFlight[parentID]; ok {
		return nil
	}
	node := domain.FindComment(m.commentTree, parentID)
	if node == nil {
		m.lastError = fmt.Sprintf("%v: id=%d", domain.ErrCommentNotFound, parentID)
		return nil
	}
	c := node.Comment
	if !c.HasReplies() || c.ChildrenLoaded || c.ChildrenLoading {
		return nil
	}

	m.gen.commentChildren++
	gen := m.gen.commentChildren
	m.childrenInFlight[parentID] = gen
	node.Comment.ChildrenLoading = true
	node.Comment.Collapsed = false
	m.rebuildComments(parentID)

	return m.fetchChildren(parentID, slices.Clone(c.Kids), c.Depth+1, gen)
}

package feed

import tea "github.com/charmbracelet/bubbletea"

// Action is a user intent, independent of the key that produced it.
type Action int

const (
	ActionUp Action = iota
	ActionDown
	ActionPageUp
	ActionPageDown
	ActionTop
	ActionBottom
	ActionOpen
	ActionBack
	ActionQuit
	ActionRefresh
	ActionCollapse
	ActionExpand
	ActionToggle
	ActionOpenInBrowser
	ActionToggleHelp
)

// Do applies a user action. Every action resets the idle timer used by
// the comment prefetch scheduler.
func (m Model) Do(a Action) (Model, tea.Cmd) {
	m.lastInput = m.now()

	switch a {
	case ActionQuit:
		m.quit = true
		return m, nil
	case ActionToggleHelp:
		m.helpVisible = !m.helpVisible
		return m, nil
	}
	if m.helpVisible {
		if a == ActionBack {
			m.helpVisible = false
		}
		return m, nil
	}

	var cmd tea.Cmd
	if m.view == ViewComments {
		cmd = m.doComments(a)
	} else {
		cmd = m.doStories(a)
	}
	return m, cmd
}

func (m *Model) doStories(a Action) tea.Cmd {
	n, page := len(m.stories), m.storyPageSize()
	switch a {
	case ActionBack:
		m.quit = true
	case ActionRefresh:
		return m.refreshStories(true)
	case ActionOpen, ActionExpand:
		return m.openSelected()
	case ActionOpenInBrowser:
		st, ok := m.SelectedStory()
		if !ok {
			return nil
		}
		return openURL(storyURL(st))
	case ActionUp:
		m.storyList.moveUp()
		m.storyList.ensureVisible(n, page)
	case ActionDown:
		m.storyList.moveDown(n)
		m.storyList.ensureVisible(n, page)
		return m.maybePrefetchStories()
	case ActionPageUp:
		m.storyList.pageUp(n, page)
	case ActionPageDown:
		m.storyList.pageDown(n, page)
		return m.maybePrefetchStories()
	case ActionTop:
		m.storyList.top()
	case ActionBottom:
		m.storyList.bottom(n, page)
		return m.maybePrefetchStories()
	}
	return nil
}

func (m *Model) doComments(a Action) tea.Cmd {
	n, page := len(m.commentList), m.commentPageSize()
	switch a {
	case ActionBack:
		m.view = ViewStories
	case ActionRefresh:
		if m.currentStory == nil {
			m.lastError = "no current story"
			return nil
		}
		return m.loadComments(*m.currentStory)
	case ActionOpenInBrowser:
		if m.currentStory == nil {
			return nil
		}
		return openURL(itemURL(m.currentStory.ID))
	case ActionOpen, ActionToggle:
		return m.toggleSelected()
	case ActionCollapse:
		m.collapseSelected()
	case ActionExpand:
		return m.expandSelected()
	case ActionUp:
		m.commentCursor.moveUp()
		m.commentCursor.ensureVisible(n, page)
	case ActionDown:
		m.commentCursor.moveDown(n)
		m.commentCursor.ensureVisible(n, page)
	case ActionPageUp:
		m.commentCursor.pageUp(n, page)
	case ActionPageDown:
		m.commentCursor.pageDown(n, page)
	case ActionTop:
		m.commentCursor.top()
	case ActionBottom:
		m.commentCursor.bottom(n, page)
	}
	return nil
}

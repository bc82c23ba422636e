package feed

import (
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.storyList.ensureVisible(len(m.stories), m.storyPageSize())
		m.commentCursor.ensureVisible(len(m.commentList), m.commentPageSize())
		cmd := m.maybePrefetchStories()
		return m, cmd

	case TickMsg:
		updated, cmd := m.Tick(time.Time(msg))
		return updated, tea.Batch(cmd, updated.scheduleTick())

	case browserResultMsg:
		if msg.Err != nil {
			m.lastError = msg.Err.Error()
		}
		return m, nil
	}

	switch msg := msg.(type) {
	case StoriesLoadedMsg, StoriesErrorMsg, StateSavedMsg:
		return m.handleFeedLoadingMsg(msg)
	case CommentsLoadedMsg, CommentsErrorMsg, CommentsPrefetchedMsg, CommentsPrefetchErrorMsg,
		CommentChildrenLoadedMsg, CommentChildrenErrorMsg:
		return m.handleDetailThreadMsg(msg)
	case tea.KeyMsg:
		return m.handleKeyMsg(msg)
	}

	return m, nil
}

// Tick advances the spinner while busy and runs the idle comment prefetch
// check. It does not count as user input.
func (m Model) Tick(now time.Time) (Model, tea.Cmd) {
	if m.Busy() {
		m.spinner, _ = m.spinner.Update(m.spinner.Tick())
	}
	// Returns early until input has been idle for PrefetchIdleDelay.
	cmd := m.maybePrefetchComments(now)
	return m, cmd
}

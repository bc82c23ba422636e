package feed

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/hntui/domain"
)

func (m Model) handleFeedLoadingMsg(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case StoriesLoadedMsg:
		if msg.Gen != m.gen.stories {
			return m, nil
		}
		var cmds []tea.Cmd
		switch msg.Mode {
		case LoadReplace:
			// Keep the cursor on the same story when it survived the refresh.
			prev, hadPrev := m.SelectedStory()
			m.storyLoading = false
			m.pageLoading = false
			m.storyIDs = msg.IDs
			m.stories = msg.Stories
			m.storyList = listState{}
			if hadPrev {
				m.storyList.selectIndex(indexOfStory(m.stories, prev.ID), len(m.stories))
			}
			cmds = append(cmds, m.invalidatePrefetch())
		case LoadAppend:
			m.pageLoading = false
			m.stories = append(m.stories, msg.Stories...)
		}
		m.lastError = ""
		m.storyList.ensureVisible(len(m.stories), m.storyPageSize())
		cmds = append(cmds, m.saveState(), m.maybePrefetchStories())
		return m, tea.Batch(cmds...)

	case StoriesErrorMsg:
		if msg.Gen != m.gen.stories {
			return m, nil
		}
		if msg.Mode == LoadReplace {
			m.storyLoading = false
		}
		m.pageLoading = false
		m.lastError = msg.Err.Error()
		return m, nil

	case StateSavedMsg:
		if msg.Err != nil {
			log.Warningf("save story list state: %v", msg.Err)
		}
		return m, nil
	}

	return m, nil
}

// invalidatePrefetch drops every prefetched or in-flight comment tree,
// since story ids may point at different content after a reload. A story
// that was waiting on a prefetch is loaded in the foreground instead.
func (m *Model) invalidatePrefetch() tea.Cmd {
	m.gen.commentPrefetch++
	m.prefetched = make(map[int64][]domain.CommentNode)
	m.prefetchInFlight = make(map[int64]struct{})
	if m.awaitingPrefetchID != 0 && m.currentStory != nil {
		return m.loadComments(*m.currentStory)
	}
	return nil
}

// refreshStories reloads the first page. force bypasses the id list cache.
func (m *Model) refreshStories(force bool) tea.Cmd {
	m.gen.stories++
	m.lastError = ""
	m.storyLoading = true
	m.pageLoading = false
	if len(m.stories) == 0 {
		m.storyList = listState{}
	}
	return m.fetchStories(m.gen.stories, force)
}

// maybePrefetchStories appends the next page once the cursor passes 80%
// of the loaded list, or when the list does not fill the screen.
func (m *Model) maybePrefetchStories() tea.Cmd {
	if m.storyLoading || m.pageLoading {
		return nil
	}
	loaded := len(m.stories)
	if loaded == 0 || len(m.storyIDs) == 0 || loaded >= len(m.storyIDs) {
		return nil
	}
	fillsScreen := loaded >= m.storyPageSize()
	if fillsScreen && m.storyList.selected*10 < loaded*8 {
		return nil
	}

	end := min(loaded+max(m.opts.PageSize, 1), len(m.storyIDs))
	ids := append([]int64(nil), m.storyIDs[loaded:end]...)
	m.pageLoading = true
	return m.fetchStoryPage(ids, m.gen.stories)
}

func indexOfStory(stories []domain.Story, id int64) int {
	for i, s := range stories {
		if s.ID == id {
			return i
		}
	}
	return -1
}

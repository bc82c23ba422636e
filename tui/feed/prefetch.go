package feed

import (
	"slices"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/hntui/domain"
)

// maybePrefetchComments starts comment prefetches for the visible stories
// closest to the cursor once input has been idle for PrefetchIdleDelay,
// keeping at most MaxCommentPrefetches in flight.
func (m *Model) maybePrefetchComments(now time.Time) tea.Cmd {
	if m.view != ViewStories || len(m.stories) == 0 {
		return nil
	}
	if now.Sub(m.lastInput) < m.opts.PrefetchIdleDelay {
		return nil
	}
	slots := m.opts.MaxCommentPrefetches - len(m.prefetchInFlight)
	if slots <= 0 {
		return nil
	}

	var cmds []tea.Cmd
	for _, i := range m.prefetchCandidates() {
		if slots == 0 {
			break
		}
		st := m.stories[i]
		if !m.wantsPrefetch(st) {
			continue
		}
		m.prefetchInFlight[st.ID] = struct{}{}
		cmds = append(cmds, m.prefetchComments(st, m.gen.commentPrefetch))
		slots--
	}
	return tea.Batch(cmds...)
}

// prefetchCandidates lists the visible story indexes ordered by distance
// from the cursor, the upper neighbour first on ties.
func (m Model) prefetchCandidates() []int {
	start, end := m.storyList.window(len(m.stories), m.storyPageSize())
	sel := m.storyList.selected
	out := make([]int, 0, end-start)
	for i := start; i < end; i++ {
		out = append(out, i)
	}
	slices.SortStableFunc(out, func(a, b int) int {
		return abs(a-sel) - abs(b-sel)
	})
	return out
}

func (m Model) wantsPrefetch(st domain.Story) bool {
	if len(st.Kids) == 0 {
		return false
	}
	if _, ok := m.prefetched[st.ID]; ok {
		return false
	}
	if _, ok := m.prefetchInFlight[st.ID]; ok {
		return false
	}
	if m.currentStory != nil && m.currentStory.ID == st.ID && len(m.commentTree) > 0 {
		return false
	}
	return true
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

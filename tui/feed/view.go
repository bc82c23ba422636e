package feed

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/CrestNiraj12/hntui/domain"
	"github.com/CrestNiraj12/hntui/tui/common"
)

const (
	chromeLines      = 5 // header, error line, status bar
	storyRowLines    = 2
	commentBodyLines = 3
	commentRowLines  = commentBodyLines + 2
	defaultRows      = 10
)

// storyPageSize is the number of story rows that fit on screen.
func (m Model) storyPageSize() int {
	if m.height <= 0 {
		return defaultRows
	}
	return max((m.height-chromeLines)/storyRowLines, 1)
}

func (m Model) commentPageSize() int {
	if m.height <= 0 {
		return defaultRows
	}
	return max((m.height-chromeLines-2)/commentRowLines, 1)
}

func (m Model) contentWidth() int {
	if m.width <= 0 {
		return 80
	}
	return max(m.width-2, 20)
}

// View renders the controller state.
func (m Model) View() string {
	var b strings.Builder
	b.WriteString(m.renderHeader() + "\n")

	if m.helpVisible {
		m.help.ShowAll = true
		b.WriteString(common.HelpBoxStyle.Render(m.help.View(m.keys)) + "\n")
		return b.String()
	}

	switch m.view {
	case ViewComments:
		b.WriteString(m.renderComments())
	default:
		b.WriteString(m.renderStories())
	}

	if m.lastError != "" {
		b.WriteString(common.ErrorStyle.Render("  Error: "+ansi.Truncate(m.lastError, m.contentWidth()-9, "…")) + "\n")
	}
	m.help.ShowAll = false
	b.WriteString(common.StatusBarStyle.Render("  " + m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderHeader() string {
	title := common.AppTitleStyle.Render("Hacker News")
	tagline := common.TaglineStyle.Render("top stories")
	if m.view == ViewComments && m.currentStory != nil {
		tagline = common.TaglineStyle.Render(ansi.Truncate(m.currentStory.Title, m.contentWidth()-20, "…"))
	}
	busy := ""
	if m.Busy() {
		busy = " " + m.spinner.View()
	}
	return title + tagline + busy
}

func (m Model) renderStories() string {
	if len(m.stories) == 0 {
		if m.storyLoading {
			return fmt.Sprintf("  %s Loading stories...\n", m.spinner.View())
		}
		return "  No stories.\n"
	}

	var b strings.Builder
	width := m.contentWidth()
	now := m.now()
	start, end := m.storyList.window(len(m.stories), m.storyPageSize())
	for i := start; i < end; i++ {
		st := m.stories[i]
		titleStyle := common.StoryTitleStyle
		if i == m.storyList.selected {
			titleStyle = common.SelectedStyle
		}
		title := st.Title
		if host := storyHost(st.URL); host != "" {
			title += " (" + host + ")"
		}
		rank := common.RankStyle.Render(fmt.Sprintf("%d.", i+1))
		b.WriteString(rank + " " + titleStyle.Render(ansi.Truncate(title, width-6, "…")) + "\n")

		meta := fmt.Sprintf("%s by %s %s ago | %s",
			common.Plural(st.Score, "point"),
			st.By,
			common.FormatAge(st.Time, now),
			common.Plural(st.CommentCount, "comment"),
		)
		if _, ok := m.prefetched[st.ID]; ok {
			meta += " ·"
		}
		b.WriteString("     " + common.MetadataStyle.Render(ansi.Truncate(meta, width-6, "…")) + "\n")
	}
	return b.String()
}

func (m Model) renderComments() string {
	if m.commentLoading && len(m.commentList) == 0 {
		return fmt.Sprintf("  %s Loading comments...\n", m.spinner.View())
	}
	if len(m.commentList) == 0 {
		return "  No comments.\n"
	}

	var b strings.Builder
	width := m.contentWidth()
	now := m.now()
	start, end := m.commentCursor.window(len(m.commentList), m.commentPageSize())
	for i := start; i < end; i++ {
		c := m.commentList[i]
		guide := common.ThreadGuideStyle.Render(strings.Repeat("│ ", c.Depth))
		indent := 2 * c.Depth

		author := c.By
		if author == "" {
			author = "[unknown]"
		}
		authorStyle := common.AuthorStyle
		if i == m.commentCursor.selected {
			authorStyle = common.SelectedStyle
		}
		header := authorStyle.Render(author) + " " + common.MetadataStyle.Render(common.FormatAge(c.Time, now)+" ago")
		header += commentMarker(c)
		b.WriteString("  " + guide + header + "\n")

		bodyWidth := max(width-indent-2, 10)
		body := lipgloss.NewStyle().Width(bodyWidth).Render(c.Text)
		for _, line := range clipLines(body, commentBodyLines) {
			b.WriteString("  " + guide + common.ContentStyle.Render(line) + "\n")
		}
		b.WriteString("\n")
	}
	return b.String()
}

func commentMarker(c domain.Comment) string {
	switch {
	case c.ChildrenLoading:
		return common.CollapsedStyle.Render(" [loading]")
	case c.HasReplies() && c.Collapsed:
		return common.CollapsedStyle.Render(fmt.Sprintf(" [+%d]", len(c.Kids)))
	default:
		return ""
	}
}

func clipLines(text string, maxLines int) []string {
	lines := strings.Split(text, "\n")
	if len(lines) <= maxLines {
		return lines
	}
	out := lines[:maxLines]
	out[maxLines-1] = strings.TrimRight(out[maxLines-1], " ") + "…"
	return out
}

func storyHost(raw string) string {
	if raw == "" {
		return ""
	}
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Hostname(), "www.")
}

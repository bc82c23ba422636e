package common

import "github.com/charmbracelet/lipgloss"

// Accent is the HN orange used for the title, spinner and selection.
const Accent = lipgloss.Color("#FF6600")

var (
	// AppTitleStyle styles the application title. Rendered at call site with content.
	AppTitleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Accent).
			Padding(0, 1)

	// TaglineStyle styles the text next to the title.
	TaglineStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#555555")). // Dimmed grey
			Italic(true)

	// StoryTitleStyle styles an unselected story title.
	StoryTitleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// SelectedStyle highlights the selected row.
	SelectedStyle = lipgloss.NewStyle().
			Foreground(Accent).
			Bold(true)

	// RankStyle styles the story rank column.
	RankStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Width(4).
			Align(lipgloss.Right)

	// AuthorStyle styles author names.
	AuthorStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7DC4E4"))

	// MetadataStyle styles scores, counts and timestamps.
	MetadataStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D"))

	// ContentStyle styles comment text.
	ContentStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#CAD3F5"))

	// CollapsedStyle marks a collapsed comment's reply count.
	CollapsedStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#EED49F"))

	// ThreadGuideStyle draws the indentation rail of nested comments.
	ThreadGuideStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("#45475A"))

	// StatusBarStyle styles the bottom status bar.
	StatusBarStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#6E738D")).
			Padding(1, 0, 0, 0)

	// ErrorStyle styles error messages.
	ErrorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#ED8796")).
			Bold(true)

	// HelpBoxStyle frames the help overlay.
	HelpBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(Accent).
			Padding(0, 1)
)

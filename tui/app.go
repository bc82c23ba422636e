package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/CrestNiraj12/hntui/app"
	"github.com/CrestNiraj12/hntui/domain"
	"github.com/CrestNiraj12/hntui/tui/common"
	"github.com/CrestNiraj12/hntui/tui/feed"
)

// Deps holds all dependencies the TUI needs. Plain struct, not a DI container.
type Deps struct {
	Stories app.StoryService
	State   app.StateStore // nil disables persistence
	Options feed.Options
}

// App is the root Bubble Tea model. It owns the feed controller and the
// global key bindings.
type App struct {
	feed   feed.Model
	keys   common.KeyMap
	status string // shown until the first key press
}

// NewApp creates the root model with all dependencies wired.
func NewApp(deps Deps) App {
	return App{
		feed: feed.New(deps.Stories, deps.State, deps.Options),
		keys: common.DefaultKeyMap(),
	}
}

// Restore seeds the story list from a saved snapshot.
func (a App) Restore(st domain.StoryListState) App {
	a.feed = a.feed.Restore(st)
	if a.feed.LastError() == "" {
		a.status = fmt.Sprintf("Restored %d stories from cache", len(st.Stories))
	}
	return a
}

// Feed exposes the controller, e.g. for saving state on exit.
func (a App) Feed() feed.Model {
	return a.feed
}

// Init delegates to the feed.
func (a App) Init() tea.Cmd {
	return a.feed.Init()
}

// Update handles global keys and routes everything else to the feed.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		// Global key bindings, handled regardless of view or overlay.
		if key.Matches(msg, a.keys.Quit) {
			return a, tea.Quit
		}
		a.status = ""
	}

	updated, cmd := a.feed.Update(msg)
	a.feed = updated
	if a.feed.ShouldQuit() {
		return a, tea.Quit
	}
	return a, cmd
}

// View renders the feed.
func (a App) View() string {
	s := a.feed.View()

	// Append transient status if present.
	if a.status != "" {
		s += "\n" + common.StatusBarStyle.Render(a.status)
	}

	return s
}

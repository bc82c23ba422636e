package feed

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

func (m Model) handleKeyMsg(msg tea.KeyMsg) (Model, tea.Cmd) {
	// "g" jumps to the top only when pressed twice in a row.
	if msg.String() == "g" {
		if m.pendingG {
			m.pendingG = false
			return m.Do(ActionTop)
		}
		m.pendingG = true
		m.lastInput = m.now()
		return m, nil
	}
	m.pendingG = false

	a, ok := m.actionForKey(msg)
	if !ok {
		return m, nil
	}
	return m.Do(a)
}

func (m Model) actionForKey(msg tea.KeyMsg) (Action, bool) {
	bindings := []struct {
		binding key.Binding
		action  Action
	}{
		{m.keys.Quit, ActionQuit},
		{m.keys.Help, ActionToggleHelp},
		{m.keys.Back, ActionBack},
		{m.keys.Up, ActionUp},
		{m.keys.Down, ActionDown},
		{m.keys.PageUp, ActionPageUp},
		{m.keys.PageDown, ActionPageDown},
		{m.keys.Top, ActionTop},
		{m.keys.Bottom, ActionBottom},
		{m.keys.Open, ActionOpen},
		{m.keys.Refresh, ActionRefresh},
		{m.keys.Collapse, ActionCollapse},
		{m.keys.Expand, ActionExpand},
		{m.keys.Toggle, ActionToggle},
		{m.keys.Browser, ActionOpenInBrowser},
	}
	for _, b := range bindings {
		if key.Matches(msg, b.binding) {
			return b.action, true
		}
	}
	return 0, false
}

package feed

import (
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func runeKey(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestKeys_DoubleGJumpsToTop(t *testing.T) {
	m := withStories(newTestModel(newStubService()), 5)
	m.storyList.selected = 3

	m, _ = m.Update(runeKey('g'))
	if m.StoryCursor() != 3 {
		t.Fatalf("single g must not move")
	}
	m, _ = m.Update(runeKey('g'))
	if m.StoryCursor() != 0 {
		t.Fatalf("gg should jump to the top, cursor=%d", m.StoryCursor())
	}

	m.storyList.selected = 3
	m, _ = m.Update(runeKey('g'))
	m, _ = m.Update(runeKey('j'))
	m, _ = m.Update(runeKey('g'))
	if m.StoryCursor() != 4 {
		t.Fatalf("interrupted gg must not jump, cursor=%d", m.StoryCursor())
	}
}

func TestKeys_Navigation(t *testing.T) {
	m := withStories(newTestModel(newStubService()), 5)

	m, _ = m.Update(runeKey('j'))
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyDown})
	if m.StoryCursor() != 2 {
		t.Fatalf("cursor = %d", m.StoryCursor())
	}
	m, _ = m.Update(runeKey('G'))
	if m.StoryCursor() != 4 {
		t.Fatalf("G should jump to the bottom, cursor=%d", m.StoryCursor())
	}
	m, _ = m.Update(runeKey('k'))
	if m.StoryCursor() != 3 {
		t.Fatalf("cursor = %d", m.StoryCursor())
	}
}

func TestKeys_QuitFromStories(t *testing.T) {
	m := withStories(newTestModel(newStubService()), 2)
	m, _ = m.Update(runeKey('q'))
	if !m.ShouldQuit() {
		t.Fatalf("q on the story list should quit")
	}

	m = withStories(newTestModel(newStubService()), 2)
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})
	if !m.ShouldQuit() {
		t.Fatalf("ctrl+c should quit")
	}
}

func TestKeys_HelpBlocksOtherActions(t *testing.T) {
	m := withStories(newTestModel(newStubService()), 5)

	m, _ = m.Update(runeKey('?'))
	if !m.HelpVisible() {
		t.Fatalf("? should open help")
	}
	m, _ = m.Update(runeKey('j'))
	if m.StoryCursor() != 0 {
		t.Fatalf("navigation must be ignored while help is open")
	}
	m, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if m.HelpVisible() || m.ShouldQuit() {
		t.Fatalf("esc should only close help")
	}
	m, _ = m.Update(runeKey('j'))
	if m.StoryCursor() != 1 {
		t.Fatalf("navigation should resume, cursor=%d", m.StoryCursor())
	}
}

func TestKeys_UnboundIgnored(t *testing.T) {
	m := withStories(newTestModel(newStubService()), 2)
	m, cmd := m.Update(runeKey('z'))
	if cmd != nil || m.StoryCursor() != 0 || m.ShouldQuit() {
		t.Fatalf("unbound key should do nothing")
	}
}

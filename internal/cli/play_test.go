package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/parley/pkg/config"
	"github.com/matzehuels/parley/pkg/dialogue"
	"github.com/matzehuels/parley/pkg/playback"
)

func playConv() *dialogue.Conversation {
	a := dialogue.NewDialogue(0)
	a.Name = "Ada"
	a.Text = "Hi"
	a.TextSpeed = 0.05
	a.ConnectsTo = 1

	b := dialogue.NewDialogue(1)
	b.Name = "Bo"
	b.Text = "Stay?"
	b.Choices = []dialogue.Choice{{Text: "Yes", ConnectsTo: -1}, {Text: "Again", ConnectsTo: 0}}
	return &dialogue.Conversation{Lines: []dialogue.Dialogue{a, b}}
}

func startPlayer(t *testing.T) playerModel {
	t.Helper()
	ctx := context.Background()
	s, tm := &termSurface{}, &teaTimer{}
	e := playback.New(s, tm, playback.Options{})
	if err := e.StartConversation(ctx, "test", playConv()); err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
	return newPlayerModel(ctx, e, s, tm, config.Default().Playback)
}

func press(t *testing.T, m playerModel, key tea.KeyMsg) (playerModel, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(key)
	return next.(playerModel), cmd
}

var (
	keyEnter = tea.KeyMsg{Type: tea.KeyEnter}
	keyDown  = tea.KeyMsg{Type: tea.KeyDown}
)

func runeKey(r rune) tea.KeyMsg { return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}} }

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestPlayerRevealAndAdvance(t *testing.T) {
	m := startPlayer(t)
	if m.Init() == nil {
		t.Fatal("Init should schedule the first reveal tick")
	}

	next, _ := m.Update(tickMsg{gen: m.engine.Generation()})
	m = next.(playerModel)
	if got := m.surface.revealed(); got != "H" {
		t.Errorf("revealed = %q, want %q", got, "H")
	}
	if !strings.Contains(m.View(), "Ada") {
		t.Errorf("view missing speaker:\n%s", m.View())
	}

	m, _ = press(t, m, keyEnter)
	if m.engine.State() != playback.Complete || m.surface.revealed() != "Hi" {
		t.Fatalf("after skip: state=%s revealed=%q", m.engine.State(), m.surface.revealed())
	}

	m, _ = press(t, m, keyEnter)
	if line, _ := m.engine.Current(); line.ID != 1 {
		t.Fatalf("line = %d, want 1", line.ID)
	}
}

func TestPlayerChoices(t *testing.T) {
	m := startPlayer(t)
	for range 4 {
		m, _ = press(t, m, keyEnter)
	}
	if m.engine.State() != playback.Choosing {
		t.Fatalf("state = %s, want choosing", m.engine.State())
	}
	view := m.View()
	if !strings.Contains(view, "1. Yes") || !strings.Contains(view, "2. Again") {
		t.Errorf("choices not shown:\n%s", view)
	}

	m, _ = press(t, m, keyDown)
	m, _ = press(t, m, keyDown)
	if m.surface.cursor != 1 {
		t.Errorf("cursor = %d, want 1 (clamped)", m.surface.cursor)
	}
	m, _ = press(t, m, keyEnter)
	if line, _ := m.engine.Current(); line.ID != 0 {
		t.Fatalf("line = %d, want 0 after choosing Again", line.ID)
	}
	if m.surface.choices != nil {
		t.Error("choices should be cleared")
	}

	for range 4 {
		m, _ = press(t, m, keyEnter)
	}
	m, cmd := press(t, m, runeKey('1'))
	if !isQuit(cmd) {
		t.Error("choosing the ending should quit the player")
	}
	if m.engine.Reason() != playback.ReasonFinished {
		t.Errorf("reason = %q, want finished", m.engine.Reason())
	}
}

func TestPlayerQuit(t *testing.T) {
	m := startPlayer(t)
	m, cmd := press(t, m, runeKey('q'))
	if !isQuit(cmd) {
		t.Fatal("q should quit")
	}
	if m.engine.Reason() != playback.ReasonStopped {
		t.Errorf("reason = %q, want stopped", m.engine.Reason())
	}
	if m.View() != "" {
		t.Error("view should be empty once the dialogue is hidden")
	}
}

func TestPlayerIgnoresDigitsWhilePresenting(t *testing.T) {
	m := startPlayer(t)
	m, _ = press(t, m, runeKey('1'))
	if m.engine.State() != playback.Presenting {
		t.Errorf("state = %s, want presenting", m.engine.State())
	}
	if m.err != nil {
		t.Errorf("err = %v", m.err)
	}
}

func TestTeaTimer(t *testing.T) {
	var tm teaTimer
	if tm.next() != nil {
		t.Fatal("stopped timer should not tick")
	}

	tm.Start(10*time.Millisecond, 1)
	if tm.next() == nil {
		t.Fatal("started timer should schedule a tick")
	}
	if tm.next() != nil {
		t.Error("only one tick may be pending")
	}

	tm.fired(1)
	if tm.next() == nil {
		t.Error("delivered tick should re-arm")
	}

	tm.Start(10*time.Millisecond, 2)
	if tm.next() == nil {
		t.Fatal("restart should schedule a tick")
	}
	tm.fired(1)
	if tm.next() != nil {
		t.Error("stale tick must not re-arm")
	}

	tm.Stop()
	tm.fired(2)
	if tm.next() != nil {
		t.Error("stopped timer should not tick")
	}
}

func TestTermSurfaceRevealed(t *testing.T) {
	s := &termSurface{}
	s.SetText("héllo")
	tests := []struct {
		shown int
		want  string
	}{
		{-1, ""},
		{0, ""},
		{2, "hé"},
		{9, "héllo"},
	}
	for _, tt := range tests {
		s.SetVisibleCharacters(tt.shown)
		if got := s.revealed(); got != tt.want {
			t.Errorf("revealed(%d) = %q, want %q", tt.shown, got, tt.want)
		}
	}
}

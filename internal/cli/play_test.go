package cli

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
	"github.com/matzehuels/sectorlock/pkg/snap"
)

func newTestPlay(t *testing.T, opts ...selection.Option) PlayModel {
	t.Helper()
	m := NewPlayModel(context.Background(), selection.New(opts...), time.Millisecond)
	t.Cleanup(m.hold.Stop)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(t *testing.T, m PlayModel, keys ...tea.KeyMsg) PlayModel {
	t.Helper()
	for _, k := range keys {
		next, _ := m.Update(k)
		m = next.(PlayModel)
	}
	return m
}

func TestPlayMoveKeys(t *testing.T) {
	tests := []struct {
		name   string
		key    tea.KeyMsg
		dx, dy float64
	}{
		{"arrow right", tea.KeyMsg{Type: tea.KeyRight}, 1, 0},
		{"d", runes("d"), 1, 0},
		{"arrow down", tea.KeyMsg{Type: tea.KeyDown}, 0, 1},
		{"s", runes("s"), 0, 1},
		{"shift right", tea.KeyMsg{Type: tea.KeyShiftRight}, 2, 0},
		{"alt right", tea.KeyMsg{Type: tea.KeyRight, Alt: true}, 0.2, 0},
		{"pgdown diagonal", tea.KeyMsg{Type: tea.KeyPgDown}, 1, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := newTestPlay(t, selection.WithLevel(sector.Level4))
			before := m.ctrl.Rect()
			m = press(t, m, tt.key)
			after := m.ctrl.Rect()

			const eps = 1e-9
			if dx := after.X - before.X; dx < tt.dx-eps || dx > tt.dx+eps {
				t.Errorf("dx = %v, want %v", dx, tt.dx)
			}
			if dy := after.Y - before.Y; dy < tt.dy-eps || dy > tt.dy+eps {
				t.Errorf("dy = %v, want %v", dy, tt.dy)
			}
		})
	}
}

func TestPlayLevelKeys(t *testing.T) {
	m := newTestPlay(t)

	m = press(t, m, runes("3"))
	if got := m.ctrl.UnlockLevel(); got != sector.Level3 {
		t.Errorf("level after '3' = %v, want 3", got)
	}
	m = press(t, m, runes("u"))
	if got := m.ctrl.UnlockLevel(); got != sector.Level4 {
		t.Errorf("level after 'u' = %v, want 4", got)
	}
	m = press(t, m, runes("l"))
	if got := m.ctrl.UnlockLevel(); got != sector.Level1 {
		t.Errorf("level after 'l' = %v, want 1", got)
	}
}

func TestPlayStepKeys(t *testing.T) {
	m := newTestPlay(t)
	start := m.ctrl.Step()

	m = press(t, m, runes("+"), runes("+"))
	if got := m.ctrl.Step(); got != start+2 {
		t.Errorf("step after ++ = %d, want %d", got, start+2)
	}
	m = press(t, m, runes("-"))
	if got := m.ctrl.Step(); got != start+1 {
		t.Errorf("step after - = %d, want %d", got, start+1)
	}
}

func TestPlayPrompt(t *testing.T) {
	m := newTestPlay(t)

	m = press(t, m, runes("n"))
	if !m.Prompt {
		t.Fatal("'n' should open the size prompt")
	}
	m = press(t, m, runes("50x4"), runes("0"), tea.KeyMsg{Type: tea.KeyBackspace}, runes("0"),
		tea.KeyMsg{Type: tea.KeyEnter})
	if m.Prompt {
		t.Error("enter should close the prompt")
	}
	if r := m.ctrl.Rect(); r.W != 5 || r.H != 4 {
		t.Errorf("selection = %v, want 5x4", r)
	}
}

func TestPlayPromptRejects(t *testing.T) {
	m := newTestPlay(t)

	m = press(t, m, runes("n"), runes("200x200"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Invalid || m.Notice != snap.NoticeOversized {
		t.Errorf("notice = %q (invalid %v), want %q", m.Notice, m.Invalid, snap.NoticeOversized)
	}

	m = press(t, m, runes("n"), runes("abc"), tea.KeyMsg{Type: tea.KeyEnter})
	if !m.Invalid || !strings.Contains(m.Notice, "WIDTHxHEIGHT") {
		t.Errorf("notice = %q, want a dimensions hint", m.Notice)
	}

	m = press(t, m, runes("n"), runes("30x30"), tea.KeyMsg{Type: tea.KeyEsc})
	if m.Prompt {
		t.Error("esc should close the prompt")
	}
}

func TestPlayHoldMode(t *testing.T) {
	m := newTestPlay(t, selection.WithLevel(sector.Level4))
	start := m.ctrl.Rect()

	m = press(t, m, runes("h"))
	if !m.HoldMode {
		t.Fatal("'h' should enable hold mode")
	}

	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	m = next.(PlayModel)
	if cmd == nil {
		t.Error("starting a hold should schedule a redraw")
	}
	if m.Holding != selection.DirS {
		t.Errorf("Holding = %v, want s", m.Holding)
	}

	deadline := time.Now().Add(time.Second)
	for m.ctrl.Rect().Y < start.Y+3 && time.Now().Before(deadline) {
		time.Sleep(time.Millisecond)
	}
	if got := m.ctrl.Rect().Y; got < start.Y+3 {
		t.Errorf("Y = %v after holding, want at least %v", got, start.Y+3)
	}

	m = press(t, m, runes(" "))
	if m.hold.Active() || m.Holding != selection.DirNone {
		t.Error("space should release the hold")
	}
	stopped := m.ctrl.Rect()
	time.Sleep(10 * time.Millisecond)
	if m.ctrl.Rect() != stopped {
		t.Error("selection kept moving after release")
	}
}

func TestPlayHoldTick(t *testing.T) {
	m := newTestPlay(t)

	next, cmd := m.Update(holdTickMsg{})
	if cmd != nil {
		t.Error("idle hold tick should not reschedule")
	}
	if next.(PlayModel).Holding != selection.DirNone {
		t.Error("idle tick should clear Holding")
	}
}

func TestPlayQuit(t *testing.T) {
	for _, key := range []tea.KeyMsg{runes("q"), {Type: tea.KeyEsc}, {Type: tea.KeyCtrlC}} {
		m := newTestPlay(t)
		_, cmd := m.Update(key)
		if cmd == nil {
			t.Fatalf("%q returned no command", key.String())
		}
		if _, ok := cmd().(tea.QuitMsg); !ok {
			t.Errorf("%q should quit", key.String())
		}
	}
}

func TestPlayView(t *testing.T) {
	m := newTestPlay(t)
	next, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = next.(PlayModel)
	if m.Rows != 32 {
		t.Errorf("Rows = %d, want 32", m.Rows)
	}

	view := m.View()
	for _, want := range []string{"SectorLock", "Locked: Stage 2 & 3", "level 1", "q quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

package cli

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/sectorlock/pkg/errors"
	"github.com/matzehuels/sectorlock/pkg/render"
	"github.com/matzehuels/sectorlock/pkg/repeat"
	"github.com/matzehuels/sectorlock/pkg/sector"
	"github.com/matzehuels/sectorlock/pkg/selection"
)

// Frame styles
var (
	cellSelectionStyle = lipgloss.NewStyle().Foreground(colorCyan)
	cellInvalidStyle   = lipgloss.NewStyle().Foreground(colorRed)
	cellLockedStyle    = lipgloss.NewStyle().Foreground(colorDim)
	cellRingStyle      = lipgloss.NewStyle().Foreground(colorGray)
	frameBorderStyle   = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(colorDim)
	helpStyle          = lipgloss.NewStyle().Foreground(colorDim)
)

const (
	minPlayRows     = 10
	defaultPlayRows = 20
	minRedraw       = 33 * time.Millisecond
)

// keyMove is a movement binding.
type keyMove struct {
	dir        selection.Direction
	fast, fine bool
}

// moveKeys maps key names to moves. Diagonals follow the numeric keypad
// navigation keys.
var moveKeys = map[string]keyMove{
	"up":    {dir: selection.DirN},
	"w":     {dir: selection.DirN},
	"down":  {dir: selection.DirS},
	"s":     {dir: selection.DirS},
	"left":  {dir: selection.DirW},
	"a":     {dir: selection.DirW},
	"right": {dir: selection.DirE},
	"d":     {dir: selection.DirE},

	"home":   {dir: selection.DirNW},
	"pgup":   {dir: selection.DirNE},
	"end":    {dir: selection.DirSW},
	"pgdown": {dir: selection.DirSE},

	"shift+up":    {dir: selection.DirN, fast: true},
	"shift+down":  {dir: selection.DirS, fast: true},
	"shift+left":  {dir: selection.DirW, fast: true},
	"shift+right": {dir: selection.DirE, fast: true},
	"W":           {dir: selection.DirN, fast: true},
	"S":           {dir: selection.DirS, fast: true},
	"A":           {dir: selection.DirW, fast: true},
	"D":           {dir: selection.DirE, fast: true},

	"alt+up":    {dir: selection.DirN, fine: true},
	"alt+down":  {dir: selection.DirS, fine: true},
	"alt+left":  {dir: selection.DirW, fine: true},
	"alt+right": {dir: selection.DirE, fine: true},
}

// =============================================================================
// PlayModel - Interactive placement widget
// =============================================================================

// holdTickMsg redraws the frame while a hold is active.
type holdTickMsg struct{}

// latestOutcome carries the newest outcome from the hold loop to the model.
type latestOutcome struct {
	mu sync.Mutex
	o  selection.Outcome
	ok bool
}

func (l *latestOutcome) store(o selection.Outcome) {
	l.mu.Lock()
	l.o, l.ok = o, true
	l.mu.Unlock()
}

func (l *latestOutcome) take() (selection.Outcome, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	o, ok := l.o, l.ok
	l.ok = false
	return o, ok
}

// PlayModel is the bubbletea model of the placement widget.
type PlayModel struct {
	ctx    context.Context
	ctrl   *selection.Controller
	hold   *repeat.Task
	latest *latestOutcome

	HoldMode bool
	Holding  selection.Direction
	Prompt   bool
	Input    string
	Notice   string
	Invalid  bool
	Rows     int
}

// NewPlayModel creates a model driving ctrl. Held moves repeat every
// interval.
func NewPlayModel(ctx context.Context, ctrl *selection.Controller, interval time.Duration) PlayModel {
	return PlayModel{
		ctx:    ctx,
		ctrl:   ctrl,
		hold:   repeat.New(interval),
		latest: &latestOutcome{},
		Rows:   defaultPlayRows,
	}
}

func (m PlayModel) Init() tea.Cmd {
	return nil
}

func (m PlayModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.Prompt {
			return m.updatePrompt(msg), nil
		}
		return m.updateKey(msg)
	case holdTickMsg:
		if o, ok := m.latest.take(); ok {
			m.apply(o)
		}
		if !m.hold.Active() {
			m.Holding = selection.DirNone
			return m, nil
		}
		return m, m.redraw()
	case tea.WindowSizeMsg:
		// Terminal cells are about twice as tall as wide.
		m.Rows = max(min(msg.Height-8, (msg.Width-2)/2), minPlayRows)
	}
	return m, nil
}

func (m PlayModel) updateKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if mv, ok := moveKeys[key]; ok {
		if !m.HoldMode {
			m.apply(m.ctrl.NudgeKey(mv.dir, mv.fast, mv.fine))
			return m, nil
		}
		if m.Holding == mv.dir {
			m.stopHold()
			return m, nil
		}
		m.startHold(mv)
		return m, m.redraw()
	}

	switch key {
	case "q", "esc", "ctrl+c":
		m.hold.Stop()
		return m, tea.Quit
	case "h":
		m.HoldMode = !m.HoldMode
		if !m.HoldMode {
			m.stopHold()
		}
	case " ":
		m.stopHold()
	case "+", "=":
		m.ctrl.SetStep(m.ctrl.Step() + 1)
	case "-", "_":
		m.ctrl.SetStep(m.ctrl.Step() - 1)
	case "1", "2", "3", "4":
		m.apply(m.ctrl.SetUnlockLevel(int(key[0] - '0')))
	case "u":
		m.apply(m.ctrl.UnlockAll())
	case "l":
		m.apply(m.ctrl.LockToSector1())
	case "n":
		m.stopHold()
		m.Prompt, m.Input = true, ""
	}
	return m, nil
}

func (m PlayModel) updatePrompt(msg tea.KeyMsg) PlayModel {
	switch msg.Type {
	case tea.KeyEsc, tea.KeyCtrlC:
		m.Prompt = false
	case tea.KeyEnter:
		m.Prompt = false
		w, h, err := errors.ParseDimensions(m.Input)
		if err != nil {
			m.Notice, m.Invalid = errors.UserMessage(err), true
			return m
		}
		m.apply(m.ctrl.Create(w, h))
	case tea.KeyBackspace:
		if n := len(m.Input); n > 0 {
			m.Input = m.Input[:n-1]
		}
	case tea.KeyRunes:
		m.Input += string(msg.Runes)
	}
	return m
}

func (m *PlayModel) apply(o selection.Outcome) {
	m.Notice, m.Invalid = o.Notice, o.Rejected
}

func (m *PlayModel) startHold(mv keyMove) {
	m.Holding = mv.dir
	ctrl, latest := m.ctrl, m.latest
	m.hold.Start(m.ctx, func() {
		latest.store(ctrl.NudgeKey(mv.dir, mv.fast, mv.fine))
	})
	if o, ok := latest.take(); ok {
		m.apply(o)
	}
}

func (m *PlayModel) stopHold() {
	m.hold.Stop()
	m.Holding = selection.DirNone
	if o, ok := m.latest.take(); ok {
		m.apply(o)
	}
}

func (m PlayModel) redraw() tea.Cmd {
	return tea.Tick(max(m.hold.Interval(), minRedraw), func(time.Time) tea.Msg { return holdTickMsg{} })
}

func (m PlayModel) View() string {
	var b strings.Builder
	frame := render.FrameOf(m.ctrl)

	b.WriteString(StyleTitle.Render("SectorLock"))
	if label := frame.LockLabel(); label != "" {
		b.WriteString("  " + StyleWarning.Render(label))
	} else {
		b.WriteString("  " + StyleSuccess.Render("Unlocked"))
	}
	b.WriteString("\n")

	grid := render.Rasterize(frame, m.Rows*2, m.Rows)
	b.WriteString(frameBorderStyle.Render(m.drawGrid(grid)))
	b.WriteString("\n")

	r := frame.Selection
	status := fmt.Sprintf("level %d  step %d (%.1f%%)  x=%.2f y=%.2f w=%.2f h=%.2f",
		frame.Level, m.ctrl.Step(), m.ctrl.StepPercent(), r.X, r.Y, r.W, r.H)
	if m.HoldMode {
		status += "  hold"
		if m.Holding != selection.DirNone {
			status += " " + m.Holding.Arrow()
		}
	}
	b.WriteString(StyleDim.Render(status))
	b.WriteString("\n")

	switch {
	case m.Prompt:
		b.WriteString(StyleHighlight.Render("New selection WxH: ") + StyleValue.Render(m.Input+"▏"))
	case m.Notice != "" && m.Invalid:
		b.WriteString(StyleWarning.Render(m.Notice))
	case m.Notice != "":
		b.WriteString(StyleSuccess.Render(m.Notice))
	}
	b.WriteString("\n")

	b.WriteString(helpStyle.Render("←↑↓→/wasd move  shift fast  alt fine  home/pgup/end/pgdn diagonal  h hold  +/- step"))
	b.WriteString("\n")
	b.WriteString(helpStyle.Render("1-4 level  u unlock  l lock  n new size  q quit"))
	return b.String()
}

// drawGrid renders runs of equal cells with one style each.
func (m PlayModel) drawGrid(g render.Grid) string {
	var b strings.Builder
	for row := range g.Rows {
		start := 0
		for col := 1; col <= g.Cols; col++ {
			if col < g.Cols && g.At(col, row) == g.At(start, row) {
				continue
			}
			cell := g.At(start, row)
			run := strings.Repeat(string(cell.Glyph()), col-start)
			b.WriteString(m.cellStyle(cell).Render(run))
			start = col
		}
		if row < g.Rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

func (m PlayModel) cellStyle(c render.Cell) lipgloss.Style {
	switch c {
	case render.CellSelection:
		if m.Invalid {
			return cellInvalidStyle
		}
		return cellSelectionStyle
	case render.CellLocked:
		return cellLockedStyle
	case render.CellRing:
		return cellRingStyle
	default:
		return lipgloss.NewStyle()
	}
}

// =============================================================================
// play command
// =============================================================================

// playCommand runs the interactive widget in the terminal.
func (c *CLI) playCommand() *cobra.Command {
	var (
		level int
		size  string
	)

	cmd := &cobra.Command{
		Use:   "play",
		Short: "Move a selection around an interactive frame",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			opts := []selection.Option{selection.WithContext(ctx)}
			if cmd.Flags().Changed("level") {
				opts = append(opts, selection.WithLevel(sector.ClampLevel(level)))
			}
			if size != "" {
				w, h, err := errors.ParseDimensions(size)
				if err != nil {
					return err
				}
				opts = append(opts, selection.WithInitialSize(w, h))
			}
			ctrl := c.newController(opts...)

			model := NewPlayModel(ctx, ctrl, c.Config.Server.HoldInterval)
			p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				return fmt.Errorf("run widget: %w", err)
			}
			model.hold.Stop()

			printKeyValue("Level", fmt.Sprintf("%d", ctrl.UnlockLevel()))
			printRect("Selection", ctrl.Rect())
			return nil
		},
	}

	cmd.Flags().IntVarP(&level, "level", "l", 1, "initial unlock level 1-4")
	cmd.Flags().StringVar(&size, "size", "", "initial selection size WxH in design units")
	return cmd
}

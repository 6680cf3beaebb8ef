package cli

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/config"
	"github.com/matzehuels/parley/pkg/playback"
)

// Player styles
var (
	playBoxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorDim).
			Padding(0, 1)
	playNameStyle     = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	playTextStyle     = lipgloss.NewStyle().Foreground(colorWhite)
	playPortraitStyle = lipgloss.NewStyle().Foreground(colorGray).Italic(true)
	playChoiceStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	playCursorStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
)

const defaultPlayWidth = 60

func (c *CLI) playCommand() *cobra.Command {
	var assetsDir string

	cmd := &cobra.Command{
		Use:   "play [file]",
		Short: "Play a conversation in the terminal",
		Long: `Play a conversation document line by line.

The advance keys (enter and space by default) reveal the rest of a line or
move on once it is shown. Choices are picked with up/down and enter, or by
pressing their number. The quit keys end the conversation.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := assetsDir
			if dir == "" {
				dir = filepath.Dir(args[0])
			}
			return c.runPlay(cmd, args[0], dir)
		},
	}

	cmd.Flags().StringVar(&assetsDir, "assets", "", "directory portraits resolve against (default: the document's directory)")
	return cmd
}

func (c *CLI) runPlay(cmd *cobra.Command, path, assetsDir string) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)

	surface := &termSurface{}
	timer := &teaTimer{}
	engine := playback.New(surface, timer, playback.Options{
		MinTick: c.config.Playback.MinTick(),
		Assets:  assets.FileLoader{Root: assetsDir},
		Logger:  logger,
		Hooks:   c.hooks(),
	})
	if err := engine.Start(ctx, path); err != nil {
		return err
	}

	m := newPlayerModel(ctx, engine, surface, timer, c.config.Playback)
	prog := tea.NewProgram(m,
		tea.WithContext(ctx),
		tea.WithInput(cmd.InOrStdin()),
		tea.WithOutput(cmd.OutOrStdout()),
	)
	if _, err := prog.Run(); err != nil {
		return fmt.Errorf("player: %w", err)
	}

	printer{cmd.OutOrStdout()}.info("Conversation %s", engine.Reason())
	return nil
}

// =============================================================================
// termSurface - playback.Surface backed by model state
// =============================================================================

// termSurface records what the engine asks to show; the player's View draws it.
type termSurface struct {
	visible  bool
	regions  bool
	name     string
	text     []rune
	shown    int
	portrait assets.Texture
	choices  []string
	cursor   int
}

var _ playback.Surface = (*termSurface)(nil)

func (s *termSurface) SetVisible(v bool)              { s.visible = v }
func (s *termSurface) ShowLineRegions(v bool)         { s.regions = v }
func (s *termSurface) SetName(name string)            { s.name = name }
func (s *termSurface) SetText(text string)            { s.text = []rune(text) }
func (s *termSurface) SetVisibleCharacters(n int)     { s.shown = n }
func (s *termSurface) SetPortrait(tex assets.Texture) { s.portrait = tex }
func (s *termSurface) ClearChoices()                  { s.choices, s.cursor = nil, 0 }
func (s *termSurface) ShowChoices(labels []string)    { s.choices, s.cursor = labels, 0 }

// revealed returns the visible prefix of the current text.
func (s *termSurface) revealed() string {
	n := min(max(s.shown, 0), len(s.text))
	return string(s.text[:n])
}

// =============================================================================
// teaTimer - playback.Timer driven by tea.Tick
// =============================================================================

type tickMsg struct{ gen uint64 }

// teaTimer turns Start/Stop calls into at most one pending tea.Tick.
type teaTimer struct {
	interval time.Duration
	gen      uint64
	running  bool
	armed    bool
}

var _ playback.Timer = (*teaTimer)(nil)

func (t *teaTimer) Start(interval time.Duration, gen uint64) {
	t.interval, t.gen = interval, gen
	t.running, t.armed = true, false
}

func (t *teaTimer) Stop() { t.running = false }

// fired marks the pending tick for gen as delivered.
func (t *teaTimer) fired(gen uint64) {
	if gen == t.gen {
		t.armed = false
	}
}

// next schedules the following tick when the timer runs and none is pending.
func (t *teaTimer) next() tea.Cmd {
	if !t.running || t.armed {
		return nil
	}
	t.armed = true
	gen := t.gen
	return tea.Tick(t.interval, func(time.Time) tea.Msg { return tickMsg{gen: gen} })
}

// =============================================================================
// playerModel - bubbletea model
// =============================================================================

type playerModel struct {
	ctx     context.Context
	engine  *playback.Engine
	surface *termSurface
	timer   *teaTimer
	advance []string
	quit    []string
	width   int
	err     error
}

func newPlayerModel(ctx context.Context, e *playback.Engine, s *termSurface, t *teaTimer, cfg config.Playback) playerModel {
	return playerModel{
		ctx:     ctx,
		engine:  e,
		surface: s,
		timer:   t,
		advance: cfg.AdvanceKeys,
		quit:    cfg.QuitKeys,
		width:   defaultPlayWidth,
	}
}

func (m playerModel) Init() tea.Cmd {
	return m.timer.next()
}

func (m playerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		m.timer.fired(msg.gen)
		m.engine.Tick(msg.gen)
	case tea.KeyMsg:
		m.err = m.handleKey(msg.String())
	case tea.WindowSizeMsg:
		m.width = min(max(msg.Width-4, 20), 100)
	}

	if m.engine.State() == playback.Idle {
		return m, tea.Quit
	}
	return m, m.timer.next()
}

func (m playerModel) handleKey(key string) error {
	if slices.Contains(m.quit, key) {
		m.engine.End(m.ctx)
		return nil
	}

	if m.engine.State() == playback.Choosing {
		s := m.surface
		switch {
		case key == "up" || key == "k":
			if s.cursor > 0 {
				s.cursor--
			}
			return nil
		case key == "down" || key == "j":
			if s.cursor < len(s.choices)-1 {
				s.cursor++
			}
			return nil
		case slices.Contains(m.advance, key):
			return m.engine.Choose(m.ctx, s.cursor)
		}
		if n, err := strconv.Atoi(key); err == nil && n >= 1 && n <= len(s.choices) {
			return m.engine.Choose(m.ctx, n-1)
		}
		return nil
	}

	if slices.Contains(m.advance, key) {
		return m.engine.Advance(m.ctx)
	}
	return nil
}

func (m playerModel) View() string {
	s := m.surface
	if !s.visible {
		return ""
	}

	var b strings.Builder
	if s.regions {
		if s.name != "" {
			b.WriteString(playNameStyle.Render(s.name))
			if f, ok := s.portrait.(assets.File); ok {
				b.WriteString("  " + playPortraitStyle.Render("["+f.Name+"]"))
			}
			b.WriteString("\n")
		}
		b.WriteString(playTextStyle.Width(m.width).Render(s.revealed()))
	}
	for i, label := range s.choices {
		if i > 0 || b.Len() > 0 {
			b.WriteString("\n")
		}
		line := fmt.Sprintf("%d. %s", i+1, label)
		if i == s.cursor {
			b.WriteString(playCursorStyle.Render("▸ " + line))
		} else {
			b.WriteString(playChoiceStyle.Render("  " + line))
		}
	}

	help := "⏎ continue  q quit"
	if len(s.choices) > 0 {
		help = "↑/↓ navigate  ⏎ choose  1-9 pick  q quit"
	}
	out := playBoxStyle.Width(m.width + 2).Render(b.String())
	out += "\n" + StyleDim.Render(help)
	if m.err != nil {
		out += "\n" + styleIconError.Render(iconError+" "+m.err.Error())
	}
	return out + "\n"
}

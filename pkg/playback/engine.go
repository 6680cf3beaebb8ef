package playback

import (
	"context"
	"fmt"
	"math"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/dialogue"
	perrors "github.com/matzehuels/parley/pkg/errors"
	"github.com/matzehuels/parley/pkg/io"
	"github.com/matzehuels/parley/pkg/observability"
)

// DefaultMinTick is the shortest reveal interval used when Options.MinTick
// is zero.
const DefaultMinTick = 10 * time.Millisecond

// State is the engine's presentation state.
type State int

const (
	Idle State = iota
	Presenting
	Complete
	Choosing
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Presenting:
		return "presenting"
	case Complete:
		return "complete"
	case Choosing:
		return "choosing"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Reason records why a conversation returned to Idle.
type Reason string

const (
	// ReasonFinished means a line without a forward link completed.
	ReasonFinished Reason = "finished"
	// ReasonDangling means a link named a line that does not exist.
	ReasonDangling Reason = "dangling"
	// ReasonStopped means the host called End.
	ReasonStopped Reason = "stopped"
)

var (
	// ErrInvalidState is returned when input arrives in a state that does
	// not accept it. Hosts may ignore it.
	ErrInvalidState = perrors.New(perrors.ErrCodeInvalidState, "input not accepted in current state")

	// ErrInvalidChoice is returned by Choose for an index outside the shown
	// choices.
	ErrInvalidChoice = perrors.New(perrors.ErrCodeInvalidInput, "invalid choice index")
)

// Surface is the presentation target the engine writes to.
type Surface interface {
	// SetVisible shows or hides the whole dialogue box.
	SetVisible(visible bool)
	// ShowLineRegions shows or hides the name plate and text body.
	ShowLineRegions(visible bool)
	SetName(name string)
	SetText(text string)
	// SetVisibleCharacters limits the text body to its first n characters.
	SetVisibleCharacters(n int)
	// SetPortrait shows tex, or clears the portrait when tex is nil.
	SetPortrait(tex assets.Texture)
	// ShowChoices renders one selectable entry per label.
	ShowChoices(labels []string)
	ClearChoices()
}

// Timer schedules reveal ticks. After Start the host calls Engine.Tick with
// gen once per interval until Stop is called or Start is called again.
type Timer interface {
	Start(interval time.Duration, gen uint64)
	Stop()
}

// Options configures an Engine.
type Options struct {
	// MinTick floors the reveal interval so lines with a text speed of zero
	// or less still reveal one character per scheduler step.
	MinTick time.Duration
	// Assets resolves portrait paths. Nil shows no portraits.
	Assets assets.Loader
	// Logger receives operational logs. Nil discards them.
	Logger *log.Logger
	Hooks  observability.Hooks
}

// Snapshot is a read-only view of what the engine is presenting.
type Snapshot struct {
	State      State
	LineID     int
	Name       string
	Text       string
	Revealed   int
	Choices    []string
	Portrait   string
	Generation uint64
}

// Visible returns the revealed prefix of Text.
func (s Snapshot) Visible() string {
	return prefix(s.Text, s.Revealed)
}

// Engine is the playback state machine. It is not safe for concurrent use;
// hosts serialize input, ticks and Start through one goroutine.
type Engine struct {
	surface Surface
	timer   Timer
	opts    Options
	log     *log.Logger
	hooks   observability.Hooks

	conv     *dialogue.Conversation
	index    map[int]int
	cursor   int
	state    State
	revealed int
	length   int
	gen      uint64
	reason   Reason
}

// New creates an idle engine.
func New(surface Surface, timer Timer, opts Options) *Engine {
	if opts.MinTick <= 0 {
		opts.MinTick = DefaultMinTick
	}
	if opts.Assets == nil {
		opts.Assets = assets.Nop
	}
	l := opts.Logger
	if l == nil {
		l = log.New(discard{})
	}
	return &Engine{
		surface: surface,
		timer:   timer,
		opts:    opts,
		log:     l,
		hooks:   opts.Hooks.WithDefaults(),
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// =============================================================================
// Queries
// =============================================================================

// State returns the current state.
func (e *Engine) State() State { return e.state }

// Reason returns why the last conversation ended, or "" if none has.
func (e *Engine) Reason() Reason { return e.reason }

// Generation returns the tag of the reveal currently in flight.
func (e *Engine) Generation() uint64 { return e.gen }

// Current returns the line being presented.
func (e *Engine) Current() (dialogue.Dialogue, bool) {
	if e.state == Idle || e.conv == nil {
		return dialogue.Dialogue{}, false
	}
	return e.conv.Lines[e.cursor], true
}

// Snapshot returns a copy of the presentation state.
func (e *Engine) Snapshot() Snapshot {
	s := Snapshot{State: e.state, LineID: -1, Generation: e.gen}
	line, ok := e.Current()
	if !ok {
		return s
	}
	s.LineID = line.ID
	s.Name = line.Name
	s.Text = line.Text
	s.Revealed = e.revealed
	s.Portrait = line.PortraitPath
	if e.state == Choosing {
		s.Choices = labels(line.Choices)
	}
	return s
}

// TickInterval returns the reveal interval for the current line: its text
// speed in seconds, floored at Options.MinTick.
func (e *Engine) TickInterval() time.Duration {
	line, ok := e.Current()
	if !ok {
		return e.opts.MinTick
	}
	return interval(line.TextSpeed, e.opts.MinTick)
}

// maxTick caps the reveal interval; larger speeds would overflow a Duration.
const maxTick = time.Hour

func interval(speed float64, floor time.Duration) time.Duration {
	ns := speed * float64(time.Second)
	switch {
	case math.IsNaN(ns):
		return floor
	case ns >= float64(maxTick):
		return max(maxTick, floor)
	}
	d := time.Duration(ns)
	if d < floor {
		return floor
	}
	return d
}

// =============================================================================
// Lifecycle
// =============================================================================

// Start loads the document at path and begins presenting its first line.
// An empty path does nothing. When the document cannot be loaded the error
// is returned and the engine is left exactly as it was.
func (e *Engine) Start(ctx context.Context, path string) error {
	if path == "" {
		e.log.Warn("start ignored: no conversation path")
		return nil
	}
	conv, err := io.ImportJSON(path)
	if err != nil {
		e.log.Error("start failed", "path", path, "err", err)
		return err
	}
	return e.StartConversation(ctx, path, conv)
}

// StartConversation begins presenting conv from its first line, replacing
// any conversation in progress. source names the conversation in logs and
// hooks.
func (e *Engine) StartConversation(ctx context.Context, source string, conv *dialogue.Conversation) error {
	if conv == nil || len(conv.Lines) == 0 {
		err := perrors.New(perrors.ErrCodeDocumentMalformed, "%s: conversation is empty", source)
		e.log.Error("start failed", "source", source, "err", err)
		return err
	}

	e.timer.Stop()
	e.conv = conv.Clone()
	e.index = e.conv.IndexByID()
	e.reason = ""

	e.surface.ClearChoices()
	e.surface.SetVisible(true)
	e.surface.ShowLineRegions(true)

	e.log.Info("conversation started", "source", source, "lines", len(e.conv.Lines))
	e.hooks.Playback.OnConversationStart(ctx, source, len(e.conv.Lines))
	e.present(ctx, 0)
	return nil
}

// End hides the dialogue, drops the conversation and returns to Idle.
// It does nothing when already idle.
func (e *Engine) End(ctx context.Context) {
	if e.state == Idle {
		return
	}
	e.finish(ctx, ReasonStopped)
}

func (e *Engine) finish(ctx context.Context, reason Reason) {
	e.timer.Stop()
	e.gen++
	e.surface.ClearChoices()
	e.surface.SetVisible(false)

	e.conv = nil
	e.index = nil
	e.cursor = 0
	e.revealed = 0
	e.length = 0
	e.state = Idle
	e.reason = reason

	e.log.Info("conversation ended", "reason", reason)
	e.hooks.Playback.OnConversationEnd(ctx, string(reason))
}

// present begins the reveal of the line at position pos.
func (e *Engine) present(ctx context.Context, pos int) {
	e.timer.Stop()
	e.gen++

	line := e.conv.Lines[pos]
	e.cursor = pos
	e.revealed = 0
	e.length = utf8.RuneCountInString(line.Text)
	e.state = Presenting

	e.surface.SetName(line.Name)
	e.surface.SetText(line.Text)
	e.surface.SetVisibleCharacters(0)
	var tex assets.Texture
	if line.PortraitPath != "" {
		tex = e.opts.Assets.LoadTexture(line.PortraitPath)
	}
	e.surface.SetPortrait(tex)

	e.log.Debug("line started", "id", line.ID, "chars", e.length)
	e.hooks.Playback.OnLineStart(ctx, line.ID)

	if e.length == 0 {
		e.state = Complete
		return
	}
	e.timer.Start(interval(line.TextSpeed, e.opts.MinTick), e.gen)
}

// follow moves to the line with id target, or ends the conversation when
// no such line exists.
func (e *Engine) follow(ctx context.Context, target int) {
	if target == dialogue.NoTarget {
		e.finish(ctx, ReasonFinished)
		return
	}
	pos, ok := e.resolve(target)
	if !ok {
		e.log.Warn("unresolved link ends conversation", "from", e.conv.Lines[e.cursor].ID, "target", target)
		e.finish(ctx, ReasonDangling)
		return
	}
	e.present(ctx, pos)
}

// resolve maps a line id to its position. Targets below zero or at or past
// the conversation length never resolve.
func (e *Engine) resolve(target int) (int, bool) {
	if target < 0 || target >= len(e.conv.Lines) {
		return 0, false
	}
	pos, ok := e.index[target]
	return pos, ok
}

// =============================================================================
// Input
// =============================================================================

// Tick reveals one more character of the current line. Ticks whose gen does
// not match the reveal in flight are ignored.
func (e *Engine) Tick(gen uint64) {
	if gen != e.gen || e.state != Presenting {
		return
	}
	e.revealed++
	e.surface.SetVisibleCharacters(e.revealed)
	if e.revealed >= e.length {
		e.timer.Stop()
		e.state = Complete
	}
}

// Advance handles the confirm action. While text is still being revealed
// it shows the rest of the line at once; once the line is complete it moves
// on to the line's choices or to the line it links to.
func (e *Engine) Advance(ctx context.Context) error {
	switch e.state {
	case Presenting:
		e.timer.Stop()
		e.revealed = e.length
		e.surface.SetVisibleCharacters(e.revealed)
		e.state = Complete
		return nil

	case Complete:
		line := e.conv.Lines[e.cursor]
		if line.HasChoices() {
			e.state = Choosing
			e.surface.ShowLineRegions(false)
			e.surface.ShowChoices(labels(line.Choices))
			return nil
		}
		e.follow(ctx, line.ConnectsTo)
		return nil

	default:
		return fmt.Errorf("%w: advance while %s", ErrInvalidState, e.state)
	}
}

// Choose selects choice i of the current line. It is only accepted while
// the choices are shown.
func (e *Engine) Choose(ctx context.Context, i int) error {
	if e.state != Choosing {
		return fmt.Errorf("%w: choose while %s", ErrInvalidState, e.state)
	}
	line := e.conv.Lines[e.cursor]
	if i < 0 || i >= len(line.Choices) {
		return fmt.Errorf("%w: %d of %d", ErrInvalidChoice, i, len(line.Choices))
	}

	target := line.Choices[i].ConnectsTo
	e.surface.ClearChoices()
	e.surface.ShowLineRegions(true)
	e.hooks.Playback.OnChoice(ctx, line.ID, i, target)
	e.follow(ctx, target)
	return nil
}

func labels(choices []dialogue.Choice) []string {
	out := make([]string, len(choices))
	for i, c := range choices {
		out[i] = c.Text
	}
	return out
}

// prefix returns the first n characters of s.
func prefix(s string, n int) string {
	if n <= 0 {
		return ""
	}
	for i := range s {
		if n == 0 {
			return s[:i]
		}
		n--
	}
	return s
}

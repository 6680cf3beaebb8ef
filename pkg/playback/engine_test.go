package playback

import (
	"context"
	"errors"
	"math/rand"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/dialogue"
	perrors "github.com/matzehuels/parley/pkg/errors"
)

// fakeSurface records what the engine writes.
type fakeSurface struct {
	visible  bool
	regions  bool
	name     string
	text     string
	chars    int
	portrait assets.Texture
	choices  []string
}

func (s *fakeSurface) SetVisible(v bool)              { s.visible = v }
func (s *fakeSurface) ShowLineRegions(v bool)         { s.regions = v }
func (s *fakeSurface) SetName(n string)               { s.name = n }
func (s *fakeSurface) SetText(t string)               { s.text = t }
func (s *fakeSurface) SetVisibleCharacters(n int)     { s.chars = n }
func (s *fakeSurface) SetPortrait(tex assets.Texture) { s.portrait = tex }
func (s *fakeSurface) ShowChoices(l []string)         { s.choices = slices.Clone(l) }
func (s *fakeSurface) ClearChoices()                  { s.choices = nil }

// fakeTimer records scheduling requests; tests deliver ticks by hand.
type fakeTimer struct {
	running  bool
	gen      uint64
	interval time.Duration
	starts   int
}

func (t *fakeTimer) Start(d time.Duration, gen uint64) {
	t.running, t.gen, t.interval = true, gen, d
	t.starts++
}

func (t *fakeTimer) Stop() { t.running = false }

func newEngine(opts Options) (*Engine, *fakeSurface, *fakeTimer) {
	s, tm := &fakeSurface{}, &fakeTimer{}
	return New(s, tm, opts), s, tm
}

func line(id int, text string, next int, choices ...dialogue.Choice) dialogue.Dialogue {
	d := dialogue.NewDialogue(id)
	d.Text = text
	d.ConnectsTo = next
	d.Choices = choices
	return d
}

func conv(lines ...dialogue.Dialogue) *dialogue.Conversation {
	return &dialogue.Conversation{Lines: lines}
}

// drain delivers ticks until the timer stops.
func drain(e *Engine, tm *fakeTimer) int {
	n := 0
	for tm.running {
		e.Tick(tm.gen)
		n++
	}
	return n
}

func mustStart(t *testing.T, e *Engine, c *dialogue.Conversation) {
	t.Helper()
	if err := e.StartConversation(context.Background(), "test", c); err != nil {
		t.Fatalf("StartConversation: %v", err)
	}
}

func TestLinearConversation(t *testing.T) {
	ctx := context.Background()
	e, s, tm := newEngine(Options{})
	mustStart(t, e, conv(line(0, "Hi", 1), line(1, "Bye", -1)))

	if e.State() != Presenting || s.text != "Hi" || s.chars != 0 || !s.visible {
		t.Fatalf("after start: state=%s surface=%+v", e.State(), s)
	}
	if !tm.running {
		t.Fatal("reveal timer not started")
	}

	must(t, e.Advance(ctx))
	if e.State() != Complete || s.chars != 2 || tm.running {
		t.Fatalf("after skip: state=%s chars=%d running=%v", e.State(), s.chars, tm.running)
	}

	must(t, e.Advance(ctx))
	if e.State() != Presenting || s.text != "Bye" || s.chars != 0 {
		t.Fatalf("after next: state=%s text=%q", e.State(), s.text)
	}

	must(t, e.Advance(ctx))
	must(t, e.Advance(ctx))
	if e.State() != Idle || s.visible {
		t.Fatalf("after last: state=%s visible=%v", e.State(), s.visible)
	}
	if e.Reason() != ReasonFinished {
		t.Errorf("Reason() = %q, want finished", e.Reason())
	}
	if _, ok := e.Current(); ok {
		t.Error("conversation should be dropped at end")
	}
}

func TestChoices(t *testing.T) {
	ctx := context.Background()
	e, s, _ := newEngine(Options{})
	mustStart(t, e, conv(
		line(0, "Which?", 99, dialogue.Choice{Text: "one", ConnectsTo: 1}, dialogue.Choice{Text: "two", ConnectsTo: 2}),
		line(1, "One", -1),
		line(2, "Two", -1),
	))

	must(t, e.Advance(ctx))
	must(t, e.Advance(ctx))
	if e.State() != Choosing {
		t.Fatalf("state = %s, want choosing", e.State())
	}
	if !slices.Equal(s.choices, []string{"one", "two"}) || s.regions {
		t.Fatalf("choices=%v regions=%v", s.choices, s.regions)
	}
	if snap := e.Snapshot(); len(snap.Choices) != 2 {
		t.Errorf("snapshot choices = %v", snap.Choices)
	}

	if err := e.Advance(ctx); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Advance while choosing = %v, want ErrInvalidState", err)
	}
	if err := e.Choose(ctx, 2); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("Choose(2) = %v, want ErrInvalidChoice", err)
	}

	must(t, e.Choose(ctx, 1))
	cur, _ := e.Current()
	if cur.ID != 2 || e.State() != Presenting {
		t.Errorf("after choose: id=%d state=%s", cur.ID, e.State())
	}
	if s.choices != nil || !s.regions {
		t.Errorf("choices not cleared or regions hidden: %+v", s)
	}
}

func TestOutOfRangeLinkEnds(t *testing.T) {
	tests := []struct {
		name   string
		target int
	}{
		{"beyond end", 5},
		{"equal to length", 3},
		{"negative", -4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			e, s, _ := newEngine(Options{})
			mustStart(t, e, conv(line(0, "a", tt.target), line(1, "b", -1), line(2, "c", -1)))

			must(t, e.Advance(ctx))
			must(t, e.Advance(ctx))
			if e.State() != Idle || s.visible {
				t.Fatalf("state = %s, want idle", e.State())
			}
			if e.Reason() != ReasonDangling {
				t.Errorf("Reason() = %q, want dangling", e.Reason())
			}
		})
	}
}

func TestLinksResolveByID(t *testing.T) {
	ctx := context.Background()
	e, s, _ := newEngine(Options{})
	// Sequence position and id differ.
	mustStart(t, e, conv(line(1, "first", 0), line(0, "second", -1)))

	must(t, e.Advance(ctx))
	must(t, e.Advance(ctx))
	if s.text != "second" {
		t.Errorf("text = %q, want second", s.text)
	}
}

func TestChoiceLineIgnoresConnectsTo(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(Options{})
	mustStart(t, e, conv(line(0, "x", 1, dialogue.Choice{Text: "end", ConnectsTo: -1}), line(1, "never", -1)))

	must(t, e.Advance(ctx))
	must(t, e.Advance(ctx))
	must(t, e.Choose(ctx, 0))
	if e.State() != Idle || e.Reason() != ReasonFinished {
		t.Errorf("state=%s reason=%q", e.State(), e.Reason())
	}
}

func TestRevealTicks(t *testing.T) {
	e, s, tm := newEngine(Options{})
	mustStart(t, e, conv(line(0, "héllo", -1)))

	n := drain(e, tm)
	if n != 5 {
		t.Errorf("ticks = %d, want 5 (one per character)", n)
	}
	if e.State() != Complete || s.chars != 5 {
		t.Errorf("state=%s chars=%d", e.State(), s.chars)
	}
	if got := e.Snapshot().Visible(); got != "héllo" {
		t.Errorf("Visible() = %q", got)
	}
}

func TestStaleTicksIgnored(t *testing.T) {
	ctx := context.Background()
	e, s, tm := newEngine(Options{})
	mustStart(t, e, conv(line(0, "abc", 1), line(1, "xyz", -1)))

	old := tm.gen
	must(t, e.Advance(ctx))
	must(t, e.Advance(ctx))
	if tm.gen == old {
		t.Fatal("new line should use a new generation")
	}

	e.Tick(old)
	if s.chars != 0 {
		t.Errorf("stale tick revealed %d characters", s.chars)
	}
	e.Tick(tm.gen)
	if s.chars != 1 {
		t.Errorf("chars = %d, want 1", s.chars)
	}

	e.End(ctx)
	e.Tick(tm.gen)
	if e.State() != Idle {
		t.Errorf("tick after end changed state to %s", e.State())
	}
}

func TestAdvanceIdempotence(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(Options{})
	mustStart(t, e, conv(line(0, "a", 1), line(1, "b", 2), line(2, "c", -1)))

	want := []int{0, 1, 2}
	var seen []int
	for e.State() != Idle {
		cur, _ := e.Current()
		seen = append(seen, cur.ID)
		must(t, e.Advance(ctx)) // skip
		must(t, e.Advance(ctx)) // next
	}
	if !slices.Equal(seen, want) {
		t.Errorf("visited %v, want %v", seen, want)
	}
}

func TestEmptyTextCompletesImmediately(t *testing.T) {
	e, _, tm := newEngine(Options{})
	mustStart(t, e, conv(line(0, "", -1)))
	if e.State() != Complete || tm.running {
		t.Errorf("state=%s running=%v", e.State(), tm.running)
	}
}

func TestTickInterval(t *testing.T) {
	tests := []struct {
		speed float64
		want  time.Duration
	}{
		{0.05, 50 * time.Millisecond},
		{1, time.Second},
		{0, 20 * time.Millisecond},
		{-3, 20 * time.Millisecond},
		{7200, time.Hour},
		{1e10, time.Hour},
		{1e12, time.Hour},
	}
	for _, tt := range tests {
		e, _, tm := newEngine(Options{MinTick: 20 * time.Millisecond})
		l := line(0, "x", -1)
		l.TextSpeed = tt.speed
		mustStart(t, e, conv(l))
		if got := e.TickInterval(); got != tt.want {
			t.Errorf("speed %v: TickInterval() = %v, want %v", tt.speed, got, tt.want)
		}
		if tm.interval != tt.want {
			t.Errorf("speed %v: timer interval = %v, want %v", tt.speed, tm.interval, tt.want)
		}
	}
}

func TestInvalidStateWhileIdle(t *testing.T) {
	ctx := context.Background()
	e, _, _ := newEngine(Options{})

	err := e.Advance(ctx)
	if !perrors.Is(err, perrors.ErrCodeInvalidState) {
		t.Errorf("Advance while idle = %v", err)
	}
	if err := e.Choose(ctx, 0); !errors.Is(err, ErrInvalidState) {
		t.Errorf("Choose while idle = %v", err)
	}
	e.End(ctx)
	if e.Reason() != "" {
		t.Errorf("End while idle set reason %q", e.Reason())
	}
}

func TestStartFailuresKeepState(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	empty := filepath.Join(dir, "empty.json")
	must(t, os.WriteFile(empty, []byte(`{"_conversation": []}`), 0o644))

	e, s, _ := newEngine(Options{})
	mustStart(t, e, conv(line(0, "keep", -1)))

	tests := []struct {
		path string
		code perrors.Code
	}{
		{empty, perrors.ErrCodeDocumentMalformed},
		{filepath.Join(dir, "missing.json"), perrors.ErrCodeDocumentNotFound},
	}
	for _, tt := range tests {
		if err := e.Start(ctx, tt.path); !perrors.Is(err, tt.code) {
			t.Errorf("Start(%s) = %v, want %s", filepath.Base(tt.path), err, tt.code)
		}
		if e.State() != Presenting || s.text != "keep" {
			t.Errorf("failed start changed state to %s (%q)", e.State(), s.text)
		}
	}

	if err := e.Start(ctx, ""); err != nil {
		t.Errorf("Start(\"\") = %v, want nil", err)
	}
	if e.State() != Presenting {
		t.Error("empty path should be a no-op")
	}
}

func TestStartFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "c.json")
	doc := `{"_conversation": [{"_id": 0, "_name": "Ann", "_text": "Hey", "_portraitPath": "ann.png"}]}`
	must(t, os.WriteFile(path, []byte(doc), 0o644))

	loader := assets.LoaderFunc(func(p string) assets.Texture { return "tex:" + p })
	e, s, _ := newEngine(Options{Assets: loader})
	must(t, e.Start(context.Background(), path))

	if s.name != "Ann" || s.portrait != "tex:ann.png" {
		t.Errorf("surface = %+v", s)
	}
	if snap := e.Snapshot(); snap.LineID != 0 || snap.Portrait != "ann.png" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRestartReplacesConversation(t *testing.T) {
	ctx := context.Background()
	e, s, tm := newEngine(Options{})
	mustStart(t, e, conv(line(0, "a", -1, dialogue.Choice{Text: "x", ConnectsTo: -1})))
	must(t, e.Advance(ctx))
	must(t, e.Advance(ctx))
	old := tm.gen

	mustStart(t, e, conv(line(0, "b", -1)))
	if e.State() != Presenting || s.choices != nil || !s.regions || s.text != "b" {
		t.Errorf("restart left stale presentation: %+v", s)
	}
	if tm.gen == old {
		t.Error("restart should bump the generation")
	}
}

// With every link unresolvable, playback from line 0 reaches Idle within
// one transition per line.
func TestTermination(t *testing.T) {
	ctx := context.Background()
	rng := rand.New(rand.NewSource(1))
	for trial := 0; trial < 50; trial++ {
		n := 1 + rng.Intn(8)
		bad := func() int {
			if rng.Intn(2) == 0 {
				return -1
			}
			return n + rng.Intn(5)
		}
		var lines []dialogue.Dialogue
		for i := 0; i < n; i++ {
			var choices []dialogue.Choice
			for c := rng.Intn(3); c > 0; c-- {
				choices = append(choices, dialogue.Choice{Text: "c", ConnectsTo: bad()})
			}
			lines = append(lines, line(i, "t", bad(), choices...))
		}

		e, _, _ := newEngine(Options{})
		mustStart(t, e, conv(lines...))
		transitions := 0
		for e.State() != Idle && transitions <= n {
			must(t, e.Advance(ctx))
			must(t, e.Advance(ctx))
			if e.State() == Choosing {
				must(t, e.Choose(ctx, 0))
			}
			transitions++
		}
		if e.State() != Idle {
			t.Fatalf("trial %d: not idle after %d transitions", trial, transitions)
		}
	}
}

func must(t *testing.T, err error) {
	t.Helper()
	if err != nil {
		t.Fatal(err)
	}
}

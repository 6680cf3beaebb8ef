package editor

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/dialogue"
	perrors "github.com/matzehuels/parley/pkg/errors"
	"github.com/matzehuels/parley/pkg/io"
	"github.com/matzehuels/parley/pkg/observability"
)

// Options configures an Editor.
type Options struct {
	// BaseX and BaseY position newly added nodes.
	BaseX, BaseY float64
	// RepairChoiceLinks extends deletion repair to choice targets.
	RepairChoiceLinks bool
	// Assets resolves portrait previews. Nil disables previews.
	Assets assets.Loader
	// Logger receives operational logs. Nil discards them.
	Logger *log.Logger
	Hooks  observability.Hooks
}

// Connection is a visual link between two node slots, addressed by handle
// so it survives renumbering.
type Connection struct {
	From     uuid.UUID
	FromSlot int
	To       uuid.UUID
	ToSlot   int
}

// Editor owns one authoring session: the node arena, the order nodes were
// created or loaded in, the selection set and the visual connections.
//
// Editor is not safe for concurrent use. Hosts that dispatch input from
// several goroutines must serialize calls through a single owner.
type Editor struct {
	opts        Options
	log         *log.Logger
	hooks       observability.Hooks
	nodes       map[uuid.UUID]*Node
	order       []uuid.UUID
	selected    map[uuid.UUID]bool
	connections []Connection
}

// New creates an empty editor.
func New(opts Options) *Editor {
	if opts.Assets == nil {
		opts.Assets = assets.Nop
	}
	l := opts.Logger
	if l == nil {
		l = log.New(discard{})
	}
	return &Editor{
		opts:     opts,
		log:      l,
		hooks:    opts.Hooks.WithDefaults(),
		nodes:    make(map[uuid.UUID]*Node),
		selected: make(map[uuid.UUID]bool),
	}
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// =============================================================================
// Queries
// =============================================================================

// NodeCount returns the number of live nodes.
func (e *Editor) NodeCount() int { return len(e.order) }

// Nodes returns the live nodes in collection order. The pointers refer to
// the editor's nodes, so field edits through them are visible to Save.
func (e *Editor) Nodes() []*Node {
	out := make([]*Node, len(e.order))
	for i, h := range e.order {
		out[i] = e.nodes[h]
	}
	return out
}

// Node returns the node with the given handle.
func (e *Editor) Node(h uuid.UUID) (*Node, bool) {
	n, ok := e.nodes[h]
	return n, ok
}

// NodeByID returns the node currently carrying line id.
func (e *Editor) NodeByID(id int) (*Node, bool) {
	for _, h := range e.order {
		if n := e.nodes[h]; n.ID() == id {
			return n, true
		}
	}
	return nil, false
}

// Connections returns a copy of the visual connections.
func (e *Editor) Connections() []Connection { return slices.Clone(e.connections) }

// Selected returns the handles currently selected, in collection order.
func (e *Editor) Selected() []uuid.UUID {
	var out []uuid.UUID
	for _, h := range e.order {
		if e.selected[h] {
			out = append(out, h)
		}
	}
	return out
}

func (e *Editor) lookup(h uuid.UUID) (*Node, error) {
	n, ok := e.nodes[h]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownNode, h)
	}
	return n, nil
}

// =============================================================================
// Mutations
// =============================================================================

// AddNode appends a blank node whose id is the current node count.
func (e *Editor) AddNode(ctx context.Context) *Node {
	n := newNode(len(e.order), e.opts.Assets)
	n.Move(e.opts.BaseX, e.opts.BaseY)
	e.nodes[n.handle] = n
	e.order = append(e.order, n.handle)
	e.log.Debug("node added", "id", n.ID(), "handle", n.handle)
	e.hooks.Editor.OnNodeAdded(ctx, n.ID())
	return n
}

// AddChoice appends a choice to the node. When it is the node's first
// choice, the base output is disabled: its visual link is dropped and the
// line's own link is reset to -1, so deleting the choices later never
// brings back a link the canvas no longer shows.
func (e *Editor) AddChoice(h uuid.UUID) (int, error) {
	n, err := e.lookup(h)
	if err != nil {
		return -1, err
	}
	if !n.hasChoices {
		e.dropConnections(func(c Connection) bool { return c.From == h })
		n.line.ConnectsTo = dialogue.NoTarget
	}
	return n.AddChoice(), nil
}

// DeleteChoice removes the node's last choice together with the visual link
// leaving its slot.
func (e *Editor) DeleteChoice(h uuid.UUID, i int) error {
	n, err := e.lookup(h)
	if err != nil {
		return err
	}
	if err := n.DeleteChoice(i); err != nil {
		return err
	}
	e.dropConnections(func(c Connection) bool { return c.From == h && c.FromSlot == i })
	return nil
}

// Connect records a directed link from an output port of from to an input
// of to. For a linear node the port only anchors the drawing and the
// line's own link is set; for a branching node fromSlot selects the choice.
// A port holds one link, so an existing link from the same port is replaced;
// a linear node has a single output, so any link leaving it is replaced.
func (e *Editor) Connect(from uuid.UUID, fromSlot int, to uuid.UUID, toSlot int) error {
	src, err := e.lookup(from)
	if err != nil {
		return err
	}
	dst, err := e.lookup(to)
	if err != nil {
		return err
	}
	if !src.line.SetLink(fromSlot, dst.ID()) {
		return fmt.Errorf("%w: node %d has no port %d", ErrInvalidSlot, src.ID(), fromSlot)
	}

	linear := !src.HasChoices()
	e.dropConnections(func(c Connection) bool {
		return c.From == from && (linear || c.FromSlot == fromSlot)
	})
	e.connections = append(e.connections, Connection{From: from, FromSlot: fromSlot, To: to, ToSlot: toSlot})
	e.log.Debug("connected", "from", src.ID(), "slot", fromSlot, "to", dst.ID())
	return nil
}

// Disconnect removes a link recorded by Connect. The data link is reset to
// -1 only when it still points at to.
func (e *Editor) Disconnect(from uuid.UUID, fromSlot int, to uuid.UUID, toSlot int) error {
	src, err := e.lookup(from)
	if err != nil {
		return err
	}
	dst, err := e.lookup(to)
	if err != nil {
		return err
	}
	target, ok := src.line.Link(fromSlot)
	if !ok {
		return fmt.Errorf("%w: node %d has no port %d", ErrInvalidSlot, src.ID(), fromSlot)
	}
	if target == dst.ID() {
		src.line.SetLink(fromSlot, dialogue.NoTarget)
	}

	e.dropConnections(func(c Connection) bool {
		return c.From == from && c.FromSlot == fromSlot && c.To == to && c.ToSlot == toSlot
	})
	e.log.Debug("disconnected", "from", src.ID(), "slot", fromSlot, "to", dst.ID())
	return nil
}

// Select marks the node as selected.
func (e *Editor) Select(h uuid.UUID) error {
	if _, err := e.lookup(h); err != nil {
		return err
	}
	e.selected[h] = true
	return nil
}

// Deselect clears the node's selection mark.
func (e *Editor) Deselect(h uuid.UUID) error {
	if _, err := e.lookup(h); err != nil {
		return err
	}
	e.selected[h] = false
	return nil
}

// DeleteSelected deletes every selected node and returns the ids they had
// when they were removed.
//
// Ids above a removed node shift down by one so the graph stays dense.
// Every remaining line link that targeted a higher id follows the shift,
// and a link that targeted the removed node becomes -1. Choice targets are
// left untouched unless Options.RepairChoiceLinks is set.
//
// This differs from the historic editor rule, which decremented the link of
// every node whose own id was above the removed one whatever its target.
// That rule left links to the removed node pointing at its successor and
// missed links held by lower nodes; the repair here is keyed on the target.
func (e *Editor) DeleteSelected(ctx context.Context) []int {
	var deleted []int
	for _, h := range e.Selected() {
		n, ok := e.nodes[h]
		if !ok {
			continue
		}
		id := n.ID()
		for _, oh := range e.order {
			if oh == h {
				continue
			}
			other := e.nodes[oh]
			if other.ID() > id {
				other.setID(other.ID() - 1)
			}
			other.line.ConnectsTo = shiftTarget(other.line.ConnectsTo, id)
			if e.opts.RepairChoiceLinks {
				for i := range other.line.Choices {
					other.line.Choices[i].ConnectsTo = shiftTarget(other.line.Choices[i].ConnectsTo, id)
				}
			}
		}
		e.remove(h)
		deleted = append(deleted, id)
	}
	clear(e.selected)

	if len(deleted) > 0 {
		e.log.Info("deleted nodes", "ids", deleted, "remaining", len(e.order))
		e.hooks.Editor.OnNodesDeleted(ctx, deleted)
	}
	return deleted
}

// shiftTarget adjusts a link target after the line with id removed was
// deleted.
func shiftTarget(target, removed int) int {
	switch {
	case target == removed:
		return dialogue.NoTarget
	case target > removed:
		return target - 1
	default:
		return target
	}
}

// ClearAll removes every node, connection and selection mark.
func (e *Editor) ClearAll() {
	clear(e.nodes)
	e.order = e.order[:0]
	e.connections = e.connections[:0]
	clear(e.selected)
}

func (e *Editor) remove(h uuid.UUID) {
	delete(e.nodes, h)
	delete(e.selected, h)
	e.order = slices.DeleteFunc(e.order, func(o uuid.UUID) bool { return o == h })
	e.dropConnections(func(c Connection) bool { return c.From == h || c.To == h })
}

func (e *Editor) dropConnections(match func(Connection) bool) {
	e.connections = slices.DeleteFunc(e.connections, match)
}

// =============================================================================
// Persistence
// =============================================================================

// Load replaces the graph with the document at path. On any error the
// current graph is left as it was. The returned warnings list links that
// could not be reconnected; they stay in the data unresolved.
func (e *Editor) Load(ctx context.Context, path string) ([]error, error) {
	start := time.Now()
	conv, err := io.ImportJSON(path)
	if err != nil {
		e.log.Error("load failed", "path", path, "err", err)
		e.hooks.Editor.OnLoad(ctx, path, 0, 0, time.Since(start), err)
		return nil, err
	}
	return e.LoadConversation(ctx, path, conv)
}

// LoadConversation replaces the graph with conv. source names the document
// in logs and hooks.
//
// Loading happens in two passes: every line becomes a node first, then the
// links are reconnected by line id. A link whose target is missing or is the
// line itself is skipped and reported as a warning.
func (e *Editor) LoadConversation(ctx context.Context, source string, conv *dialogue.Conversation) ([]error, error) {
	start := time.Now()
	if err := checkIDs(conv); err != nil {
		e.log.Error("load failed", "source", source, "err", err)
		e.hooks.Editor.OnLoad(ctx, source, 0, 0, time.Since(start), err)
		return nil, err
	}

	e.ClearAll()
	byID := make(map[int]*Node, len(conv.Lines))
	for _, line := range conv.Lines {
		n := newNode(line.ID, e.opts.Assets)
		n.LoadData(line)
		e.nodes[n.handle] = n
		e.order = append(e.order, n.handle)
		byID[n.ID()] = n
	}

	var warnings []error
	for _, h := range e.order {
		n := e.nodes[h]
		for _, edge := range n.line.Edges() {
			if !edge.Resolved() {
				continue
			}
			dst, ok := byID[edge.Target]
			if !ok || dst == n {
				warnings = append(warnings, danglingRef(n.ID(), edge, dst == n && ok))
				continue
			}
			e.connections = append(e.connections, Connection{From: h, FromSlot: edge.Slot(), To: dst.handle})
		}
	}

	for _, w := range warnings {
		e.log.Warn("unresolved link", "source", source, "detail", w)
	}
	e.log.Info("loaded", "source", source, "lines", len(e.order))
	e.hooks.Editor.OnLoad(ctx, source, len(e.order), len(warnings), time.Since(start), nil)
	return warnings, nil
}

// checkIDs requires the line ids to be exactly 0..n-1 in any order.
func checkIDs(conv *dialogue.Conversation) error {
	seen := make([]bool, len(conv.Lines))
	for i, l := range conv.Lines {
		if l.ID < 0 || l.ID >= len(conv.Lines) {
			return perrors.New(perrors.ErrCodeDocumentMalformed, "line %d has id %d outside 0..%d", i, l.ID, len(conv.Lines)-1)
		}
		if seen[l.ID] {
			return perrors.New(perrors.ErrCodeDocumentMalformed, "duplicate line id %d", l.ID)
		}
		seen[l.ID] = true
	}
	return nil
}

func danglingRef(from int, edge dialogue.Edge, self bool) error {
	return &perrors.DanglingReferenceError{From: from, Choice: edge.Choice, Target: edge.Target, Self: self}
}

// Document writes every node's canvas geometry into its line and returns
// the lines, in collection order, as a fresh conversation.
func (e *Editor) Document() *dialogue.Conversation {
	conv := &dialogue.Conversation{Lines: make([]dialogue.Dialogue, 0, len(e.order))}
	for _, h := range e.order {
		n := e.nodes[h]
		n.storeGeometry()
		conv.Lines = append(conv.Lines, n.line.Clone())
	}
	return conv
}

// Save writes the graph as a conversation document to path.
func (e *Editor) Save(ctx context.Context, path string) error {
	start := time.Now()
	conv := e.Document()
	err := io.ExportJSON(conv, path)
	if err != nil {
		e.log.Error("save failed", "path", path, "err", err)
	} else {
		e.log.Info("saved", "path", path, "lines", len(conv.Lines))
	}
	e.hooks.Editor.OnSave(ctx, path, len(conv.Lines), time.Since(start), err)
	return err
}

// Warnings lists every link in the current graph whose target is neither -1
// nor another live line. Lines with choices report only their choices.
func (e *Editor) Warnings() []error {
	live := make(map[int]bool, len(e.order))
	for _, h := range e.order {
		live[e.nodes[h].ID()] = true
	}
	var out []error
	for _, h := range e.order {
		n := e.nodes[h]
		for _, edge := range n.line.Edges() {
			if !edge.Resolved() {
				continue
			}
			if self := edge.Target == n.ID(); self || !live[edge.Target] {
				out = append(out, danglingRef(n.ID(), edge, self))
			}
		}
	}
	return out
}

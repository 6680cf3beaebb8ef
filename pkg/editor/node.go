package editor

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/dialogue"
)

// Slot layout of a node. Slot 0 is the title bar, slot 1 carries the base
// input and the line's own output, and choice i is drawn at slot i+2.
const (
	BaseSlot        = 1
	firstChoiceSlot = 2
)

// titlePrefix is prepended to the line id to form a node's title.
const titlePrefix = "DIALOGUE_NODE_"

// DefaultSize is the canvas size of a freshly added node.
var DefaultSize = Vec2{X: 320, Y: 200}

// Vec2 is a canvas position or size.
type Vec2 struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Slot describes one connector row of a node.
type Slot struct {
	Index  int  `json:"index"`  // visual slot index
	Input  bool `json:"input"`  // accepts incoming links
	Output bool `json:"output"` // emits an outgoing link
	Choice int  `json:"choice"` // choice index, or -1 for the base slot
}

// Node pairs one dialogue line with its editing state and connector slots.
//
// A node either has no choices, in which case the base slot emits the line's
// own link, or has choices, in which case the base output is disabled and
// every choice emits its own link. Choices are removed last-first: only the
// most recently added choice carries the delete affordance.
type Node struct {
	handle     uuid.UUID
	title      string
	line       dialogue.Dialogue
	hasChoices bool
	preview    assets.Texture
	loader     assets.Loader

	Position Vec2
	Size     Vec2
}

func newNode(id int, loader assets.Loader) *Node {
	if loader == nil {
		loader = assets.Nop
	}
	return &Node{
		handle: uuid.New(),
		title:  titlePrefix + fmt.Sprint(id),
		line:   dialogue.NewDialogue(id),
		loader: loader,
		Size:   DefaultSize,
	}
}

// Handle returns the node's stable identity. Unlike ID it never changes.
func (n *Node) Handle() uuid.UUID { return n.handle }

// ID returns the dense line id.
func (n *Node) ID() int { return n.line.ID }

// Title returns the display title.
func (n *Node) Title() string { return n.title }

// HasChoices reports whether the node branches through choices.
func (n *Node) HasChoices() bool { return n.hasChoices }

// Dialogue returns a copy of the node's line.
func (n *Node) Dialogue() dialogue.Dialogue { return n.line.Clone() }

// Preview returns the portrait texture loaded for display, or nil.
func (n *Node) Preview() assets.Texture { return n.preview }

// OutputEnabled reports whether the base slot emits a link.
func (n *Node) OutputEnabled() bool { return !n.hasChoices }

// DeletableChoice returns the index of the choice carrying the delete
// affordance, or -1 when the node has no choices.
func (n *Node) DeletableChoice() int { return len(n.line.Choices) - 1 }

// Slots returns the connector layout in display order.
func (n *Node) Slots() []Slot {
	slots := []Slot{{Index: BaseSlot, Input: true, Output: !n.hasChoices, Choice: -1}}
	for i := range n.line.Choices {
		slots = append(slots, Slot{Index: i + firstChoiceSlot, Output: true, Choice: i})
	}
	return slots
}

// SetName sets the speaker label.
func (n *Node) SetName(name string) { n.line.Name = name }

// SetText sets the body text.
func (n *Node) SetText(text string) { n.line.Text = text }

// SetTextSpeed sets the reveal interval in seconds per character.
func (n *Node) SetTextSpeed(speed float64) { n.line.TextSpeed = speed }

// SetPortrait records the portrait path and loads it for preview.
func (n *Node) SetPortrait(path string) {
	n.line.PortraitPath = path
	n.preview = n.loader.LoadTexture(path)
}

// SetChoiceText sets the label of choice i.
func (n *Node) SetChoiceText(i int, text string) error {
	if i < 0 || i >= len(n.line.Choices) {
		return fmt.Errorf("%w: %d", ErrInvalidChoice, i)
	}
	n.line.Choices[i].Text = text
	return nil
}

// Move places the node on the canvas.
func (n *Node) Move(x, y float64) { n.Position = Vec2{X: x, Y: y} }

// Resize sets the node's canvas size.
func (n *Node) Resize(w, h float64) { n.Size = Vec2{X: w, Y: h} }

// AddChoice appends an empty, unresolved choice and returns its index.
// The first choice disables the base output.
func (n *Node) AddChoice() int {
	n.line.Choices = append(n.line.Choices, dialogue.NewChoice())
	n.hasChoices = true
	return len(n.line.Choices) - 1
}

// DeleteChoice removes choice i, which must be the last one. Removing the
// final choice re-enables the base output.
func (n *Node) DeleteChoice(i int) error {
	last := len(n.line.Choices) - 1
	switch {
	case last < 0:
		return ErrNoChoices
	case i != last:
		return fmt.Errorf("%w: got %d, last is %d", ErrChoiceOrder, i, last)
	}
	n.line.Choices = n.line.Choices[:last]
	if len(n.line.Choices) == 0 {
		n.hasChoices = false
	}
	return nil
}

// LoadData replaces the node's line with a deep copy of src, restores the
// canvas geometry and portrait preview, and rebuilds one choice slot per
// loaded choice.
func (n *Node) LoadData(src dialogue.Dialogue) {
	choices := src.Choices
	n.line = src.Clone()
	n.line.Choices = []dialogue.Choice{}
	n.hasChoices = false
	n.title = titlePrefix + fmt.Sprint(src.ID)

	for _, c := range choices {
		i := n.AddChoice()
		n.line.Choices[i] = c
	}

	n.Position = Vec2{X: src.OffsetX, Y: src.OffsetY}
	n.Size = Vec2{X: src.Width, Y: src.Height}
	n.preview = nil
	if src.PortraitPath != "" {
		n.preview = n.loader.LoadTexture(src.PortraitPath)
	}
}

// setID renumbers the node and refreshes its title.
func (n *Node) setID(id int) {
	n.line.ID = id
	n.title = titlePrefix + fmt.Sprint(id)
}

// storeGeometry writes the canvas position and size into the line.
func (n *Node) storeGeometry() {
	n.line.OffsetX, n.line.OffsetY = n.Position.X, n.Position.Y
	n.line.Width, n.line.Height = n.Size.X, n.Size.Y
}

package dialogue

import "fmt"

// EdgeKind distinguishes the two link shapes a line can carry.
type EdgeKind int

const (
	// EdgeDirect is the line's own link, used when it has no choices.
	EdgeDirect EdgeKind = iota
	// EdgeChoice is the link of one choice.
	EdgeChoice
)

// Edge is a single outgoing link of a line.
type Edge struct {
	Kind   EdgeKind
	Choice int // choice index for EdgeChoice, -1 otherwise
	Target int // target line id, or NoTarget
}

// Direct returns the direct edge to target.
func Direct(target int) Edge { return Edge{Kind: EdgeDirect, Choice: -1, Target: target} }

// ChoiceEdge returns the edge of choice index to target.
func ChoiceEdge(index, target int) Edge {
	return Edge{Kind: EdgeChoice, Choice: index, Target: target}
}

// Slot returns the output port the edge leaves from: 0 for a direct link,
// the choice index otherwise.
func (e Edge) Slot() int {
	if e.Kind == EdgeChoice {
		return e.Choice
	}
	return 0
}

// Resolved reports whether the edge has a target at all.
func (e Edge) Resolved() bool { return e.Target != NoTarget }

func (e Edge) String() string {
	if e.Kind == EdgeChoice {
		return fmt.Sprintf("choice[%d]->%d", e.Choice, e.Target)
	}
	return fmt.Sprintf("direct->%d", e.Target)
}

// Edges returns the outgoing links of the line: one direct edge when the
// line has no choices, otherwise one edge per choice in order.
func (d *Dialogue) Edges() []Edge {
	if !d.HasChoices() {
		return []Edge{Direct(d.ConnectsTo)}
	}
	edges := make([]Edge, len(d.Choices))
	for i, c := range d.Choices {
		edges[i] = ChoiceEdge(i, c.ConnectsTo)
	}
	return edges
}

// SetLink points output port slot at target. For a line without choices
// the slot is ignored and the direct link is set. It reports false when
// the line has choices and slot is out of range.
func (d *Dialogue) SetLink(slot, target int) bool {
	if !d.HasChoices() {
		d.ConnectsTo = target
		return true
	}
	if slot < 0 || slot >= len(d.Choices) {
		return false
	}
	d.Choices[slot].ConnectsTo = target
	return true
}

// Link returns the target of output port slot, mirroring SetLink.
func (d *Dialogue) Link(slot int) (int, bool) {
	if !d.HasChoices() {
		return d.ConnectsTo, true
	}
	if slot < 0 || slot >= len(d.Choices) {
		return NoTarget, false
	}
	return d.Choices[slot].ConnectsTo, true
}

package server

import (
	"github.com/google/uuid"

	"github.com/matzehuels/parley/pkg/dialogue"
	"github.com/matzehuels/parley/pkg/editor"
)

type nodeView struct {
	Handle          uuid.UUID         `json:"handle"`
	ID              int               `json:"id"`
	Title           string            `json:"title"`
	HasChoices      bool              `json:"has_choices"`
	DeletableChoice int               `json:"deletable_choice"`
	Slots           []editor.Slot     `json:"slots"`
	Position        editor.Vec2       `json:"position"`
	Size            editor.Vec2       `json:"size"`
	Selected        bool              `json:"selected"`
	Line            dialogue.Dialogue `json:"line"`
}

type connectionView struct {
	From     uuid.UUID `json:"from"`
	FromSlot int       `json:"from_slot"`
	To       uuid.UUID `json:"to"`
	ToSlot   int       `json:"to_slot"`
}

type sessionView struct {
	ID          uuid.UUID        `json:"id"`
	Document    string           `json:"document,omitempty"`
	Nodes       []nodeView       `json:"nodes"`
	Connections []connectionView `json:"connections"`
	Warnings    []string         `json:"warnings"`
}

func newNodeView(n *editor.Node, selected bool) nodeView {
	return nodeView{
		Handle:          n.Handle(),
		ID:              n.ID(),
		Title:           n.Title(),
		HasChoices:      n.HasChoices(),
		DeletableChoice: n.DeletableChoice(),
		Slots:           n.Slots(),
		Position:        n.Position,
		Size:            n.Size,
		Selected:        selected,
		Line:            n.Dialogue(),
	}
}

func newSessionView(sess *session) sessionView {
	ed := sess.editor
	selected := make(map[uuid.UUID]bool)
	for _, h := range ed.Selected() {
		selected[h] = true
	}
	v := sessionView{
		ID:          sess.id,
		Document:    sess.document,
		Nodes:       []nodeView{},
		Connections: []connectionView{},
		Warnings:    []string{},
	}
	for _, n := range ed.Nodes() {
		v.Nodes = append(v.Nodes, newNodeView(n, selected[n.Handle()]))
	}
	for _, c := range ed.Connections() {
		v.Connections = append(v.Connections, connectionView(c))
	}
	for _, w := range ed.Warnings() {
		v.Warnings = append(v.Warnings, w.Error())
	}
	return v
}

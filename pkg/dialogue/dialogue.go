package dialogue

import (
	"encoding/json"
	"slices"
)

// NoTarget marks a link that points nowhere.
const NoTarget = -1

// DefaultTextSpeed is the reveal interval, in seconds per character, used when
// a document omits _textSpeed.
const DefaultTextSpeed = 1.0

// Conversation is one loadable script. Position in Lines is the playback
// order of the first line only; links always resolve by id.
type Conversation struct {
	Lines []Dialogue `json:"_conversation"`
}

// Dialogue is a single spoken line.
type Dialogue struct {
	ID           int      `json:"_id"`
	Name         string   `json:"_name"`
	Text         string   `json:"_text"`
	TextSpeed    float64  `json:"_textSpeed"`
	// PortraitPath is empty when the line has no portrait. A null in the
	// document decodes to empty and is written back as "".
	PortraitPath string   `json:"_portraitPath"`
	ConnectsTo   int      `json:"_connectsTo"`
	Choices      []Choice `json:"_choices"`
	OffsetX      float64  `json:"_offsetX"`
	OffsetY      float64  `json:"_offsetY"`
	Width        float64  `json:"_width"`
	Height       float64  `json:"_height"`
}

// Choice is a player-selectable branch.
type Choice struct {
	Text       string `json:"_text"`
	ConnectsTo int    `json:"_connectsTo"`
}

// NewDialogue returns a blank line with the given id and default values.
func NewDialogue(id int) Dialogue {
	return Dialogue{
		ID:         id,
		TextSpeed:  DefaultTextSpeed,
		ConnectsTo: NoTarget,
		Choices:    []Choice{},
	}
}

// NewChoice returns an empty, unresolved choice.
func NewChoice() Choice {
	return Choice{ConnectsTo: NoTarget}
}

// UnmarshalJSON decodes a line, filling absent keys with defaults.
func (d *Dialogue) UnmarshalJSON(data []byte) error {
	type plain Dialogue
	v := plain(NewDialogue(0))
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	if v.Choices == nil {
		v.Choices = []Choice{}
	}
	*d = Dialogue(v)
	return nil
}

// UnmarshalJSON decodes a choice, filling absent keys with defaults.
func (c *Choice) UnmarshalJSON(data []byte) error {
	type plain Choice
	v := plain(NewChoice())
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	*c = Choice(v)
	return nil
}

// HasChoices reports whether the line branches through choices.
func (d *Dialogue) HasChoices() bool { return len(d.Choices) > 0 }

// Clone returns a deep copy of the line.
func (d Dialogue) Clone() Dialogue {
	d.Choices = slices.Clone(d.Choices)
	if d.Choices == nil {
		d.Choices = []Choice{}
	}
	return d
}

// Clone returns a deep copy of the conversation.
func (c *Conversation) Clone() *Conversation {
	out := &Conversation{Lines: make([]Dialogue, len(c.Lines))}
	for i, l := range c.Lines {
		out.Lines[i] = l.Clone()
	}
	return out
}

// Len returns the number of lines.
func (c *Conversation) Len() int { return len(c.Lines) }

// IndexByID maps each line id to its position in Lines. When ids repeat,
// the first occurrence wins.
func (c *Conversation) IndexByID() map[int]int {
	m := make(map[int]int, len(c.Lines))
	for i, l := range c.Lines {
		if _, ok := m[l.ID]; !ok {
			m[l.ID] = i
		}
	}
	return m
}

// Line returns the line with the given id.
func (c *Conversation) Line(id int) (*Dialogue, bool) {
	for i := range c.Lines {
		if c.Lines[i].ID == id {
			return &c.Lines[i], true
		}
	}
	return nil, false
}

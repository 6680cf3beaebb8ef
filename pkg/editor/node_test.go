package editor

import (
	"errors"
	"testing"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/dialogue"
	perrors "github.com/matzehuels/parley/pkg/errors"
)

func TestNewNodeDefaults(t *testing.T) {
	n := newNode(3, nil)
	if n.ID() != 3 {
		t.Errorf("ID() = %d, want 3", n.ID())
	}
	if n.Title() != "DIALOGUE_NODE_3" {
		t.Errorf("Title() = %q", n.Title())
	}
	if n.HasChoices() || !n.OutputEnabled() {
		t.Error("new node should be linear with its base output enabled")
	}
	d := n.Dialogue()
	if d.TextSpeed != dialogue.DefaultTextSpeed || d.ConnectsTo != dialogue.NoTarget {
		t.Errorf("line defaults = %+v", d)
	}
	if n.DeletableChoice() != -1 {
		t.Errorf("DeletableChoice() = %d, want -1", n.DeletableChoice())
	}
}

func TestAddChoiceSlots(t *testing.T) {
	n := newNode(0, nil)

	if i := n.AddChoice(); i != 0 {
		t.Fatalf("AddChoice() = %d, want 0", i)
	}
	if !n.HasChoices() || n.OutputEnabled() {
		t.Fatal("first choice should disable the base output")
	}
	n.AddChoice()

	slots := n.Slots()
	if len(slots) != 3 {
		t.Fatalf("len(Slots()) = %d, want 3", len(slots))
	}
	if slots[0].Index != BaseSlot || !slots[0].Input || slots[0].Output {
		t.Errorf("base slot = %+v", slots[0])
	}
	for i, s := range slots[1:] {
		if s.Index != i+2 || s.Choice != i || !s.Output || s.Input {
			t.Errorf("choice slot %d = %+v", i, s)
		}
	}
	if n.DeletableChoice() != 1 {
		t.Errorf("DeletableChoice() = %d, want 1", n.DeletableChoice())
	}

	c := n.Dialogue().Choices[1]
	if c.Text != "" || c.ConnectsTo != dialogue.NoTarget {
		t.Errorf("new choice = %+v", c)
	}
}

func TestDeleteChoice(t *testing.T) {
	n := newNode(0, nil)
	n.AddChoice()
	n.AddChoice()

	err := n.DeleteChoice(0)
	if !errors.Is(err, ErrChoiceOrder) {
		t.Fatalf("DeleteChoice(0) = %v, want ErrChoiceOrder", err)
	}
	if !perrors.Is(err, perrors.ErrCodeInvalidState) {
		t.Errorf("code = %v, want INVALID_STATE", perrors.GetCode(err))
	}

	if err := n.DeleteChoice(1); err != nil {
		t.Fatalf("DeleteChoice(1) = %v", err)
	}
	if !n.HasChoices() || n.DeletableChoice() != 0 {
		t.Error("one choice should remain and carry the delete affordance")
	}

	if err := n.DeleteChoice(0); err != nil {
		t.Fatalf("DeleteChoice(0) = %v", err)
	}
	if n.HasChoices() || !n.OutputEnabled() {
		t.Error("removing the last choice should restore the base output")
	}
	if err := n.DeleteChoice(0); !errors.Is(err, ErrNoChoices) {
		t.Errorf("DeleteChoice on linear node = %v, want ErrNoChoices", err)
	}
}

func TestEditFields(t *testing.T) {
	var loaded []string
	loader := assets.LoaderFunc(func(p string) assets.Texture {
		loaded = append(loaded, p)
		return p
	})
	n := newNode(0, loader)

	n.SetName("Guide")
	n.SetText("Hello")
	n.SetTextSpeed(0)
	n.SetPortrait("guide.png")
	n.AddChoice()
	if err := n.SetChoiceText(0, "Hi"); err != nil {
		t.Fatal(err)
	}
	if err := n.SetChoiceText(4, "nope"); !errors.Is(err, ErrInvalidChoice) {
		t.Errorf("SetChoiceText(4) = %v, want ErrInvalidChoice", err)
	}

	d := n.Dialogue()
	if d.Name != "Guide" || d.Text != "Hello" || d.TextSpeed != 0 || d.PortraitPath != "guide.png" {
		t.Errorf("line = %+v", d)
	}
	if d.Choices[0].Text != "Hi" {
		t.Errorf("choice text = %q", d.Choices[0].Text)
	}
	if n.Preview() != "guide.png" || len(loaded) != 1 {
		t.Errorf("preview = %v, loads = %v", n.Preview(), loaded)
	}
}

func TestLoadData(t *testing.T) {
	src := dialogue.NewDialogue(5)
	src.Name = "Captain"
	src.Text = "Choose."
	src.TextSpeed = 0.2
	src.ConnectsTo = 2
	src.Choices = []dialogue.Choice{{Text: "A", ConnectsTo: 1}, {Text: "B", ConnectsTo: 3}}
	src.OffsetX, src.OffsetY, src.Width, src.Height = 10, 20, 300, 150

	n := newNode(0, nil)
	n.LoadData(src)

	src.Choices[0].Text = "mutated"

	d := n.Dialogue()
	if d.ID != 5 || n.Title() != "DIALOGUE_NODE_5" {
		t.Errorf("id/title = %d/%q", d.ID, n.Title())
	}
	if d.Choices[0].Text != "A" {
		t.Error("LoadData must deep-copy choices")
	}
	if !n.HasChoices() || len(n.Slots()) != 3 || n.DeletableChoice() != 1 {
		t.Errorf("choice slots not rebuilt: %+v", n.Slots())
	}
	if n.Position != (Vec2{10, 20}) || n.Size != (Vec2{300, 150}) {
		t.Errorf("geometry = %+v %+v", n.Position, n.Size)
	}
	if d.ConnectsTo != 2 {
		t.Errorf("ConnectsTo = %d, want 2 (kept even though unused)", d.ConnectsTo)
	}
}

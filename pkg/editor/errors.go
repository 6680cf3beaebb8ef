package editor

import perrors "github.com/matzehuels/parley/pkg/errors"

var (
	// ErrUnknownNode is returned when a handle does not name a live node.
	ErrUnknownNode = perrors.New(perrors.ErrCodeNodeNotFound, "unknown node")

	// ErrInvalidSlot is returned by [Editor.Connect] and [Editor.Disconnect]
	// when a branching node is addressed through a port it does not have.
	ErrInvalidSlot = perrors.New(perrors.ErrCodeInvalidInput, "invalid output slot")

	// ErrInvalidChoice is returned when a choice index is out of range.
	ErrInvalidChoice = perrors.New(perrors.ErrCodeInvalidInput, "invalid choice index")

	// ErrNoChoices is returned by [Node.DeleteChoice] on a linear node.
	ErrNoChoices = perrors.New(perrors.ErrCodeInvalidState, "node has no choices")

	// ErrChoiceOrder is returned by [Node.DeleteChoice] when the index is not
	// the most recently added choice. Out-of-order removal is unsupported.
	ErrChoiceOrder = perrors.New(perrors.ErrCodeInvalidState, "only the last choice can be deleted")
)

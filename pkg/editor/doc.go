// Package editor is the authoring model behind the node-graph dialogue
// editor.
//
// Each [Node] wraps one [dialogue.Dialogue] and adds what only the canvas
// needs: a stable [uuid.UUID] handle, a title, a position and size, and its
// port layout. Lines are numbered 0..n-1 in the order they were created or
// loaded; links inside the data refer to those numbers.
//
// # Ports
//
// A node without choices has one output port and sets the line's own link.
// Adding the first choice turns that output off; from then on port i is
// choice i. [Editor.Connect] and [Editor.Disconnect] address ports this way
// and keep a visual [Connection] list keyed by handle.
//
// # Deletion
//
// [Editor.DeleteSelected] removes nodes one at a time. After each removal
// the remaining lines are renumbered to stay dense, and every plain link is
// repaired: a link to the removed line becomes -1 and a link past it moves
// down by one. Choice links are repaired the same way only when
// [Options.RepairChoiceLinks] is set.
//
// # Persistence
//
// [Editor.Load] reads a document through the io package and rebuilds the
// graph in two passes, nodes first and links second. Links that name a
// missing line are kept in the data and reported as warnings. A document
// that cannot be read, or whose ids are not exactly 0..n-1, leaves the
// current graph untouched.
//
// An Editor is not safe for concurrent use.
package editor

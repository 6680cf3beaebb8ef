// Package dialogue defines the conversation document model shared by the
// graph editor and the playback engine.
//
// # Overview
//
// A [Conversation] is an ordered list of [Dialogue] lines. Each line carries a
// dense integer id, a speaker name, the body text, a reveal speed and the
// canvas geometry used by the editor. A line either links directly to the
// next line through [Dialogue.ConnectsTo], or owns one or more [Choice]
// entries that each link to a target line. The two shapes are never mixed:
// a line with choices ignores ConnectsTo, and a line without choices has no
// choice list to consult.
//
// # Edges
//
// [Dialogue.Edges] exposes both shapes through one typed [Edge] value so
// callers walking the graph (reconnection, rendering, validation) do not
// need two code paths:
//
//	for _, e := range line.Edges() {
//	    if e.Target == dialogue.NoTarget {
//	        continue
//	    }
//	    fmt.Println(e.Slot(), "->", e.Target)
//	}
//
// # Persistence
//
// Field names on disk use the underscore-prefixed keys of existing authored
// content (_conversation, _id, _name, ...). Decoding fills absent keys with
// their defaults: empty name and text, textSpeed 1.0, connectsTo -1, no
// choices and zero geometry. Encoding and file handling live in package io.
//
// Cycles are allowed by the model. Nothing here validates reachability.
package dialogue

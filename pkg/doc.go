// Package pkg provides the core libraries for Parley branching dialogue.
//
// # Overview
//
// A conversation is a list of spoken lines. Each line links to the next by
// id, or offers the player choices that each link somewhere. The pkg
// directory is organized around that document:
//
//  1. [dialogue] - The line and choice types and their link edges
//  2. [io] - JSON encoding of conversation documents
//  3. [editor] - The node-graph authoring model
//  4. [playback] - The typewriter presentation state machine
//  5. [render] - Graphviz diagrams of a conversation
//  6. [store] and [server] - Document storage and the HTTP backend
//
// # Architecture
//
// The typical data flow:
//
//	conversation.json
//	       ↓
//	  [io] package (decode, fill defaults)
//	       ↓
//	  [editor] ⇄ [store]        [playback] → Surface
//	       ↓
//	  [render/nodelink] → DOT/SVG/PNG
//
// # Quick Start
//
// Play a document against a host surface:
//
//	timer := playback.NewChannelTimer()
//	engine := playback.New(surface, timer, playback.Options{})
//	if err := engine.Start(ctx, "intro.json"); err != nil {
//	    return err
//	}
//	for gen := range timer.Ticks() {
//	    engine.Tick(gen)
//	}
//
// Edit and save:
//
//	ed := editor.New(editor.Options{BaseX: 80, BaseY: 80})
//	a, b := ed.AddNode(ctx), ed.AddNode(ctx)
//	a.SetText("Hello.")
//	if err := ed.Connect(a.Handle(), 0, b.Handle(), 0); err != nil {
//	    return err
//	}
//	err := ed.Save(ctx, "intro.json")
//
// Supporting packages are [config] (TOML settings), [errors] (coded
// errors), [observability] (hooks) and [assets] (portrait lookup).
//
// [dialogue]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/dialogue
// [io]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/io
// [editor]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/editor
// [playback]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/playback
// [render]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/render/nodelink
// [store]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/store
// [server]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/server
// [config]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/observability
// [assets]: https://pkg.go.dev/github.com/matzehuels/parley/pkg/assets
package pkg

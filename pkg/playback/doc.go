// Package playback replays a conversation document as an on-screen dialogue
// with a typewriter reveal and branching choices.
//
// # Overview
//
// An [Engine] walks a [dialogue.Conversation] and writes what the player
// should see to a host-provided [Surface]. The host forwards player input by
// calling [Engine.Advance] and [Engine.Choose], and forwards timer ticks by
// calling [Engine.Tick]. The engine never blocks and never spawns goroutines
// of its own; everything happens on the caller's goroutine.
//
// # States
//
// The engine moves between four states:
//
//   - [Idle]: no conversation is shown
//   - [Presenting]: the current line's text is being revealed
//   - [Complete]: the whole line is visible and the engine waits for advance
//   - [Choosing]: the line's choices are shown and only [Engine.Choose] is honored
//
// Advance while [Presenting] snaps the remaining text into view. Advance
// while [Complete] either shows the line's choices or follows the line's
// own link. A link that does not name a line in the conversation ends the
// conversation; the engine always has a safe way back to [Idle].
//
// # Reveal Ticks
//
// Each line is revealed one character per tick. The engine asks its [Timer]
// to tick at [Engine.TickInterval] and tags the request with a generation
// number. Starting a new line or ending the conversation bumps the
// generation, so a tick that was already queued for an earlier line is
// ignored by [Engine.Tick] instead of mutating the line that replaced it.
//
// Hosts driven by a message loop (bubbletea, a websocket handler) deliver
// ticks as messages; [ChannelTimer] adapts a wall-clock ticker to that model.
package playback

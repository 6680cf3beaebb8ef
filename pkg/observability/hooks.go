// Package observability provides hooks for metrics, tracing, and logging.
//
// This package enables optional instrumentation without adding hard dependencies
// on specific observability backends. Consumers construct a [Hooks] value and
// hand it to the editor, the playback engine or a store when building them.
//
// # Architecture
//
// The package uses a simple hooks pattern:
//   - Define hook interfaces for different event categories
//   - Provide no-op default implementations
//   - Provide a logging implementation backed by charmbracelet/log
//
// Hooks are owned by whoever constructs the component. There is no process
// wide registry, so two editors in one process can report to different sinks.
//
// # Usage
//
//	hooks := observability.Hooks{Playback: observability.NewLogHooks(logger)}
//	eng := playback.New(surface, timer, playback.Options{Hooks: hooks})
//
// Components call hooks to emit events:
//
//	h.Editor.OnLoad(ctx, path, len(conv.Lines), len(warnings), time.Since(start), err)
package observability

import (
	"context"
	"time"
)

// =============================================================================
// Editor Hooks
// =============================================================================

// EditorHooks receives events from the graph editor.
type EditorHooks interface {
	// Persistence events
	OnLoad(ctx context.Context, source string, lines, warnings int, duration time.Duration, err error)
	OnSave(ctx context.Context, target string, lines int, duration time.Duration, err error)

	// Graph mutation events
	OnNodeAdded(ctx context.Context, id int)
	OnNodesDeleted(ctx context.Context, ids []int)
}

// =============================================================================
// Playback Hooks
// =============================================================================

// PlaybackHooks receives events from the playback engine.
type PlaybackHooks interface {
	// OnConversationStart records a conversation entering presentation.
	OnConversationStart(ctx context.Context, source string, lines int)

	// OnLineStart records a line starting its reveal.
	OnLineStart(ctx context.Context, id int)

	// OnChoice records a player selecting a choice.
	OnChoice(ctx context.Context, from, index, target int)

	// OnConversationEnd records the conversation returning to idle.
	OnConversationEnd(ctx context.Context, reason string)
}

// =============================================================================
// Store Hooks
// =============================================================================

// StoreHooks receives events from document stores.
type StoreHooks interface {
	// OnGet records a document read.
	OnGet(ctx context.Context, backend, name string, found bool, duration time.Duration)

	// OnPut records a document write.
	OnPut(ctx context.Context, backend, name string, size int, duration time.Duration, err error)
}

// =============================================================================
// No-op Implementations
// =============================================================================

// NoopEditorHooks is a no-op implementation of EditorHooks.
type NoopEditorHooks struct{}

func (NoopEditorHooks) OnLoad(context.Context, string, int, int, time.Duration, error) {}
func (NoopEditorHooks) OnSave(context.Context, string, int, time.Duration, error)      {}
func (NoopEditorHooks) OnNodeAdded(context.Context, int)                               {}
func (NoopEditorHooks) OnNodesDeleted(context.Context, []int)                          {}

// NoopPlaybackHooks is a no-op implementation of PlaybackHooks.
type NoopPlaybackHooks struct{}

func (NoopPlaybackHooks) OnConversationStart(context.Context, string, int) {}
func (NoopPlaybackHooks) OnLineStart(context.Context, int)                 {}
func (NoopPlaybackHooks) OnChoice(context.Context, int, int, int)          {}
func (NoopPlaybackHooks) OnConversationEnd(context.Context, string)        {}

// NoopStoreHooks is a no-op implementation of StoreHooks.
type NoopStoreHooks struct{}

func (NoopStoreHooks) OnGet(context.Context, string, string, bool, time.Duration)       {}
func (NoopStoreHooks) OnPut(context.Context, string, string, int, time.Duration, error) {}

// =============================================================================
// Hook Bundle
// =============================================================================

// Hooks bundles the hook sets a component may report to. Nil members are
// treated as no-ops.
type Hooks struct {
	Editor   EditorHooks
	Playback PlaybackHooks
	Store    StoreHooks
}

// WithDefaults returns a copy of h with nil members replaced by no-ops.
func (h Hooks) WithDefaults() Hooks {
	if h.Editor == nil {
		h.Editor = NoopEditorHooks{}
	}
	if h.Playback == nil {
		h.Playback = NoopPlaybackHooks{}
	}
	if h.Store == nil {
		h.Store = NoopStoreHooks{}
	}
	return h
}

package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event to a charmbracelet logger. It implements
// EditorHooks, PlaybackHooks and StoreHooks.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks writing to l at debug level, with failures at
// warn level.
func NewLogHooks(l *log.Logger) *LogHooks {
	return &LogHooks{logger: l}
}

// All returns a bundle using these hooks for every category.
func (h *LogHooks) All() Hooks {
	return Hooks{Editor: h, Playback: h, Store: h}
}

func (h *LogHooks) OnLoad(_ context.Context, source string, lines, warnings int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("load failed", "source", source, "err", err)
		return
	}
	h.logger.Debug("loaded", "source", source, "lines", lines, "warnings", warnings, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnSave(_ context.Context, target string, lines int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("save failed", "target", target, "err", err)
		return
	}
	h.logger.Debug("saved", "target", target, "lines", lines, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnNodeAdded(_ context.Context, id int) {
	h.logger.Debug("node added", "id", id)
}

func (h *LogHooks) OnNodesDeleted(_ context.Context, ids []int) {
	h.logger.Debug("nodes deleted", "ids", ids)
}

func (h *LogHooks) OnConversationStart(_ context.Context, source string, lines int) {
	h.logger.Debug("conversation started", "source", source, "lines", lines)
}

func (h *LogHooks) OnLineStart(_ context.Context, id int) {
	h.logger.Debug("line", "id", id)
}

func (h *LogHooks) OnChoice(_ context.Context, from, index, target int) {
	h.logger.Debug("choice", "line", from, "index", index, "target", target)
}

func (h *LogHooks) OnConversationEnd(_ context.Context, reason string) {
	h.logger.Debug("conversation ended", "reason", reason)
}

func (h *LogHooks) OnGet(_ context.Context, backend, name string, found bool, d time.Duration) {
	h.logger.Debug("store get", "backend", backend, "name", name, "found", found, "took", d.Round(time.Microsecond))
}

func (h *LogHooks) OnPut(_ context.Context, backend, name string, size int, d time.Duration, err error) {
	if err != nil {
		h.logger.Warn("store put failed", "backend", backend, "name", name, "err", err)
		return
	}
	h.logger.Debug("store put", "backend", backend, "name", name, "bytes", size, "took", d.Round(time.Microsecond))
}

var (
	_ EditorHooks   = (*LogHooks)(nil)
	_ PlaybackHooks = (*LogHooks)(nil)
	_ StoreHooks    = (*LogHooks)(nil)
)

package server

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/parley/pkg/assets"
	perrors "github.com/matzehuels/parley/pkg/errors"
	"github.com/matzehuels/parley/pkg/playback"
	"github.com/matzehuels/parley/pkg/store"
)

// playAction is a message from the player.
type playAction struct {
	Type  string `json:"type"` // "advance", "choose" or "end"
	Index int    `json:"index"`
}

// playFrame is what the client should display.
type playFrame struct {
	Type     string   `json:"type"` // "frame" or "error"
	State    string   `json:"state,omitempty"`
	LineID   int      `json:"line_id"`
	Name     string   `json:"name,omitempty"`
	Text     string   `json:"text,omitempty"`
	Visible  string   `json:"visible,omitempty"`
	Choices  []string `json:"choices,omitempty"`
	Portrait string   `json:"portrait,omitempty"`
	Reason   string   `json:"reason,omitempty"`
	Error    string   `json:"error,omitempty"`
	Message  string   `json:"message,omitempty"`
}

func newFrame(eng *playback.Engine) playFrame {
	snap := eng.Snapshot()
	f := playFrame{
		Type:     "frame",
		State:    snap.State.String(),
		LineID:   snap.LineID,
		Name:     snap.Name,
		Text:     snap.Text,
		Visible:  snap.Visible(),
		Choices:  snap.Choices,
		Portrait: snap.Portrait,
	}
	if snap.State == playback.Idle {
		f.Reason = string(eng.Reason())
	}
	return f
}

func errorFrame(err error) playFrame {
	return playFrame{Type: "error", LineID: -1, Error: string(perrors.GetCode(err)), Message: perrors.UserMessage(err)}
}

// frameSurface discards presentation calls; frames are built from the
// engine's snapshot after every step.
type frameSurface struct{}

func (frameSurface) SetVisible(bool)            {}
func (frameSurface) ShowLineRegions(bool)       {}
func (frameSurface) SetName(string)             {}
func (frameSurface) SetText(string)             {}
func (frameSurface) SetVisibleCharacters(int)   {}
func (frameSurface) SetPortrait(assets.Texture) {}
func (frameSurface) ShowChoices([]string)       {}
func (frameSurface) ClearChoices()              {}

// handlePlay runs one conversation over a WebSocket. The reader goroutine
// only decodes actions; the handler goroutine owns the engine and the write
// side of the connection.
func (s *Server) handlePlay(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	conv, err := store.Load(r.Context(), s.opts.Store, name)
	if err != nil {
		s.writeError(w, err)
		return
	}

	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.Warn("websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	actions := make(chan playAction)
	go func() {
		defer cancel()
		for {
			var a playAction
			if err := conn.ReadJSON(&a); err != nil {
				return
			}
			select {
			case actions <- a:
			case <-ctx.Done():
				return
			}
		}
	}()

	timer := playback.NewChannelTimer()
	defer timer.Stop()
	eng := playback.New(frameSurface{}, timer, playback.Options{
		MinTick: s.opts.Playback.MinTick(),
		Assets:  s.opts.Assets,
		Logger:  s.log.With("play", name),
		Hooks:   s.opts.Hooks,
	})
	if err := eng.StartConversation(ctx, name, conv); err != nil {
		conn.WriteJSON(errorFrame(err))
		return
	}
	if err := conn.WriteJSON(newFrame(eng)); err != nil {
		return
	}

	for {
		select {
		case <-ctx.Done():
			eng.End(context.WithoutCancel(ctx))
			return

		case gen := <-timer.Ticks():
			if gen != eng.Generation() {
				continue
			}
			eng.Tick(gen)
			if err := conn.WriteJSON(newFrame(eng)); err != nil {
				return
			}

		case a := <-actions:
			var err error
			switch a.Type {
			case "advance":
				err = eng.Advance(ctx)
			case "choose":
				err = eng.Choose(ctx, a.Index)
			case "end":
				eng.End(ctx)
			default:
				err = perrors.New(perrors.ErrCodeInvalidInput, "unknown action %q", a.Type)
			}
			frame := newFrame(eng)
			if err != nil {
				frame = errorFrame(err)
			}
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}

		if eng.State() == playback.Idle {
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, string(eng.Reason()))
			conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			return
		}
	}
}

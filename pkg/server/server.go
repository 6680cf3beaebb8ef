package server

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/matzehuels/parley/pkg/assets"
	"github.com/matzehuels/parley/pkg/buildinfo"
	"github.com/matzehuels/parley/pkg/config"
	perrors "github.com/matzehuels/parley/pkg/errors"
	"github.com/matzehuels/parley/pkg/observability"
	"github.com/matzehuels/parley/pkg/store"
)

// Options configures a Server.
type Options struct {
	Store    store.Store
	Editor   config.Editor
	Playback config.Playback
	Assets   assets.Loader
	Logger   *log.Logger
	Hooks    observability.Hooks
}

// Server is the HTTP editor backend.
type Server struct {
	opts     Options
	log      *log.Logger
	router   chi.Router
	upgrader websocket.Upgrader

	mu       sync.Mutex
	sessions map[uuid.UUID]*session
}

// New builds a server over opts.Store. It panics if no store is given.
func New(opts Options) *Server {
	if opts.Store == nil {
		panic("server: nil store")
	}
	l := opts.Logger
	if l == nil {
		l = log.New(discard{})
	}
	s := &Server{
		opts:     opts,
		log:      l,
		sessions: make(map[uuid.UUID]*session),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
	s.router = s.routes()
	return s
}

type discard struct{}

func (discard) Write(p []byte) (int, error) { return len(p), nil }

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errc := make(chan error, 1)
	go func() { errc <- srv.ListenAndServe() }()
	s.log.Info("listening", "addr", addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	s.log.Info("shutting down")
	defer s.closeSessions()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.requestLogger)

	r.Route("/sessions", func(r chi.Router) {
		r.Post("/", s.handleCreateSession)
		r.Route("/{sid}", func(r chi.Router) {
			r.Get("/", s.session(s.handleGetSession))
			r.Delete("/", s.handleDeleteSession)
			r.Post("/load", s.session(s.handleLoad))
			r.Post("/save", s.session(s.handleSave))
			r.Post("/clear", s.session(s.handleClear))
			r.Post("/nodes", s.session(s.handleAddNode))
			r.Patch("/nodes/{nid}", s.session(s.handleEditNode))
			r.Post("/nodes/{nid}/choices", s.session(s.handleAddChoice))
			r.Put("/nodes/{nid}/choices/{idx}", s.session(s.handleSetChoice))
			r.Delete("/nodes/{nid}/choices/{idx}", s.session(s.handleDeleteChoice))
			r.Post("/connections", s.session(s.handleConnect))
			r.Delete("/connections", s.session(s.handleDisconnect))
			r.Post("/selection", s.session(s.handleSelection))
			r.Post("/delete-selected", s.session(s.handleDeleteSelected))
		})
	})

	r.Route("/documents", func(r chi.Router) {
		r.Get("/", s.handleListDocuments)
		r.Get("/{name}", s.handleGetDocument)
		r.Put("/{name}", s.handlePutDocument)
		r.Delete("/{name}", s.handleDeleteDocument)
		r.Get("/{name}/dot", s.handleDocumentDOT)
		r.Get("/{name}/svg", s.handleDocumentSVG)
	})

	r.Get("/play/{name}", s.handlePlay)
	r.Get("/version", handleVersion)
	return r
}

func handleVersion(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildinfo.Get())
}

func (s *Server) requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.Status(),
			"duration", time.Since(start),
			"id", middleware.GetReqID(r.Context()))
	})
}

// =============================================================================
// Responses
// =============================================================================

type errorBody struct {
	Error   perrors.Code `json:"error"`
	Message string       `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	code := perrors.GetCode(err)
	if code == "" {
		code = perrors.ErrCodeInternal
	}
	status := statusFor(code)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", "err", err)
	}
	writeJSON(w, status, errorBody{Error: code, Message: perrors.UserMessage(err)})
}

func statusFor(code perrors.Code) int {
	switch code {
	case perrors.ErrCodeDocumentNotFound, perrors.ErrCodeNodeNotFound, perrors.ErrCodeSessionNotFound:
		return http.StatusNotFound
	case perrors.ErrCodeDocumentMalformed:
		return http.StatusUnprocessableEntity
	case perrors.ErrCodeInvalidInput, perrors.ErrCodeInvalidName:
		return http.StatusBadRequest
	case perrors.ErrCodeInvalidState:
		return http.StatusConflict
	case perrors.ErrCodeStore:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func decode(r *http.Request, v any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return perrors.Wrap(perrors.ErrCodeInvalidInput, err, "invalid request body")
	}
	return nil
}

package server

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	perrors "github.com/matzehuels/parley/pkg/errors"
	pio "github.com/matzehuels/parley/pkg/io"
	"github.com/matzehuels/parley/pkg/render/nodelink"
	"github.com/matzehuels/parley/pkg/store"
)

// maxDocumentSize bounds PUT /documents/{name} bodies.
const maxDocumentSize = 8 << 20

func (s *Server) handleListDocuments(w http.ResponseWriter, r *http.Request) {
	names, err := s.opts.Store.List(r.Context())
	if err != nil {
		s.writeError(w, err)
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"documents": names})
}

func (s *Server) handleGetDocument(w http.ResponseWriter, r *http.Request) {
	data, err := s.opts.Store.Get(r.Context(), chi.URLParam(r, "name"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(data)
}

// handlePutDocument stores a document after checking that it decodes. The
// body is stored re-encoded so every stored document has the same layout.
func (s *Server) handlePutDocument(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	data, err := io.ReadAll(io.LimitReader(r.Body, maxDocumentSize+1))
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "read body"))
		return
	}
	if len(data) > maxDocumentSize {
		s.writeError(w, perrors.New(perrors.ErrCodeInvalidInput, "document exceeds %d bytes", maxDocumentSize))
		return
	}
	conv, err := pio.Unmarshal(data)
	if err != nil {
		s.writeError(w, err)
		return
	}
	if err := store.Save(r.Context(), s.opts.Store, name, conv); err != nil {
		s.writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "lines": len(conv.Lines)})
}

func (s *Server) handleDeleteDocument(w http.ResponseWriter, r *http.Request) {
	if err := s.opts.Store.Delete(r.Context(), chi.URLParam(r, "name")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) documentDOT(r *http.Request) (string, error) {
	conv, err := store.Load(r.Context(), s.opts.Store, chi.URLParam(r, "name"))
	if err != nil {
		return "", err
	}
	detailed := r.URL.Query().Get("detailed") == "true"
	return nodelink.ToDOT(conv, nodelink.Options{Detailed: detailed}), nil
}

func (s *Server) handleDocumentDOT(w http.ResponseWriter, r *http.Request) {
	dot, err := s.documentDOT(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/vnd.graphviz")
	io.WriteString(w, dot)
}

func (s *Server) handleDocumentSVG(w http.ResponseWriter, r *http.Request) {
	dot, err := s.documentDOT(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	svg, err := nodelink.RenderSVG(r.Context(), dot)
	if err != nil {
		s.writeError(w, perrors.Wrap(perrors.ErrCodeInternal, err, "render graph"))
		return
	}
	w.Header().Set("Content-Type", "image/svg+xml")
	w.Write(svg)
}

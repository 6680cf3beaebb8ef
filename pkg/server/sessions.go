package server

import (
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matzehuels/parley/pkg/editor"
	perrors "github.com/matzehuels/parley/pkg/errors"
	"github.com/matzehuels/parley/pkg/store"
)

// session is one editor owned by the server. mu serializes every request
// that touches the editor.
type session struct {
	mu       sync.Mutex
	id       uuid.UUID
	editor   *editor.Editor
	document string
}

type sessionHandler func(w http.ResponseWriter, r *http.Request, sess *session) error

// session resolves {sid}, locks the session for the duration of h and
// writes any error h returns.
func (s *Server) session(h sessionHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.lookupSession(r)
		if err != nil {
			s.writeError(w, err)
			return
		}
		sess.mu.Lock()
		defer sess.mu.Unlock()
		if err := h(w, r, sess); err != nil {
			s.writeError(w, err)
		}
	}
}

func (s *Server) lookupSession(r *http.Request) (*session, error) {
	id, err := uuid.Parse(chi.URLParam(r, "sid"))
	if err != nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "invalid session id")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	sess, ok := s.sessions[id]
	if !ok {
		return nil, perrors.New(perrors.ErrCodeSessionNotFound, "session %s not found", id)
	}
	return sess, nil
}

func (s *Server) newEditor() *editor.Editor {
	return editor.New(editor.Options{
		BaseX:             s.opts.Editor.BaseX,
		BaseY:             s.opts.Editor.BaseY,
		RepairChoiceLinks: s.opts.Editor.RepairChoiceLinks,
		Assets:            s.opts.Assets,
		Logger:            s.log,
		Hooks:             s.opts.Hooks,
	})
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	sess := &session{id: uuid.New(), editor: s.newEditor()}
	s.mu.Lock()
	s.sessions[sess.id] = sess
	s.mu.Unlock()
	s.log.Info("session created", "session", sess.id)
	writeJSON(w, http.StatusCreated, newSessionView(sess))
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, sess *session) error {
	writeJSON(w, http.StatusOK, newSessionView(sess))
	return nil
}

func (s *Server) handleDeleteSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.lookupSession(r)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.mu.Lock()
	delete(s.sessions, sess.id)
	s.mu.Unlock()
	s.log.Info("session deleted", "session", sess.id)
	w.WriteHeader(http.StatusNoContent)
}

// =============================================================================
// Persistence
// =============================================================================

type documentRequest struct {
	Name string `json:"name"`
}

type loadResponse struct {
	sessionView
	Loaded []string `json:"loaded_warnings"`
}

func (s *Server) handleLoad(w http.ResponseWriter, r *http.Request, sess *session) error {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	conv, err := store.Load(r.Context(), s.opts.Store, req.Name)
	if err != nil {
		return err
	}
	warnings, err := sess.editor.LoadConversation(r.Context(), req.Name, conv)
	if err != nil {
		return err
	}
	sess.document = req.Name

	resp := loadResponse{sessionView: newSessionView(sess), Loaded: []string{}}
	for _, w := range warnings {
		resp.Loaded = append(resp.Loaded, w.Error())
	}
	writeJSON(w, http.StatusOK, resp)
	return nil
}

func (s *Server) handleSave(w http.ResponseWriter, r *http.Request, sess *session) error {
	var req documentRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	name := req.Name
	if name == "" {
		name = sess.document
	}
	if err := perrors.ValidateDocumentName(name); err != nil {
		return err
	}
	conv := sess.editor.Document()
	if err := store.Save(r.Context(), s.opts.Store, name, conv); err != nil {
		return err
	}
	sess.document = name
	s.log.Info("saved", "session", sess.id, "document", name, "lines", len(conv.Lines))
	writeJSON(w, http.StatusOK, map[string]any{"name": name, "lines": len(conv.Lines)})
	return nil
}

func (s *Server) handleClear(w http.ResponseWriter, r *http.Request, sess *session) error {
	sess.editor.ClearAll()
	writeJSON(w, http.StatusOK, newSessionView(sess))
	return nil
}

// =============================================================================
// Nodes
// =============================================================================

func nodeParam(r *http.Request, sess *session) (*editor.Node, error) {
	h, err := uuid.Parse(chi.URLParam(r, "nid"))
	if err != nil {
		return nil, perrors.New(perrors.ErrCodeInvalidInput, "invalid node handle")
	}
	n, ok := sess.editor.Node(h)
	if !ok {
		return nil, editor.ErrUnknownNode
	}
	return n, nil
}

func choiceParam(r *http.Request) (int, error) {
	i, err := strconv.Atoi(chi.URLParam(r, "idx"))
	if err != nil {
		return 0, perrors.New(perrors.ErrCodeInvalidInput, "invalid choice index")
	}
	return i, nil
}

func (s *Server) handleAddNode(w http.ResponseWriter, r *http.Request, sess *session) error {
	n := sess.editor.AddNode(r.Context())
	writeJSON(w, http.StatusCreated, newNodeView(n, false))
	return nil
}

type nodePatch struct {
	Name      *string  `json:"name"`
	Text      *string  `json:"text"`
	TextSpeed *float64 `json:"text_speed"`
	Portrait  *string  `json:"portrait"`
	X         *float64 `json:"x"`
	Y         *float64 `json:"y"`
	Width     *float64 `json:"width"`
	Height    *float64 `json:"height"`
}

func (s *Server) handleEditNode(w http.ResponseWriter, r *http.Request, sess *session) error {
	n, err := nodeParam(r, sess)
	if err != nil {
		return err
	}
	var p nodePatch
	if err := decode(r, &p); err != nil {
		return err
	}
	if p.Name != nil {
		n.SetName(*p.Name)
	}
	if p.Text != nil {
		n.SetText(*p.Text)
	}
	if p.TextSpeed != nil {
		n.SetTextSpeed(*p.TextSpeed)
	}
	if p.Portrait != nil {
		n.SetPortrait(*p.Portrait)
	}
	pos, size := n.Position, n.Size
	if p.X != nil {
		pos.X = *p.X
	}
	if p.Y != nil {
		pos.Y = *p.Y
	}
	if p.Width != nil {
		size.X = *p.Width
	}
	if p.Height != nil {
		size.Y = *p.Height
	}
	n.Move(pos.X, pos.Y)
	n.Resize(size.X, size.Y)
	writeJSON(w, http.StatusOK, newNodeView(n, isSelected(sess, n)))
	return nil
}

func isSelected(sess *session, n *editor.Node) bool {
	for _, h := range sess.editor.Selected() {
		if h == n.Handle() {
			return true
		}
	}
	return false
}

func (s *Server) handleAddChoice(w http.ResponseWriter, r *http.Request, sess *session) error {
	n, err := nodeParam(r, sess)
	if err != nil {
		return err
	}
	i, err := sess.editor.AddChoice(n.Handle())
	if err != nil {
		return err
	}
	writeJSON(w, http.StatusCreated, map[string]any{"index": i, "node": newNodeView(n, isSelected(sess, n))})
	return nil
}

type choiceText struct {
	Text string `json:"text"`
}

func (s *Server) handleSetChoice(w http.ResponseWriter, r *http.Request, sess *session) error {
	n, err := nodeParam(r, sess)
	if err != nil {
		return err
	}
	i, err := choiceParam(r)
	if err != nil {
		return err
	}
	var req choiceText
	if err := decode(r, &req); err != nil {
		return err
	}
	if err := n.SetChoiceText(i, req.Text); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, newNodeView(n, isSelected(sess, n)))
	return nil
}

func (s *Server) handleDeleteChoice(w http.ResponseWriter, r *http.Request, sess *session) error {
	n, err := nodeParam(r, sess)
	if err != nil {
		return err
	}
	i, err := choiceParam(r)
	if err != nil {
		return err
	}
	if err := sess.editor.DeleteChoice(n.Handle(), i); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, newNodeView(n, isSelected(sess, n)))
	return nil
}

// =============================================================================
// Connections and selection
// =============================================================================

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request, sess *session) error {
	return s.link(w, r, sess, sess.editor.Connect)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request, sess *session) error {
	return s.link(w, r, sess, sess.editor.Disconnect)
}

func (s *Server) link(w http.ResponseWriter, r *http.Request, sess *session, op func(uuid.UUID, int, uuid.UUID, int) error) error {
	var c connectionView
	if err := decode(r, &c); err != nil {
		return err
	}
	if err := op(c.From, c.FromSlot, c.To, c.ToSlot); err != nil {
		return err
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
	return nil
}

type selectionRequest struct {
	Handles  []uuid.UUID `json:"handles"`
	Selected bool        `json:"selected"`
}

func (s *Server) handleSelection(w http.ResponseWriter, r *http.Request, sess *session) error {
	var req selectionRequest
	if err := decode(r, &req); err != nil {
		return err
	}
	op := sess.editor.Deselect
	if req.Selected {
		op = sess.editor.Select
	}
	for _, h := range req.Handles {
		if err := op(h); err != nil {
			return err
		}
	}
	writeJSON(w, http.StatusOK, newSessionView(sess))
	return nil
}

func (s *Server) handleDeleteSelected(w http.ResponseWriter, r *http.Request, sess *session) error {
	deleted := sess.editor.DeleteSelected(r.Context())
	if deleted == nil {
		deleted = []int{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"deleted": deleted, "session": newSessionView(sess)})
	return nil
}

// closeSessions drops every session.
func (s *Server) closeSessions() {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.sessions)
	clear(s.sessions)
	if n > 0 {
		s.log.Info("sessions discarded", "count", n)
	}
}

package httpadapter

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"scriptchat/internal/app/message"
	"scriptchat/internal/app/session"
	"scriptchat/internal/app/turn"
	"scriptchat/internal/domain"
)

type Server struct {
	mode     domain.AppMode
	sessions *session.Store
	log      *message.Log
	orch     *turn.Orchestrator
}

func NewServer(mode domain.AppMode, sessions *session.Store, log *message.Log, orch *turn.Orchestrator) http.Handler {
	s := &Server{
		mode:     mode,
		sessions: sessions,
		log:      log,
		orch:     orch,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", s.handleHealthz)
	mux.HandleFunc("/state", s.handleState)
	mux.HandleFunc("/chat", s.handleChat)

	// /sessions              → GET: list, POST: create
	// /sessions/{id}         → GET: session + messages
	// /sessions/{id}/select  → POST: make current
	mux.HandleFunc("/sessions", s.handleSessions)
	mux.HandleFunc("/sessions/", s.handleSessionWithID)

	return chainMiddlewares(mux, withLogging, withCORS, withRequestID)
}

// ─────────────────────────────────────────────
// DTOs (request/response)
// ─────────────────────────────────────────────

type sessionResponse struct {
	ID           string    `json:"id"`
	Title        string    `json:"title"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

type segmentResponse struct {
	Kind    string `json:"kind"`
	Lang    string `json:"lang,omitempty"`
	Content string `json:"content"`
}

type messageResponse struct {
	Sender    string            `json:"sender"`
	Text      string            `json:"text"`
	Segments  []segmentResponse `json:"segments"`
	CreatedAt time.Time         `json:"created_at"`
}

type sessionListResponse struct {
	Sessions  []sessionResponse `json:"sessions"`
	CurrentID string            `json:"current_id"`
}

type getSessionResponse struct {
	Session  sessionResponse   `json:"session"`
	Messages []messageResponse `json:"messages"`
}

type chatRequest struct {
	Text string `json:"text"`
}

type chatResponse struct {
	Accepted    bool             `json:"accepted"`
	UserMessage *messageResponse `json:"user_message,omitempty"`
	AIMessage   *messageResponse `json:"ai_message,omitempty"`
}

type stateResponse struct {
	Mode      string            `json:"mode"`
	CurrentID string            `json:"current_session_id"`
	Loading   bool              `json:"loading"`
	Messages  []messageResponse `json:"messages"`
}

// ─────────────────────────────────────────────
// Handlers
// ─────────────────────────────────────────────

func (s *Server) handleHealthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
		"mode":   string(s.mode),
	})
}

func (s *Server) handleState(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w)
		return
	}

	writeJSON(w, http.StatusOK, stateResponse{
		Mode:      string(s.mode),
		CurrentID: string(s.sessions.CurrentID()),
		Loading:   s.orch.Loading(),
		Messages:  toMessagesResponse(s.log.Messages()),
	})
}

func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w)
		return
	}

	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		badRequest(w, "invalid JSON body")
		return
	}

	out := s.orch.Send(r.Context(), req.Text)

	// a rejected send is the orchestrator's silent no-op; surfaced
	// here only as accepted:false so HTTP clients are not left guessing
	resp := chatResponse{Accepted: out.Accepted}
	if out.UserMessage != nil {
		m := toMessageResponse(*out.UserMessage)
		resp.UserMessage = &m
	}
	if out.AIMessage != nil {
		m := toMessageResponse(*out.AIMessage)
		resp.AIMessage = &m
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleSessions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.handleListSessions(w, r)
	case http.MethodPost:
		s.handleCreateSession(w, r)
	default:
		methodNotAllowed(w)
	}
}

func (s *Server) handleListSessions(w http.ResponseWriter, r *http.Request) {
	sessions := s.sessions.Sessions()
	resp := sessionListResponse{
		Sessions:  make([]sessionResponse, 0, len(sessions)),
		CurrentID: string(s.sessions.CurrentID()),
	}
	for _, sess := range sessions {
		resp.Sessions = append(resp.Sessions, toSessionResponse(sess))
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	id, err := s.sessions.Create(r.Context())
	if err != nil {
		internalError(w, err)
		return
	}

	sess, ok := s.sessions.Session(id)
	if !ok {
		internalError(w, nil)
		return
	}
	writeJSON(w, http.StatusCreated, toSessionResponse(sess))
}

func (s *Server) handleSessionWithID(w http.ResponseWriter, r *http.Request) {
	path := strings.TrimPrefix(r.URL.Path, "/sessions/")
	if path == "" {
		http.NotFound(w, r)
		return
	}

	parts := strings.Split(path, "/")
	id := domain.SessionID(parts[0])
	if id == "" {
		http.NotFound(w, r)
		return
	}

	if len(parts) == 1 {
		if r.Method != http.MethodGet {
			methodNotAllowed(w)
			return
		}
		s.handleGetSession(w, r, id)
		return
	}

	if len(parts) == 2 && parts[1] == "select" {
		if r.Method != http.MethodPost {
			methodNotAllowed(w)
			return
		}
		s.handleSelectSession(w, r, id)
		return
	}

	http.NotFound(w, r)
}

func (s *Server) handleGetSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	sess, ok := s.sessions.Session(id)
	if !ok {
		http.NotFound(w, r)
		return
	}

	writeJSON(w, http.StatusOK, getSessionResponse{
		Session:  toSessionResponse(sess),
		Messages: toMessagesResponse(sess.Messages),
	})
}

func (s *Server) handleSelectSession(w http.ResponseWriter, r *http.Request, id domain.SessionID) {
	if err := s.sessions.Select(r.Context(), id); err != nil {
		http.NotFound(w, r)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{
		"current_id": string(id),
	})
}

// ─────────────────────────────────────────────
// Mapping helpers
// ─────────────────────────────────────────────

func toSessionResponse(s *domain.Session) sessionResponse {
	return sessionResponse{
		ID:           string(s.ID),
		Title:        s.Title,
		MessageCount: len(s.Messages),
		CreatedAt:    s.CreatedAt,
		UpdatedAt:    s.UpdatedAt,
	}
}

func toMessageResponse(m domain.Message) messageResponse {
	segs := domain.SplitSegments(m.Text)
	out := messageResponse{
		Sender:    string(m.Sender),
		Text:      m.Text,
		Segments:  make([]segmentResponse, 0, len(segs)),
		CreatedAt: m.CreatedAt,
	}
	for _, seg := range segs {
		out.Segments = append(out.Segments, segmentResponse{
			Kind:    string(seg.Kind),
			Lang:    seg.Lang,
			Content: seg.Content,
		})
	}
	return out
}

func toMessagesResponse(msgs []domain.Message) []messageResponse {
	out := make([]messageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, toMessageResponse(m))
	}
	return out
}

// ─────────────────────────────────────────────
// HTTP Helpers
// ─────────────────────────────────────────────

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func badRequest(w http.ResponseWriter, msg string) {
	writeJSON(w, http.StatusBadRequest, map[string]string{
		"error": msg,
	})
}

func internalError(w http.ResponseWriter, err error) {
	writeJSON(w, http.StatusInternalServerError, map[string]string{
		"error": "internal server error",
	})
}

func methodNotAllowed(w http.ResponseWriter) {
	writeJSON(w, http.StatusMethodNotAllowed, map[string]string{
		"error": "method not allowed",
	})
}

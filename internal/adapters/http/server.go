// Package http exposes the bot over a small JSON API: POST /chat for turns,
// plus health and metrics endpoints.
package http

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/parleybot/parley"
	"github.com/parleybot/parley/internal/logging"
	"github.com/parleybot/parley/pkg/domain"
)

// Server handles the chat API.
type Server struct {
	bot    *parley.Bot
	logger *slog.Logger
}

// Option configures the server.
type Option func(*Server)

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) { s.logger = logger }
}

// NewHandler creates the HTTP handler for a bot.
func NewHandler(bot *parley.Bot, opts ...Option) http.Handler {
	s := &Server{
		bot:    bot,
		logger: logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())
	r.Post("/chat", s.chat)
	r.Get("/sessions", s.listSessions)
	r.Get("/sessions/{id}", s.getSession)
	r.Delete("/sessions/{id}", s.deleteSession)

	return r
}

// chatRequest is one turn. Either text or intent must be set; intent injects
// a resolved intent directly, with optional slot values by entity type.
type chatRequest struct {
	SessionID string            `json:"session_id,omitempty"`
	Text      string            `json:"text,omitempty"`
	Intent    string            `json:"intent,omitempty"`
	Slots     map[string]string `json:"slots,omitempty"`
}

// chatResponse mirrors the engine reply plus the session phase.
type chatResponse struct {
	SessionID        string           `json:"session_id"`
	TurnID           string           `json:"turn_id"`
	Messages         []domain.Message `json:"messages"`
	Text             string           `json:"text"`
	RecognizedIntent string           `json:"recognized_intent,omitempty"`
	CompletedIntent  string           `json:"completed_intent,omitempty"`
	State            string           `json:"state"`
	Ended            bool             `json:"ended"`
}

func (s *Server) chat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	var input domain.Input
	switch {
	case req.Intent != "":
		input = domain.IntentInput(req.Intent, req.Slots)
	case req.Text != "":
		input = domain.TextInput(req.Text)
	default:
		writeError(w, http.StatusBadRequest, "either text or intent is required")
		return
	}

	reply, err := s.bot.Converse(r.Context(), req.SessionID, input)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrSessionEnded):
			writeError(w, http.StatusConflict, "session already ended")
		case errors.Is(err, domain.ErrUnknownIntent):
			writeError(w, http.StatusNotFound, "unknown intent")
		default:
			s.logger.Error("turn failed", "session_id", req.SessionID, "err", err)
			writeError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	sess, err := s.bot.Session(r.Context(), reply.SessionID)
	state := string(domain.PhaseEnded)
	if err == nil {
		state = string(sess.Phase)
	}

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID:        reply.SessionID,
		TurnID:           reply.TurnID,
		Messages:         reply.Messages,
		Text:             reply.Text(),
		RecognizedIntent: reply.RecognizedIntent,
		CompletedIntent:  reply.CompletedIntent,
		State:            state,
		Ended:            reply.Ended,
	})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok", "bot": s.bot.Name()})
}

func (s *Server) listSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.bot.Sessions().List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to list sessions")
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

func (s *Server) getSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	sess, err := s.bot.Session(r.Context(), id)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load session")
		return
	}
	writeJSON(w, http.StatusOK, sess)
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := s.bot.Reset(r.Context(), id); err != nil {
		writeError(w, http.StatusInternalServerError, "failed to delete session")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

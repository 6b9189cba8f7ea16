package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/iav0207/fcards2-sub001/internal/api/shared"
	"github.com/iav0207/fcards2-sub001/internal/platform/logger"
	"github.com/iav0207/fcards2-sub001/internal/service/session"
)

// SessionHandler handles practice session requests.
type SessionHandler struct {
	sessions session.Service
	logger   *slog.Logger
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(sessions session.Service, logger *slog.Logger) *SessionHandler {
	if sessions == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("sessions cannot be nil for SessionHandler")
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &SessionHandler{
		sessions: sessions,
		logger:   logger.With(slog.String("component", "session_handler")),
	}
}

// CreateSession handles POST /sessions. An empty selection is reported as
// 422 with code no_cards_available.
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)

	var req CreateSessionRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	s, err := h.sessions.CreateSession(r.Context(), req.toOptions())
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Debug("session started", slog.String("session_id", s.ID), slog.Int("cards", len(s.CardIDs)))
	shared.RespondWithJSON(w, r, http.StatusCreated, sessionToResponse(s))
}

// GetSession handles GET /sessions/{id}.
func (h *SessionHandler) GetSession(w http.ResponseWriter, r *http.Request) {
	s, err := h.sessions.GetSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, sessionToResponse(s))
}

// GetCurrentCard handles GET /sessions/{id}/current. A complete session
// yields 204.
func (h *SessionHandler) GetCurrentCard(w http.ResponseWriter, r *http.Request) {
	current, err := h.sessions.GetCurrentCard(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	if current == nil {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, current)
}

// SubmitAnswer handles POST /sessions/{id}/answers.
func (h *SessionHandler) SubmitAnswer(w http.ResponseWriter, r *http.Request) {
	log := logger.FromContextOrDefault(r.Context(), h.logger)
	sessionID := chi.URLParam(r, "id")

	var req SubmitAnswerRequest
	if err := decodeAndValidate(r, &req); err != nil {
		respondError(w, r, err)
		return
	}

	result, err := h.sessions.SubmitAnswer(r.Context(), sessionID, req.CardID, req.Answer)
	if err != nil {
		respondError(w, r, err)
		return
	}

	log.Debug("answer submitted",
		slog.String("session_id", sessionID),
		slog.Bool("correct", result.Evaluation.Correct),
		slog.Bool("complete", result.Complete))
	shared.RespondWithJSON(w, r, http.StatusOK, result)
}

// AdvanceSession handles POST /sessions/{id}/advance.
func (h *SessionHandler) AdvanceSession(w http.ResponseWriter, r *http.Request) {
	current, err := h.sessions.AdvanceSession(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, AdvanceResponse{Current: current, Complete: current == nil})
}

// GetSessionStats handles GET /sessions/{id}/stats.
func (h *SessionHandler) GetSessionStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.sessions.GetSessionStats(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, r, err)
		return
	}
	shared.RespondWithJSON(w, r, http.StatusOK, stats)
}

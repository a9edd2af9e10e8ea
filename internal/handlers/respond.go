package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/jwebster45206/dm-engine/internal/logger"
	"github.com/jwebster45206/dm-engine/pkg/chat"
)

const (
	respondTimeout = 30 * time.Second
	optionsTimeout = 20 * time.Second
	resetTimeout   = 5 * time.Second

	maxBodyBytes = 1 << 20
)

// DMService is what the DM endpoints need from the dm package.
type DMService interface {
	Respond(ctx context.Context, req *chat.DMRequest) (*chat.DMResponse, error)
	Options(ctx context.Context, req *chat.OptionsRequest) (*chat.OptionsResponse, error)
	Reset(ctx context.Context, sessionID string) error
}

// RespondHandler answers POST /v1/dm/respond.
type RespondHandler struct {
	dm     DMService
	logger *slog.Logger
}

func NewRespondHandler(dm DMService, logger *slog.Logger) *RespondHandler {
	return &RespondHandler{dm: dm, logger: logger}
}

func (h *RespondHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log := logger.FromContext(r.Context(), h.logger)

	if r.Method != http.MethodPost {
		log.Warn("Method not allowed for respond endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.DMRequest
	if err := decodeJSON(w, r, &request); err != nil {
		log.Warn("Invalid respond request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'message' field.")
		return
	}
	if err := request.Validate(); err != nil {
		log.Warn("Invalid respond request", "error", err)
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), respondTimeout)
	defer cancel()

	response, err := h.dm.Respond(ctx, &request)
	if err != nil {
		status, msg := serviceFailure(err)
		logger.WithError(log, err).Error("Error generating DM response", "session_id", request.SessionID)
		writeError(w, log, status, msg)
		return
	}

	log.Info("DM response generated",
		"session_id", request.SessionID,
		"roll_requests", len(response.RollRequests),
		"resolved_roll", response.LastRoll != nil)

	writeJSON(w, log, http.StatusOK, response)
}

// OptionsHandler answers POST /v1/dm/options.
type OptionsHandler struct {
	dm     DMService
	logger *slog.Logger
}

func NewOptionsHandler(dm DMService, logger *slog.Logger) *OptionsHandler {
	return &OptionsHandler{dm: dm, logger: logger}
}

func (h *OptionsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log := logger.FromContext(r.Context(), h.logger)

	if r.Method != http.MethodPost {
		log.Warn("Method not allowed for options endpoint",
			"method", r.Method,
			"path", r.URL.Path)
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Only POST is supported.")
		return
	}

	var request chat.OptionsRequest
	if err := decodeJSON(w, r, &request); err != nil {
		log.Warn("Invalid options request body", "error", err)
		writeError(w, log, http.StatusBadRequest, "Invalid request body. Expected JSON with 'last_dm_text' field.")
		return
	}
	if err := request.Validate(); err != nil {
		log.Warn("Invalid options request", "error", err)
		writeError(w, log, http.StatusBadRequest, err.Error())
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), optionsTimeout)
	defer cancel()

	response, err := h.dm.Options(ctx, &request)
	if err != nil {
		status, msg := serviceFailure(err)
		logger.WithError(log, err).Error("Error generating options", "session_id", request.SessionID)
		writeError(w, log, status, msg)
		return
	}

	writeJSON(w, log, http.StatusOK, response)
}

// SessionHandler answers DELETE /v1/dm/sessions/{id}.
type SessionHandler struct {
	dm     DMService
	logger *slog.Logger
}

func NewSessionHandler(dm DMService, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{dm: dm, logger: logger}
}

func (h *SessionHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	log := logger.FromContext(r.Context(), h.logger)

	if r.Method != http.MethodDelete {
		writeError(w, log, http.StatusMethodNotAllowed, "Method not allowed. Only DELETE is supported.")
		return
	}

	id := strings.TrimSpace(strings.TrimPrefix(r.URL.Path, "/v1/dm/sessions/"))
	if id == "" || strings.Contains(id, "/") || id == r.URL.Path {
		writeError(w, log, http.StatusBadRequest, "Session id is required in URL path (e.g., /v1/dm/sessions/{id}).")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), resetTimeout)
	defer cancel()

	if err := h.dm.Reset(ctx, id); err != nil {
		logger.WithError(log, err).Error("Error deleting session", "session_id", id)
		writeError(w, log, http.StatusInternalServerError, "Failed to delete session.")
		return
	}

	log.Info("Session deleted", "session_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	return dec.Decode(v)
}

func serviceFailure(err error) (int, string) {
	if errors.Is(err, context.DeadlineExceeded) {
		return http.StatusGatewayTimeout, "The DM took too long to answer. Please try again."
	}
	if errors.Is(err, context.Canceled) {
		return http.StatusServiceUnavailable, "Request cancelled."
	}
	return http.StatusInternalServerError, "Failed to generate response. Please try again."
}

func writeError(w http.ResponseWriter, log *slog.Logger, status int, msg string) {
	writeJSON(w, log, status, chat.ErrorResponse{Error: msg})
}

func writeJSON(w http.ResponseWriter, log *slog.Logger, status int, v any) {
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error("Error encoding response", "error", err)
	}
}

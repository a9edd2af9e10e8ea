package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/pkg/storage"
)

const (
	componentHealthy   = "healthy"
	componentUnhealthy = "unhealthy"
	componentDisabled  = "disabled"
)

type HealthResponse struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Service    string            `json:"service"`
	Components map[string]string `json:"components"`
}

// HealthHandler reports component status. A failing session store makes the
// service unavailable; a failing LLM only degrades it, since heuristic
// replies still work. Either dependency may be nil.
type HealthHandler struct {
	store      storage.Storage
	llmService services.LLMService
	logger     *slog.Logger
}

func NewHealthHandler(store storage.Storage, llmService services.LLMService, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		store:      store,
		llmService: llmService,
		logger:     logger,
	}
}

func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")

	h.logger.Debug("Health check requested",
		"method", r.Method,
		"path", r.URL.Path,
		"remote_addr", r.RemoteAddr)

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	components := make(map[string]string)
	overallStatus := "healthy"
	statusCode := http.StatusOK

	if h.store == nil {
		components["storage"] = componentDisabled
	} else if err := h.store.Ping(ctx); err != nil {
		h.logger.Warn("Storage health check failed", "error", err)
		components["storage"] = componentUnhealthy
		overallStatus = "degraded"
		statusCode = http.StatusServiceUnavailable
	} else {
		components["storage"] = componentHealthy
	}

	if h.llmService == nil {
		components["llm"] = componentDisabled
	} else if _, err := h.llmService.ListModels(ctx); err != nil {
		h.logger.Warn("LLM health check failed", "error", err)
		components["llm"] = componentUnhealthy
		overallStatus = "degraded"
	} else {
		components["llm"] = componentHealthy
	}

	writeJSON(w, h.logger, statusCode, HealthResponse{
		Status:     overallStatus,
		Timestamp:  time.Now(),
		Service:    "dm-engine",
		Components: components,
	})
}

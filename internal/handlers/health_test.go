package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/jwebster45206/dm-engine/internal/services"
	"github.com/jwebster45206/dm-engine/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelError, // Reduce noise in tests
	}))

	tests := []struct {
		name            string
		setupStore      func() storage.Storage
		setupLLM        func() services.LLMService
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
		expectedLLM     string
	}{
		{
			name: "all healthy",
			setupStore: func() storage.Storage {
				mockStore := storage.NewMockStorage()
				mockStore.SetPingSuccess()
				return mockStore
			},
			setupLLM: func() services.LLMService {
				return services.NewMockLLMAPI()
			},
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedLLM:     "healthy",
		},
		{
			name: "unhealthy storage",
			setupStore: func() storage.Storage {
				mockStore := storage.NewMockStorage()
				mockStore.SetPingError(errors.New("connection failed"))
				return mockStore
			},
			setupLLM: func() services.LLMService {
				return services.NewMockLLMAPI()
			},
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
			expectedLLM:     "healthy",
		},
		{
			name: "unhealthy llm still serves",
			setupStore: func() storage.Storage {
				return storage.NewMockStorage()
			},
			setupLLM: func() services.LLMService {
				mockLLM := services.NewMockLLMAPI()
				mockLLM.SetListModelsError(errors.New("openrouter unreachable"))
				return mockLLM
			},
			expectedStatus:  http.StatusOK,
			expectedHealth:  "degraded",
			expectedStorage: "healthy",
			expectedLLM:     "unhealthy",
		},
		{
			name:            "heuristic only",
			setupStore:      func() storage.Storage { return nil },
			setupLLM:        func() services.LLMService { return nil },
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "disabled",
			expectedLLM:     "disabled",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			handler := NewHealthHandler(tt.setupStore(), tt.setupLLM(), logger)

			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			rr := httptest.NewRecorder()
			before := time.Now()
			handler.ServeHTTP(rr, req)

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Expected Content-Type application/json, got %s", ct)
			}

			var response HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&response); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}

			if response.Status != tt.expectedHealth {
				t.Errorf("Expected health status %s, got %s", tt.expectedHealth, response.Status)
			}
			if response.Service != "dm-engine" {
				t.Errorf("Expected service dm-engine, got %s", response.Service)
			}
			if response.Components["storage"] != tt.expectedStorage {
				t.Errorf("Expected storage status %s, got %s", tt.expectedStorage, response.Components["storage"])
			}
			if response.Components["llm"] != tt.expectedLLM {
				t.Errorf("Expected llm status %s, got %s", tt.expectedLLM, response.Components["llm"])
			}
			if response.Timestamp.Before(before.Add(-time.Second)) {
				t.Errorf("Timestamp %v is older than the request", response.Timestamp)
			}
		})
	}
}

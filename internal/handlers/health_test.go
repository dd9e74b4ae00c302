package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/jwebster45206/manga-engine/pkg/content"
	"github.com/jwebster45206/manga-engine/pkg/storage"
)

func TestHealthHandler_ServeHTTP(t *testing.T) {
	tests := []struct {
		name            string
		pingErr         error
		tables          *content.Tables
		expectedStatus  int
		expectedHealth  string
		expectedStorage string
		expectedContent string
	}{
		{
			name:            "all healthy",
			tables:          content.Defaults(),
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedContent: "loaded",
		},
		{
			name:            "storage down",
			pingErr:         errors.New("connection failed"),
			tables:          content.Defaults(),
			expectedStatus:  http.StatusServiceUnavailable,
			expectedHealth:  "degraded",
			expectedStorage: "unhealthy",
			expectedContent: "loaded",
		},
		{
			name:            "no content",
			expectedStatus:  http.StatusOK,
			expectedHealth:  "healthy",
			expectedStorage: "healthy",
			expectedContent: "defaults",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := storage.NewMockStorage()
			store.SetPingError(tt.pingErr)
			h := NewHealthHandler(store, tt.tables, testLogger())

			rr := httptest.NewRecorder()
			h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.expectedStatus {
				t.Errorf("Expected status %d, got %d", tt.expectedStatus, rr.Code)
			}
			var resp HealthResponse
			if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
				t.Fatalf("Failed to decode response: %v", err)
			}
			if resp.Status != tt.expectedHealth {
				t.Errorf("Expected status %q, got %q", tt.expectedHealth, resp.Status)
			}
			if resp.Components["storage"] != tt.expectedStorage {
				t.Errorf("Expected storage %q, got %q", tt.expectedStorage, resp.Components["storage"])
			}
			if resp.Components["content"] != tt.expectedContent {
				t.Errorf("Expected content %q, got %q", tt.expectedContent, resp.Components["content"])
			}
			if resp.Service != "manga-engine" {
				t.Errorf("Expected service manga-engine, got %s", resp.Service)
			}
		})
	}
}

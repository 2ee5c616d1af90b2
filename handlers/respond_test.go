package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/giygas/drugstore/apiclient"
	"github.com/giygas/drugstore/orchestrator"
	"github.com/giygas/drugstore/validation"
)

func TestRespondWithFailure(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"field errors", fmt.Errorf("%w: %w", orchestrator.ErrValidation, validation.Errors{"name": "too short"}), http.StatusUnprocessableEntity},
		{"bare validation", orchestrator.ErrValidation, http.StatusUnprocessableEntity},
		{"unknown drug", fmt.Errorf("%w: d9", orchestrator.ErrUnknownDrug), http.StatusNotFound},
		{"missing notification", orchestrator.ErrNotFound, http.StatusNotFound},
		{"upstream not found", fmt.Errorf("failed to delete drug: %w", &apiclient.Error{StatusCode: 404, Message: "gone"}), http.StatusNotFound},
		{"upstream unavailable", &apiclient.Error{StatusCode: 503, Message: "down"}, http.StatusBadGateway},
		{"anything else", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rr := httptest.NewRecorder()
			respondWithFailure(rr, tt.err)
			if rr.Code != tt.expected {
				t.Errorf("Expected status %d, got %d", tt.expected, rr.Code)
			}

			var body ErrorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode error body: %v", err)
			}
			if body.Code != tt.expected || body.Error != http.StatusText(tt.expected) {
				t.Errorf("Unexpected error body: %+v", body)
			}
		})
	}
}

func TestRespondWithFailureFields(t *testing.T) {
	rr := httptest.NewRecorder()
	respondWithFailure(rr, fmt.Errorf("%w: %w", orchestrator.ErrValidation, validation.Errors{"cost": "cost must be a number"}))

	var body ErrorResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode error body: %v", err)
	}
	if body.Fields["cost"] != "cost must be a number" {
		t.Errorf("Expected cost field error, got %v", body.Fields)
	}
}

type staticChecker struct {
	status string
	code   int
}

func (c staticChecker) HealthCheck() (string, map[string]any, int) {
	return c.status, map[string]any{"drugs": "succeeded"}, c.code
}

func TestHealthCheck(t *testing.T) {
	tests := []struct {
		status string
		code   int
	}{
		{"healthy", http.StatusOK},
		{"degraded", http.StatusOK},
		{"unhealthy", http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.status, func(t *testing.T) {
			rr := httptest.NewRecorder()
			HealthCheck(staticChecker{tt.status, tt.code})(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

			if rr.Code != tt.code {
				t.Errorf("Expected status %d, got %d", tt.code, rr.Code)
			}
			var body HealthResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
				t.Fatalf("Failed to decode health body: %v", err)
			}
			if body.Status != tt.status {
				t.Errorf("Expected status %q, got %q", tt.status, body.Status)
			}
			if body.Data["drugs"] != "succeeded" {
				t.Errorf("Expected drugs detail, got %v", body.Data)
			}
		})
	}
}

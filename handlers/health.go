package handlers

import (
	"net/http"

	"github.com/giygas/drugstore/interfaces"
)

// HealthResponse is the /health body.
type HealthResponse struct {
	Status string         `json:"status"`
	Data   map[string]any `json:"data"`
}

// HealthCheck reports the checker's verdict with its HTTP status.
func HealthCheck(checker interfaces.HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		status, details, code := checker.HealthCheck()
		RespondWithJSON(w, code, HealthResponse{Status: status, Data: details})
	}
}

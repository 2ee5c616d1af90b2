// Package handlers exposes the catalog controller as a JSON HTTP API.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/giygas/drugstore/apiclient"
	"github.com/giygas/drugstore/logging"
	"github.com/giygas/drugstore/orchestrator"
	"github.com/giygas/drugstore/validation"
)

// RespondWithJSON writes payload as JSON with the given status.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		logging.Error("Failed to marshal JSON response", "error", err)
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(code)
	if _, err := w.Write(data); err != nil {
		logging.Debug("Failed to write response", "error", err)
	}
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Code    int               `json:"code"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// RespondWithError writes a JSON error response
func RespondWithError(w http.ResponseWriter, code int, message string) {
	RespondWithJSON(w, code, ErrorResponse{
		Error:   http.StatusText(code),
		Message: message,
		Code:    code,
	})
}

// respondWithFailure maps controller and upstream errors to HTTP answers.
func respondWithFailure(w http.ResponseWriter, err error) {
	var (
		fields validation.Errors
		apiErr *apiclient.Error
	)
	switch {
	case errors.As(err, &fields):
		code := http.StatusUnprocessableEntity
		RespondWithJSON(w, code, ErrorResponse{
			Error:   http.StatusText(code),
			Message: "Validation failed",
			Code:    code,
			Fields:  fields,
		})
	case errors.Is(err, orchestrator.ErrValidation):
		RespondWithError(w, http.StatusUnprocessableEntity, err.Error())
	case errors.Is(err, orchestrator.ErrUnknownDrug), errors.Is(err, orchestrator.ErrNotFound):
		RespondWithError(w, http.StatusNotFound, err.Error())
	case errors.As(err, &apiErr):
		// Client errors pass through, anything else is a bad gateway
		code := http.StatusBadGateway
		if apiErr.StatusCode >= 400 && apiErr.StatusCode < 500 {
			code = apiErr.StatusCode
		}
		RespondWithError(w, code, apiErr.Message)
	case errors.Is(err, context.DeadlineExceeded):
		RespondWithError(w, http.StatusGatewayTimeout, "Upstream timed out")
	default:
		logging.Error("Request failed", "error", err)
		RespondWithError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// decodeJSON reads a JSON body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("request body is empty")
		}
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// wantsWait reports whether the caller asked to block until fetches resolve.
func wantsWait(r *http.Request) bool {
	wait, _ := strconv.ParseBool(r.URL.Query().Get("wait"))
	return wait
}

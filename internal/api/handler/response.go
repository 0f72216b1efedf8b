package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/iconidentify/streamrelay/internal/domain"
)

// msgInvalidParams is the message used by endpoints that do not report
// which parameter failed validation.
const msgInvalidParams = "Invalid parameter values"

// ErrorResponse is the JSON body returned for classified failures.
type ErrorResponse struct {
	Error      string `json:"error"`
	StatusCode *int   `json:"status_code"`
	RetryAfter *int   `json:"retry_after,omitempty"`
}

// validationError is a request that failed parameter checks.
type validationError struct {
	message string
}

func (e *validationError) Error() string {
	return e.message
}

func invalid(message string) error {
	return &validationError{message: message}
}

// writeJSON writes v as JSON with the given status.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError writes a bare {"error": message} body.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// respond maps err onto the HTTP error policy: validation failures are 400,
// classified failures use their kind's status, anything else is a generic 500.
func respond(w http.ResponseWriter, logger *slog.Logger, view string, err error) {
	var ve *validationError
	if errors.As(err, &ve) {
		logger.Warn("validation error", "view", view, "error", ve.message)
		writeError(w, http.StatusBadRequest, ve.message)
		return
	}

	if ce, ok := domain.AsClassified(err); ok {
		status := ce.Kind.HTTPStatus()
		logger.Error("upstream error",
			"view", view,
			"kind", ce.Kind.String(),
			"status", status,
			"error", ce.Message,
		)
		body := ErrorResponse{Error: ce.Message, StatusCode: ce.StatusCode}
		if ce.Kind == domain.KindRateLimited && ce.RetryAfter != nil {
			body.RetryAfter = ce.RetryAfter
			w.Header().Set("Retry-After", strconv.Itoa(*ce.RetryAfter))
		}
		writeJSON(w, status, body)
		return
	}

	logger.Error("unexpected error", "view", view, "error", err)
	writeError(w, http.StatusInternalServerError, "Internal server error")
}

// generic replaces validation messages with msgInvalidParams.
func generic(err error) error {
	var ve *validationError
	if errors.As(err, &ve) {
		return invalid(msgInvalidParams)
	}
	return err
}

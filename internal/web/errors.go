package web

import (
	"errors"
	"net/http"

	"github.com/harborworks/fleetimport/internal/core"
	"github.com/harborworks/fleetimport/internal/logging"
)

// errorResponse is the JSON body returned for any failed request.
type errorResponse struct {
	Error  string `json:"error"`
	Action string `json:"action,omitempty"`
	Code   string `json:"code,omitempty"`
}

// respondError maps a core error to an HTTP status and a user-facing
// message, logging the underlying error with the request ID.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	if status >= 500 {
		logger.Error("request failed", "error", err, "status", status)
	} else {
		logger.Info("request rejected", "error", err, "status", status)
	}

	respondJSON(w, status, errorResponse{
		Error:  msg.Message,
		Action: msg.Action,
		Code:   msg.Code,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, core.ErrUnknownEntityType),
		errors.Is(err, core.ErrUnsupportedFormat),
		errors.Is(err, core.ErrEmptyFile),
		errors.Is(err, core.ErrDuplicateHeader),
		errors.Is(err, core.ErrFileTooLarge),
		errors.Is(err, core.ErrInvalidImportMode),
		errors.Is(err, core.ErrInvalidFileKind),
		errors.Is(err, core.ErrTokenNotFound),
		errors.Is(err, core.ErrValidationBlocked):
		return http.StatusBadRequest
	case errors.Is(err, core.ErrRecordNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondBadRequest reports a request decoding problem that never
// reached the core layer.
func respondBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	logging.FromContext(r.Context()).Info("request rejected", "reason", message)
	respondJSON(w, http.StatusBadRequest, errorResponse{
		Error: message,
		Code:  "REQ001",
	})
}

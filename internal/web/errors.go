package web

// errors.go provides unified error response handling for the web layer.
//
// Every error leaves the server as JSON:
//
//	{"error": "<user message>", "code": "FILE004", "action": "<what to do>"}
//
// The technical error is logged with the request id for correlation and is
// never sent to the client.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/alumnicsv/internal/core"
	"github.com/JonMunkholm/alumnicsv/internal/logging"
)

// ErrorResponse is the JSON body of every error response.
type ErrorResponse struct {
	Error  string `json:"error"`
	Code   string `json:"code"`
	Action string `json:"action,omitempty"`
}

// respondError logs err and writes its user-facing form with status.
func respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	attrs := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	// Cataloged errors are problems with the upload or the load, not the server.
	if status >= http.StatusInternalServerError && !core.IsUserFacing(err) {
		logger.Error("request error", attrs...)
	} else {
		logger.Warn("request error", attrs...)
	}

	writeJSON(w, status, ErrorResponse{
		Error:  msg.Message,
		Code:   msg.Code,
		Action: msg.Action,
	})
}

// statusForConvertError picks the HTTP status for a failed conversion.
// Every pipeline failure is a 500; only admission and size problems differ.
func statusForConvertError(err error) int {
	switch {
	case errors.Is(err, core.ErrNoFile):
		return http.StatusBadRequest
	case isBodyTooLarge(err):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyRuns),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// isBodyTooLarge reports whether err came from http.MaxBytesReader.
func isBodyTooLarge(err error) bool {
	if errors.Is(err, core.ErrFileTooLarge) {
		return true
	}
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return true
	}
	return strings.Contains(err.Error(), "request body too large")
}

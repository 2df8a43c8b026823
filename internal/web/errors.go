package web

// errors.go provides unified error response handling for the web layer.
//
// Technical errors are logged server-side with the request ID; clients get
// the user-facing message and code from core.MapError.

import (
	"errors"
	"net/http"

	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/logging"
	"github.com/JonMunkholm/userdb/internal/query"
)

// ErrorResponse represents the JSON structure for API error responses.
// Includes both machine-readable (Code) and human-readable (Message, Action) fields.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor maps query errors to HTTP status codes.
func statusFor(err error) int {
	switch {
	case errors.Is(err, query.ErrInvalidLogin):
		return http.StatusUnauthorized
	case errors.Is(err, query.ErrAccessDenied):
		return http.StatusForbidden
	case errors.Is(err, query.ErrInvalidCommand):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes its user-facing message.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, statusCode int) {
	userMsg := core.MapError(err)

	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", statusCode,
		"error", err.Error(),
		"code", userMsg.Code,
	}
	if statusCode >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request rejected", args...)
	}

	writeJSON(w, r, statusCode, ErrorResponse{
		Error:   userMsg.Message,
		Message: userMsg.Message,
		Action:  userMsg.Action,
		Code:    userMsg.Code,
	})
}

// writeError writes an error that did not come from a Go error value.
func writeError(w http.ResponseWriter, r *http.Request, status int, code, message, action string) {
	logging.FromContext(r.Context()).Warn("request rejected",
		"path", r.URL.Path,
		"status", status,
		"code", code,
	)
	writeJSON(w, r, status, ErrorResponse{
		Error:   message,
		Message: message,
		Action:  action,
		Code:    code,
	})
}

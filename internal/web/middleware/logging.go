// Package middleware provides HTTP middleware for the query server.
package middleware

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/JonMunkholm/userdb/internal/logging"
	"github.com/JonMunkholm/userdb/internal/query"
)

const requestInfoKey contextKey = "request_info"

// requestInfo is filled in by inner handlers so the access log can name the
// caller once the request has finished.
type requestInfo struct {
	userID int64
	role   string
}

// noteSession records the authenticated caller for the access log.
func noteSession(ctx context.Context, sess *query.Session) {
	if info, ok := ctx.Value(requestInfoKey).(*requestInfo); ok {
		info.userID = sess.UserID
		info.role = sess.Role
	}
}

// Logger writes one structured log line per request.
//
// Fields: method, path, status, duration_ms, ip, plus user_id and role
// when the request authenticated. Server errors log at Error, client
// errors at Warn, everything else at Info. The request id from chi's
// RequestID middleware is attached by logging.FromContext.
func Logger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		info := &requestInfo{}
		ctx := context.WithValue(r.Context(), requestInfoKey, info)

		ww := &responseWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(ww, r.WithContext(ctx))

		args := []any{
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.status,
			"duration_ms", time.Since(start).Milliseconds(),
			"ip", r.RemoteAddr,
		}
		if info.role != "" {
			args = append(args, "user_id", info.userID, "role", info.role)
		}

		level := slog.LevelInfo
		switch {
		case ww.status >= http.StatusInternalServerError:
			level = slog.LevelError
		case ww.status >= http.StatusBadRequest:
			level = slog.LevelWarn
		}
		logging.FromContext(ctx).Log(ctx, level, "request", args...)
	})
}

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *responseWriter) WriteHeader(status int) {
	if w.wroteHeader {
		return
	}
	w.status = status
	w.wroteHeader = true
	w.ResponseWriter.WriteHeader(status)
}

func (w *responseWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.WriteHeader(http.StatusOK)
	}
	return w.ResponseWriter.Write(b)
}

// Unwrap exposes the underlying ResponseWriter to http.ResponseController.
func (w *responseWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

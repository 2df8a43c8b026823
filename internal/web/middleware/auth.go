package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/query"
)

type contextKey string

const sessionKey contextKey = "session"

// Authenticator resolves a login and password to a session.
type Authenticator interface {
	Login(ctx context.Context, login, password string) (*query.Session, error)
}

// ContextWithSession returns ctx carrying sess.
func ContextWithSession(ctx context.Context, sess *query.Session) context.Context {
	return context.WithValue(ctx, sessionKey, sess)
}

// SessionFrom returns the session stored by BasicAuth.
func SessionFrom(ctx context.Context) (*query.Session, bool) {
	sess, ok := ctx.Value(sessionKey).(*query.Session)
	return sess, ok && sess != nil
}

// BasicAuth returns middleware that authenticates HTTP Basic credentials.
// The username is an email address or telephone number.
// Missing or wrong credentials get 401 with a WWW-Authenticate challenge.
func BasicAuth(auth Authenticator, realm string) func(http.Handler) http.Handler {
	challenge := `Basic realm="` + realm + `", charset="UTF-8"`

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			login, password, ok := r.BasicAuth()
			if !ok || login == "" {
				w.Header().Set("WWW-Authenticate", challenge)
				writeAuthError(w, http.StatusUnauthorized, query.ErrInvalidLogin)
				return
			}

			sess, err := auth.Login(r.Context(), login, password)
			switch {
			case errors.Is(err, query.ErrInvalidLogin):
				slog.Warn("auth: invalid login",
					"path", r.URL.Path,
					"method", r.Method,
					"remote_addr", r.RemoteAddr,
				)
				w.Header().Set("WWW-Authenticate", challenge)
				writeAuthError(w, http.StatusUnauthorized, err)
				return
			case err != nil:
				slog.Error("auth: login failed",
					"path", r.URL.Path,
					"error", err,
				)
				writeAuthError(w, http.StatusInternalServerError, err)
				return
			}

			noteSession(r.Context(), sess)
			next.ServeHTTP(w, r.WithContext(ContextWithSession(r.Context(), sess)))
		})
	}
}

// writeAuthError writes the user-facing message for err as JSON.
func writeAuthError(w http.ResponseWriter, status int, err error) {
	msg := core.MapError(err)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(map[string]string{
		"error":   msg.Message,
		"message": msg.Message,
		"action":  msg.Action,
		"code":    msg.Code,
	})
}

package web

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/JonMunkholm/userdb/internal/query"
	"github.com/JonMunkholm/userdb/internal/web/middleware"
)

// commandInfo describes a command in the listing.
type commandInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	AdminOnly   bool   `json:"admin_only"`
	Allowed     bool   `json:"allowed"`
}

// commandResponse carries a command result in both structured and
// terminal form.
type commandResponse struct {
	Command string       `json:"command"`
	Result  query.Result `json:"result"`
	Lines   []string     `json:"lines"`
}

type healthResponse struct {
	Status   string        `json:"status"`
	Commands LimiterStatus `json:"commands"`
}

// handleHealth reports whether the store is reachable.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := s.store.Ping(ctx); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	writeJSON(w, r, http.StatusOK, healthResponse{Status: "ok", Commands: s.slots.Status()})
}

// handleListCommands lists every command and whether the caller may run it.
func (s *Server) handleListCommands(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())

	cmds := query.Commands()
	out := make([]commandInfo, len(cmds))
	for i, c := range cmds {
		out[i] = commandInfo{
			Name:        c.Name,
			Description: c.Description,
			AdminOnly:   c.AdminOnly,
			Allowed:     !c.AdminOnly || sess.IsAdmin(),
		}
	}
	writeJSON(w, r, http.StatusOK, out)
}

// handleCommand runs a single command for the authenticated caller.
func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	sess, _ := middleware.SessionFrom(r.Context())
	name := chi.URLParam(r, "command")

	if err := s.slots.Acquire(r.Context()); err != nil {
		s.respondError(w, r, err, http.StatusServiceUnavailable)
		return
	}
	defer s.slots.Release()

	res, err := s.service.Execute(r.Context(), sess, name)
	if err != nil {
		s.respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, r, http.StatusOK, commandResponse{
		Command: name,
		Result:  res,
		Lines:   res.Lines(),
	})
}

// Package query authenticates users against the store and runs the
// read-only commands they are allowed to see.
//
// A caller logs in with an email or telephone number and a password, then
// executes commands by name. Admin-only commands return ErrAccessDenied for
// other roles without touching the store.
package query

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/userdb/internal/core"
	"github.com/JonMunkholm/userdb/internal/logging"
	"github.com/JonMunkholm/userdb/internal/store"
)

var (
	// ErrInvalidLogin is returned for an unknown login or a wrong password.
	// It deliberately does not say which.
	ErrInvalidLogin = errors.New("invalid login")

	// ErrAccessDenied is returned when a non-admin runs an admin command.
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidCommand is returned for an unrecognized command name.
	ErrInvalidCommand = errors.New("invalid command")
)

// Store is the subset of the store the query commands read from.
type Store interface {
	UserByEmail(ctx context.Context, email string) (store.UserRow, error)
	UserByPhone(ctx context.Context, phone string) (store.UserRow, error)
	CountUsers(ctx context.Context) (int, error)
	OldestUser(ctx context.Context) (store.UserRow, error)
	ChildAgeGroups(ctx context.Context) ([]store.AgeGroup, error)
	ChildrenOf(ctx context.Context, userID int64) ([]store.ChildRow, error)
	SimilarChildren(ctx context.Context, userID int64) ([]store.SimilarChild, error)
}

// Session is an authenticated user.
type Session struct {
	UserID int64
	Name   string
	Email  string
	Phone  string
	Role   string
}

// IsAdmin reports whether the session may run admin-only commands.
func (s *Session) IsAdmin() bool {
	return s.Role == core.RoleAdmin
}

// Service runs commands against a Store.
type Service struct {
	store Store
}

// NewService creates a Service reading from st.
func NewService(st Store) *Service {
	return &Service{store: st}
}

// Login authenticates by email when login contains "@", otherwise by
// telephone number, and compares the stored password.
func (s *Service) Login(ctx context.Context, login, password string) (*Session, error) {
	var (
		u   store.UserRow
		err error
	)
	if strings.Contains(login, "@") {
		u, err = s.store.UserByEmail(ctx, login)
	} else {
		u, err = s.store.UserByPhone(ctx, login)
	}
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrInvalidLogin
	}
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if subtle.ConstantTimeCompare([]byte(u.Password), []byte(password)) != 1 {
		return nil, ErrInvalidLogin
	}

	return &Session{
		UserID: u.ID,
		Name:   u.Firstname,
		Email:  u.Email,
		Phone:  u.Phone,
		Role:   u.Role,
	}, nil
}

// Execute runs the named command for sess.
func (s *Service) Execute(ctx context.Context, sess *Session, name string) (Result, error) {
	cmd, ok := Lookup(name)
	if !ok {
		return nil, ErrInvalidCommand
	}
	if cmd.AdminOnly && !sess.IsAdmin() {
		logging.FromContext(ctx).Warn("command denied",
			"command", name,
			"user_id", sess.UserID,
			"role", sess.Role,
		)
		return nil, ErrAccessDenied
	}

	res, err := cmd.run(ctx, s, sess)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return res, nil
}

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/JonMunkholm/userdb/internal/config"
	"github.com/JonMunkholm/userdb/internal/query"
	"github.com/JonMunkholm/userdb/internal/store"
)

type stubStore struct {
	pingErr error
}

var stubUsers = []store.UserRow{
	{ID: 1, Firstname: "Ala", Phone: "600700800", Email: "ala@x.pl", Password: "adminpw", Role: "admin", CreatedAt: "2022-01-01 09:00:00"},
	{ID: 2, Firstname: "Bob", Phone: "500100200", Email: "bob@x.pl", Password: "userpw", Role: "user", CreatedAt: "2023-01-01 09:00:00"},
}

func (s stubStore) Ping(context.Context) error { return s.pingErr }

func (stubStore) UserByEmail(_ context.Context, email string) (store.UserRow, error) {
	for _, u := range stubUsers {
		if u.Email == email {
			return u, nil
		}
	}
	return store.UserRow{}, store.ErrNotFound
}

func (stubStore) UserByPhone(_ context.Context, phone string) (store.UserRow, error) {
	for _, u := range stubUsers {
		if u.Phone == phone {
			return u, nil
		}
	}
	return store.UserRow{}, store.ErrNotFound
}

func (stubStore) CountUsers(context.Context) (int, error) { return len(stubUsers), nil }

func (stubStore) OldestUser(context.Context) (store.UserRow, error) { return stubUsers[0], nil }

func (stubStore) ChildAgeGroups(context.Context) ([]store.AgeGroup, error) {
	return []store.AgeGroup{{Age: 3, Count: 2}}, nil
}

func (stubStore) ChildrenOf(context.Context, int64) ([]store.ChildRow, error) {
	return []store.ChildRow{{Name: "Adam", Age: 3}}, nil
}

func (stubStore) SimilarChildren(context.Context, int64) ([]store.SimilarChild, error) {
	return []store.SimilarChild{}, nil
}

func newTestServer(t *testing.T, st stubStore, rate int) *Server {
	t.Helper()
	s := NewServer(query.NewService(st), st, config.ServerConfig{
		RequestTimeout:     5 * time.Second,
		RateLimitPerMinute: rate,
		MaxConcurrent:      2,
		MaxWait:            20 * time.Millisecond,
	})
	t.Cleanup(func() { s.Shutdown(context.Background()) })
	return s
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name       string
		pingErr    error
		wantStatus int
	}{
		{name: "ok", wantStatus: http.StatusOK},
		{name: "store down", pingErr: errors.New("dial tcp: connection refused"), wantStatus: http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, stubStore{pingErr: tt.pingErr}, 0)

			req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
			rr := httptest.NewRecorder()
			s.Router().ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d", rr.Code, tt.wantStatus)
			}
			if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
				t.Errorf("Content-Type = %q, want application/json", ct)
			}
		})
	}
}

func TestHealthReportsCommandSlots(t *testing.T) {
	s := newTestServer(t, stubStore{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	var got healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	want := healthResponse{Status: "ok", Commands: LimiterStatus{Available: 2, MaxConcurrent: 2}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("health mismatch (-want +got):\n%s", diff)
	}
}

func TestCommandBusy(t *testing.T) {
	s := newTestServer(t, stubStore{}, 0)
	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if err := s.slots.Acquire(ctx); err != nil {
			t.Fatal(err)
		}
	}
	defer func() {
		s.slots.Release()
		s.slots.Release()
	}()

	req := httptest.NewRequest(http.MethodGet, "/api/commands/"+query.CmdPrintChildren, nil)
	req.SetBasicAuth("bob@x.pl", "userpw")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rr.Code)
	}
	var body ErrorResponse
	if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Code != "SRV001" {
		t.Errorf("code = %q, want SRV001", body.Code)
	}
}

func TestCommandHandler(t *testing.T) {
	tests := []struct {
		name       string
		login      string
		password   string
		noAuth     bool
		command    string
		wantStatus int
		wantCode   string
		wantLines  []string
	}{
		{
			name:       "admin counts accounts",
			login:      "ala@x.pl",
			password:   "adminpw",
			command:    query.CmdPrintAllAccounts,
			wantStatus: http.StatusOK,
			wantLines:  []string{"2"},
		},
		{
			name:       "user by phone lists children",
			login:      "500100200",
			password:   "userpw",
			command:    query.CmdPrintChildren,
			wantStatus: http.StatusOK,
			wantLines:  []string{"name: Adam, age: 3"},
		},
		{
			name:       "user denied admin command",
			login:      "bob@x.pl",
			password:   "userpw",
			command:    query.CmdGroupByAge,
			wantStatus: http.StatusForbidden,
			wantCode:   "AUTH002",
		},
		{
			name:       "unknown command",
			login:      "ala@x.pl",
			password:   "adminpw",
			command:    "drop-tables",
			wantStatus: http.StatusNotFound,
			wantCode:   "AUTH003",
		},
		{
			name:       "wrong password",
			login:      "ala@x.pl",
			password:   "nope",
			command:    query.CmdPrintAllAccounts,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH001",
		},
		{
			name:       "no credentials",
			noAuth:     true,
			command:    query.CmdPrintAllAccounts,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "AUTH001",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, stubStore{}, 0)

			req := httptest.NewRequest(http.MethodGet, "/api/commands/"+tt.command, nil)
			if !tt.noAuth {
				req.SetBasicAuth(tt.login, tt.password)
			}
			rr := httptest.NewRecorder()
			s.Router().ServeHTTP(rr, req)

			if rr.Code != tt.wantStatus {
				t.Fatalf("status = %d, want %d (body %s)", rr.Code, tt.wantStatus, rr.Body.String())
			}

			if tt.wantCode != "" {
				var body ErrorResponse
				if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
					t.Fatalf("decode error body: %v", err)
				}
				if body.Code != tt.wantCode {
					t.Errorf("code = %q, want %q", body.Code, tt.wantCode)
				}
				if tt.wantStatus == http.StatusUnauthorized && rr.Header().Get("WWW-Authenticate") == "" {
					t.Error("missing WWW-Authenticate challenge")
				}
				return
			}

			var body struct {
				Command string          `json:"command"`
				Result  json.RawMessage `json:"result"`
				Lines   []string        `json:"lines"`
			}
			if err := json.NewDecoder(rr.Body).Decode(&body); err != nil {
				t.Fatalf("decode body: %v", err)
			}
			if body.Command != tt.command {
				t.Errorf("command = %q, want %q", body.Command, tt.command)
			}
			if diff := cmp.Diff(tt.wantLines, body.Lines); diff != "" {
				t.Errorf("lines mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestListCommands(t *testing.T) {
	s := newTestServer(t, stubStore{}, 0)

	req := httptest.NewRequest(http.MethodGet, "/api/commands", nil)
	req.SetBasicAuth("bob@x.pl", "userpw")
	rr := httptest.NewRecorder()
	s.Router().ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rr.Code)
	}

	var got []commandInfo
	if err := json.NewDecoder(rr.Body).Decode(&got); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(got) != len(query.Commands()) {
		t.Fatalf("listed %d commands, want %d", len(got), len(query.Commands()))
	}
	for _, c := range got {
		if c.Allowed == c.AdminOnly {
			t.Errorf("%s: allowed = %v for a user, admin_only = %v", c.Name, c.Allowed, c.AdminOnly)
		}
	}
}

func TestRateLimit(t *testing.T) {
	s := newTestServer(t, stubStore{}, 2)

	var codes []int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rr := httptest.NewRecorder()
		s.Router().ServeHTTP(rr, req)
		codes = append(codes, rr.Code)
	}

	want := []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}
	if diff := cmp.Diff(want, codes); diff != "" {
		t.Errorf("status codes mismatch (-want +got):\n%s", diff)
	}
}

func TestRateLimiterAllow(t *testing.T) {
	rl := newRateLimiter(1, 50*time.Millisecond)
	defer rl.stop()

	if !rl.allow("a") {
		t.Fatal("first request denied")
	}
	if rl.allow("a") {
		t.Fatal("second request within window allowed")
	}
	if !rl.allow("b") {
		t.Fatal("other client denied")
	}

	time.Sleep(60 * time.Millisecond)
	if !rl.allow("a") {
		t.Error("request after window denied")
	}
}

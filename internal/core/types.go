package core

import (
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgtype"
)

// Role values recognized by the query service.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// Record is a user row as produced by a source adapter, before any
// normalization. Absent scalar fields are carried as pgtype.Text{Valid: false}
// rather than empty strings so that "missing" and "blank" stay distinguishable.
type Record struct {
	Firstname pgtype.Text
	Email     pgtype.Text
	Password  pgtype.Text
	Role      pgtype.Text
	CreatedAt pgtype.Text

	// Phone holds the raw value: nil, string, float64, json.Number or an
	// integer type. After NormalizePhones it is always a string.
	Phone any

	// Children holds the raw value: nil, string, or []any whose elements are
	// pairs ([]any of name, age) or mappings (map[string]any).
	Children any

	Source   string // Source label, e.g. "users_1.csv"
	Position int    // 1-based position within the source
}

// Ref returns a short identifier for error messages and logs.
func (r Record) Ref() string {
	email := "<null>"
	if r.Email.Valid {
		email = r.Email.String
	}
	return fmt.Sprintf("%s#%d (email %s)", r.Source, r.Position, email)
}

// PhoneString returns the phone as a string once normalized.
// Returns "" for records that have not been through NormalizePhones.
func (r Record) PhoneString() string {
	s, _ := r.Phone.(string)
	return s
}

// Child is a canonical child sub-record.
type Child struct {
	Name string `json:"name"`
	Age  int    `json:"age"`
}

// User is a canonical record: every pipeline stage has been applied and it
// is ready for loading.
type User struct {
	Firstname string
	Phone     string
	Email     string
	Password  string
	Role      string
	CreatedAt string
	Children  []Child
}

// IsAdmin reports whether the user carries the admin role.
func (u User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// Phase names the pipeline stage that dropped or rejected a record.
type Phase string

const (
	PhaseEmail       Phase = "validating_email"
	PhasePresence    Phase = "filtering_phone"
	PhaseDeduplicate Phase = "deduplicating"
	PhaseChildren    Phase = "normalizing_children"
)

// SourceCount records how many records a single source contributed.
type SourceCount struct {
	Source string
	Count  int
}

// Stats collects the per-stage counts of a pipeline run.
type Stats struct {
	Sources        []SourceCount
	Merged         int
	ValidEmails    int
	InvalidEmails  int
	WithPhone      int
	WithoutPhone   int
	Deduplicated   int
	DuplicatesDrop int
}

// DroppedRecord describes a record removed by a filtering stage.
type DroppedRecord struct {
	Ref    string
	Phase  Phase
	Reason string
}

// Result contains the outcome of a pipeline run.
type Result struct {
	Users    []User
	Stats    Stats
	Dropped  []DroppedRecord
	Duration time.Duration
}

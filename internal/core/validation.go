package core

// validation.go provides record-level validation.
//
// Validation happens at two levels:
//  1. Header validation: Ensures the delimited sources carry every expected column
//  2. Record validation: Checks the email field against the accepted syntax
//
// Email validation is a filter, not a repair: invalid records are dropped and
// counted, never modified.

import (
	"fmt"
	"regexp"
	"strings"
)

// emailRegex accepts local@domain.tld where neither side contains "@" and the
// final label is 1 to 4 ASCII alphanumerics.
var emailRegex = regexp.MustCompile(`^[^@]+@[^@]+\.[A-Za-z0-9]{1,4}$`)

// HeaderIndex maps lowercased column names to their position in a row.
type HeaderIndex map[string]int

// ValidationError represents a single validation error for a field.
type ValidationError struct {
	Field   string // Field/column name
	Value   string // The invalid value
	Message string // Human-readable error message
}

func (e ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Message)
	}
	return e.Message
}

// IsValidEmail reports whether s is an acceptable email address.
func IsValidEmail(s string) bool {
	return emailRegex.MatchString(s)
}

// ValidateEmail returns a ValidationError for a null or malformed email.
func ValidateEmail(r Record) error {
	if !r.Email.Valid {
		return ValidationError{Field: "email", Message: "missing email"}
	}
	if !IsValidEmail(r.Email.String) {
		return ValidationError{Field: "email", Value: r.Email.String, Message: "invalid email format"}
	}
	return nil
}

// EmailResult is the outcome of FilterValidEmails.
type EmailResult struct {
	Valid        []Record
	ValidCount   int
	InvalidCount int
	Dropped      []DroppedRecord
}

// FilterValidEmails partitions records by email validity, preserving order.
func FilterValidEmails(records []Record) EmailResult {
	res := EmailResult{Valid: make([]Record, 0, len(records))}
	for _, r := range records {
		if err := ValidateEmail(r); err != nil {
			res.InvalidCount++
			res.Dropped = append(res.Dropped, DroppedRecord{
				Ref:    r.Ref(),
				Phase:  PhaseEmail,
				Reason: err.Error(),
			})
			continue
		}
		res.ValidCount++
		res.Valid = append(res.Valid, r)
	}
	return res
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		idx[key] = i
	}
	return idx
}

// ValidateHeaders validates that all required columns exist in the headers.
// Returns a mapping from column name to index, or an error listing missing columns.
func ValidateHeaders(headers []string, required []string) (HeaderIndex, error) {
	idx := MakeHeaderIndex(headers)
	var missing []string

	for _, name := range required {
		if _, ok := idx[strings.ToLower(name)]; !ok {
			missing = append(missing, name)
		}
	}

	if len(missing) > 0 {
		return nil, fmt.Errorf("missing required columns: %s", strings.Join(missing, ", "))
	}

	return idx, nil
}

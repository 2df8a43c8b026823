// Package core provides the business logic for user record ingestion.
//
// # Error Codes Reference
//
// This file defines user-friendly error messages with codes for support reference.
// When an ingestion run or a query fails, operators can quote the error code
// for faster diagnosis.
//
// Error codes are grouped by category:
//
// # Store Errors (DB001-DB099)
//
//	DB001 - Unique violation: A row with this key already exists
//	        Action: Check whether this batch was already loaded
//	        Patterns: SQLSTATE 23505, "unique constraint"
//
//	DB002 - Foreign key: A child row references a missing user
//	        Action: Reload the batch; children are inserted after their parent
//	        Patterns: SQLSTATE 23503, "foreign key constraint"
//
//	DB003 - Connection refused: Unable to connect to the store
//	        Action: Check USERDB_DSN and that the database is running
//	        Patterns: "connection refused"
//
//	DB004 - Locked: The store is busy
//	        Action: Wait for the other run to finish and try again
//	        Patterns: "database is locked", "deadlock"
//
//	DB005 - Timeout: Store operation timed out
//	        Action: Try again later
//	        Patterns: "context deadline exceeded", "timeout"
//
// # Source Errors (SRC001-SRC099)
//
//	SRC001 - Source unreadable: A source file could not be opened
//	         Action: Check the configured source paths
//	         Patterns: "no such file", "permission denied"
//
//	SRC002 - Source undecodable: A source file is not valid for its format
//	         Action: Check that the file extension matches its contents
//	         Patterns: "decode source"
//
//	SRC003 - Missing column: A delimited source lacks a required column
//	         Action: Check the header row
//	         Patterns: "missing required column"
//
//	SRC004 - Unknown format: No adapter is registered for the format
//	         Action: Use json, csv, or xml
//	         Patterns: "unknown source format"
//
// # Pipeline Errors (PIPE001-PIPE099)
//
//	PIPE001 - Bad timestamp: A record has an unparseable created_at
//	          Action: Fix the named record in its source file
//	          Patterns: "timestamp"
//
//	PIPE002 - Bad children: A canonical row has undecodable children
//	          Action: Regenerate the artifact with userdb ingest
//	          Patterns: "decode children"
//
// # Query Errors (AUTH001-AUTH099)
//
//	AUTH001 - Invalid login: The login or password did not match
//	          Patterns: "invalid login"
//
//	AUTH002 - Access denied: The command requires the admin role
//	          Patterns: "access denied"
//
//	AUTH003 - Invalid command: The command is not recognized
//	          Patterns: "invalid command"
//
// # Server Errors (SRV001-SRV099)
//
//	SRV001 - Busy: Every command slot is in use
//	         Action: Retry after a short delay
//	         Patterns: "too many concurrent commands"
//
// # Default Error (ERR000)
//
//	ERR000 - Unknown error: An unexpected error occurred
//	         Action: Check the logs for the run id
//
// # Pattern Matching
//
// Store errors carrying a SQLSTATE are classified by code first. All other
// errors are matched case-insensitively using strings.Contains and the first
// matching pattern wins, so more specific patterns are defined before general ones.
package core

import (
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
)

// UserMessage provides user-friendly error information with actionable guidance.
type UserMessage struct {
	Message string // What happened (user-friendly)
	Action  string // What to do about it
	Code    string // Error code for support reference
}

// errorPattern defines a pattern to match and its corresponding user message.
type errorPattern struct {
	pattern string
	msg     UserMessage
}

var (
	msgUnique = UserMessage{
		Message: "A row with this key already exists",
		Action:  "Check whether this batch was already loaded",
		Code:    "DB001",
	}
	msgForeignKey = UserMessage{
		Message: "A child row references a missing user",
		Action:  "Reload the batch; children are inserted after their parent",
		Code:    "DB002",
	}
)

// sqlStateMessages classifies driver errors that carry a SQLSTATE.
var sqlStateMessages = map[string]UserMessage{
	"23505": msgUnique,
	"23503": msgForeignKey,
}

// errorPatterns maps technical error patterns (case-insensitive) to user messages.
// The first matching pattern wins, so order matters.
var errorPatterns = []errorPattern{
	// Store constraint errors
	{pattern: "unique constraint", msg: msgUnique},
	{pattern: "foreign key constraint", msg: msgForeignKey},

	// Store availability errors
	{
		pattern: "connection refused",
		msg: UserMessage{
			Message: "Unable to connect to the store",
			Action:  "Check USERDB_DSN and that the database is running",
			Code:    "DB003",
		},
	},
	{
		pattern: "database is locked",
		msg: UserMessage{
			Message: "The store is busy",
			Action:  "Wait for the other run to finish and try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "deadlock",
		msg: UserMessage{
			Message: "The store is busy",
			Action:  "Wait for the other run to finish and try again",
			Code:    "DB004",
		},
	},
	{
		pattern: "context deadline exceeded",
		msg: UserMessage{
			Message: "Store operation timed out",
			Action:  "Try again later",
			Code:    "DB005",
		},
	},

	// Source errors
	{
		pattern: "missing required column",
		msg: UserMessage{
			Message: "A delimited source lacks a required column",
			Action:  "Check the header row",
			Code:    "SRC003",
		},
	},
	{
		pattern: "unknown source format",
		msg: UserMessage{
			Message: "No adapter is registered for the format",
			Action:  "Use json, csv, or xml",
			Code:    "SRC004",
		},
	},
	{
		pattern: "decode source",
		msg: UserMessage{
			Message: "A source file is not valid for its format",
			Action:  "Check that the file extension matches its contents",
			Code:    "SRC002",
		},
	},
	{
		pattern: "no such file",
		msg: UserMessage{
			Message: "A source file could not be opened",
			Action:  "Check the configured source paths",
			Code:    "SRC001",
		},
	},
	{
		pattern: "permission denied",
		msg: UserMessage{
			Message: "A source file could not be opened",
			Action:  "Check the configured source paths",
			Code:    "SRC001",
		},
	},

	// Pipeline errors
	{
		pattern: "decode children",
		msg: UserMessage{
			Message: "A canonical row has undecodable children",
			Action:  "Regenerate the artifact with userdb ingest",
			Code:    "PIPE002",
		},
	},
	{
		pattern: "timestamp",
		msg: UserMessage{
			Message: "A record has an unparseable created_at",
			Action:  "Fix the named record in its source file",
			Code:    "PIPE001",
		},
	},

	// Query errors
	{
		pattern: "invalid login",
		msg:     UserMessage{Message: "Invalid Login", Code: "AUTH001"},
	},
	{
		pattern: "access denied",
		msg:     UserMessage{Message: "Access denied.", Code: "AUTH002"},
	},
	{
		pattern: "invalid command",
		msg:     UserMessage{Message: "Invalid command.", Code: "AUTH003"},
	},

	// Server capacity
	{
		pattern: "too many concurrent commands",
		msg: UserMessage{
			Message: "The server is busy",
			Action:  "Retry after a short delay",
			Code:    "SRV001",
		},
	},

	// Generic timeout last so the more specific patterns above win.
	{
		pattern: "timeout",
		msg: UserMessage{
			Message: "Store operation timed out",
			Action:  "Try again later",
			Code:    "DB005",
		},
	},
}

// defaultMessage is returned when no pattern matches (ERR000).
var defaultMessage = UserMessage{
	Message: "An unexpected error occurred",
	Action:  "Check the logs for the run id",
	Code:    "ERR000",
}

// MapError converts a technical error to a user-friendly message.
// Errors wrapping a *pgconn.PgError are classified by SQLSTATE; all others
// are matched against known patterns. If nothing matches, a generic fallback
// message with code ERR000 is returned.
func MapError(err error) UserMessage {
	if err == nil {
		return UserMessage{}
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if msg, ok := sqlStateMessages[pgErr.Code]; ok {
			return msg
		}
	}

	errStr := strings.ToLower(err.Error())

	for _, ep := range errorPatterns {
		if strings.Contains(errStr, ep.pattern) {
			return ep.msg
		}
	}

	return defaultMessage
}

// FormatUserError creates a formatted error string for display.
// The format is: "Message (Code: XXX). Action", or "Message (Code: XXX)"
// when there is no suggested action.
func FormatUserError(err error) string {
	msg := MapError(err)
	if msg.Message == "" {
		return ""
	}
	if msg.Action == "" {
		return fmt.Sprintf("%s (Code: %s)", msg.Message, msg.Code)
	}
	return fmt.Sprintf("%s (Code: %s). %s", msg.Message, msg.Code, msg.Action)
}

// IsUserFacing checks if an error matches a known pattern and should be shown to users.
// Returns true if the error matches a specific pattern (not the generic ERR000 fallback).
func IsUserFacing(err error) bool {
	if err == nil {
		return false
	}
	msg := MapError(err)
	return msg.Code != defaultMessage.Code
}

// UserError wraps a technical error with a user-friendly message.
// The original error is preserved for logging while providing a clean message for users.
type UserError struct {
	Technical error       // Original technical error for logging
	User      UserMessage // User-friendly message for display
}

func (e *UserError) Error() string {
	return e.User.Message
}

func (e *UserError) Unwrap() error {
	return e.Technical
}

// NewUserError creates a UserError by mapping a technical error to a user-friendly message.
// Returns nil if err is nil.
func NewUserError(err error) *UserError {
	if err == nil {
		return nil
	}
	return &UserError{
		Technical: err,
		User:      MapError(err),
	}
}

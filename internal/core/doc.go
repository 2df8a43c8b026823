// Package core provides the business logic for user record ingestion.
//
// This package holds the domain logic independent of any storage or
// transport layer. It can be used by the CLI, the HTTP surface, or tests
// without modification.
//
// # Pipeline
//
// Source adapters produce [Record] values with loosely typed phone and
// children fields. [Run] turns them into canonical [User] values:
//
//  1. [Merge] concatenates the sources in configured order
//  2. [FilterValidEmails] drops records with a malformed or missing email
//  3. [NormalizePhones] reduces phones to at most 9 digits, no leading zero
//  4. [FilterWithPhone] drops records whose phone normalized to ""
//  5. [Deduplicate] keeps the newest record per phone and per email
//  6. [NormalizeChildren] decodes the children field into []Child
//
// Every stage is a pure function of its input and returns explicit counts,
// so each can be tested without the others.
//
// # Children
//
// The children field arrives in several shapes depending on the source:
// a structured list of pairs or mappings, a Python-style literal string,
// or free text such as "Anna (5), Tom (7)". [ParseChildren] classifies the
// value into one of these shapes and never fails; anything it cannot read
// becomes an empty list.
//
// # Error Handling
//
// Technical errors are mapped to user-friendly messages using [MapError].
// Each error category has a unique code for support reference:
//
//   - DB001-DB005: Store errors (constraints, connections, locks)
//   - SRC001-SRC004: Source errors (unreadable, undecodable, columns)
//   - PIPE001-PIPE002: Pipeline errors (timestamps, children)
//   - AUTH001-AUTH003: Query errors (login, role, command)
package core

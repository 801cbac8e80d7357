// Package service implements the ledger's use cases on top of the storage
// layer: bill creation with exact-cent allocation, payment tracking,
// summaries, access control and the invite lifecycle.
package service

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Public error taxonomy. HTTP handlers map these onto status codes; the
// services themselves never reference transport concepts.
var (
	// ErrNotFound signals that the addressed room, bill, member, share
	// or invite does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAccessDenied signals that an authenticated user lacks
	// permission. On read paths it deliberately does not confirm
	// whether the resource exists.
	ErrAccessDenied = errors.New("access denied")
)

// ValidationError reports malformed or out-of-range input with field-level
// detail. Nothing is persisted when a ValidationError is returned:
// validation always runs before allocation and before any write.
type ValidationError struct {
	FieldErrors map[string]string
}

func (e *ValidationError) Error() string {
	if len(e.FieldErrors) == 0 {
		return "validation failed"
	}
	fields := make([]string, 0, len(e.FieldErrors))
	for f := range e.FieldErrors {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = fmt.Sprintf("%s: %s", f, e.FieldErrors[f])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// validation accumulates field errors and converts to a ValidationError
// only if any were recorded.
type validation map[string]string

func (v validation) add(field, message string) {
	if _, dup := v[field]; !dup {
		v[field] = message
	}
}

func (v validation) err() error {
	if len(v) == 0 {
		return nil
	}
	return &ValidationError{FieldErrors: v}
}

// ConflictError reports a state conflict: duplicate names, exhausted or
// expired invites, redeeming one's own room.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

func conflict(reason string) error {
	return &ConflictError{Reason: reason}
}

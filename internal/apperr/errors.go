// Package apperr defines the error taxonomy shared by the store, the resolver
// and the HTTP boundary.
package apperr

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrDuplicateKey is returned when an active record with the same natural key already exists.
	ErrDuplicateKey = errors.New("duplicate key")

	// ErrDuplicateMembership is returned when an active (owner, user) membership already exists.
	ErrDuplicateMembership = errors.New("duplicate membership")

	// ErrForbidden is returned when the user does not hold the required permission.
	ErrForbidden = errors.New("forbidden")

	// ErrNotFound is returned when a referenced entity is absent or killed.
	ErrNotFound = errors.New("not found")

	// ErrValidation is returned for malformed input.
	ErrValidation = errors.New("validation failed")

	// ErrUnauthenticated is returned when a request carries no valid credentials.
	ErrUnauthenticated = errors.New("unauthenticated")
)

// KeyError describes a natural key collision among active rows.
type KeyError struct {
	Entity string
	Field  string
	Value  string
}

func (e *KeyError) Error() string {
	return fmt.Sprintf("%s with %s %q already exists", e.Entity, e.Field, e.Value)
}

// Unwrap lets errors.Is match ErrDuplicateKey.
func (e *KeyError) Unwrap() error {
	return ErrDuplicateKey
}

// MembershipError describes an active (owner, user) pair collision.
type MembershipError struct {
	Owner   string
	OwnerID uint
	UserID  uint64
}

func (e *MembershipError) Error() string {
	return fmt.Sprintf("user %d is already a member of %s %d", e.UserID, e.Owner, e.OwnerID)
}

// Unwrap lets errors.Is match ErrDuplicateMembership.
func (e *MembershipError) Unwrap() error {
	return ErrDuplicateMembership
}

// ValidationError carries per-field messages, rendered at the boundary as
// {"field": ["message", ...]}.
type ValidationError struct {
	Fields map[string][]string
}

// Invalid returns a ValidationError with a single message for field.
func Invalid(field, msg string) *ValidationError {
	return &ValidationError{Fields: map[string][]string{field: {msg}}}
}

// Add appends msg to field and returns the receiver.
func (e *ValidationError) Add(field, msg string) *ValidationError {
	if e.Fields == nil {
		e.Fields = make(map[string][]string)
	}

	e.Fields[field] = append(e.Fields[field], msg)

	return e
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}

	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+strings.Join(e.Fields[k], ", "))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

// Unwrap lets errors.Is match ErrValidation.
func (e *ValidationError) Unwrap() error {
	return ErrValidation
}

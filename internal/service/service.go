// Package service provides business logic for the application.
package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/oklog/ulid/v2"

	"github.com/pubdocs/pubdocs/internal/auth"
	"github.com/pubdocs/pubdocs/internal/model"
)

// Service errors.
var (
	// ErrNotAuthenticated is returned when the request scope carries no identity.
	ErrNotAuthenticated = auth.ErrNotAuthenticated

	ErrValidation       = errors.New("validation failed")
	ErrDocumentNotFound = errors.New("document not found")
	ErrUserNotFound     = errors.New("user not found")
	ErrEmailTaken       = errors.New("email address already registered")

	// ErrAccessDenied is returned when the access policy refuses an operation
	// on another user's document.
	ErrAccessDenied = errors.New("access denied")

	// ErrExportRetired is returned by every PDF export request.
	ErrExportRetired = errors.New("pdf export has been retired")
)

// ValidationError describes a rejected input field. It matches ErrValidation
// with errors.Is.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError.
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

func invalid(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// currentIdentity returns the identity bound to sess or ErrNotAuthenticated.
func currentIdentity(sess *auth.Session) (*model.Identity, error) {
	id, ok := sess.Current()
	if !ok || strings.TrimSpace(id.UserID) == "" {
		return nil, ErrNotAuthenticated
	}
	return id, nil
}

// generateULID returns a new lexicographically sortable identifier.
func generateULID() string {
	return ulid.Make().String()
}

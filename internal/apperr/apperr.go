// Package apperr holds the error taxonomy shared by services, repositories and
// the HTTP layer. Callers wrap these with fmt.Errorf("...: %w", ...) and match
// them with errors.Is.
package apperr

import "errors"

var (
	ErrUnauthenticated = errors.New("not authenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	// ErrConflict reports a unique-index violation (slug, external id, userName, email).
	ErrConflict     = errors.New("conflict")
	ErrVerification = errors.New("webhook verification failed")
	ErrValidation   = errors.New("validation failed")
)

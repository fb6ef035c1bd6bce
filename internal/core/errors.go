package core

import "errors"

// Error taxonomy shared by services and the HTTP layer. Services wrap these
// with context; handlers map them to status codes with errors.Is.
var (
	// ErrUnauthorized means no current user could be resolved.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrForbidden means an authenticated user touched a record they do not own.
	ErrForbidden = errors.New("forbidden")
	// ErrNotFound means a referenced id has no matching master row.
	ErrNotFound = errors.New("not found")
	// ErrStore wraps row-store adapter failures.
	ErrStore = errors.New("row store error")
)

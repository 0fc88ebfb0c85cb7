package repository

import "errors"

// Common repository errors
var (
	// ErrNotFound is returned when a record or document is not found
	ErrNotFound = errors.New("record not found")

	// ErrDuplicateEmail is returned when trying to create an account with an existing email
	ErrDuplicateEmail = errors.New("account with this email already exists")
)

package domain

import "fmt"

// AuthErrorCode classifies identity provider failures.
type AuthErrorCode string

const (
	AuthInvalidCredentials AuthErrorCode = "invalid_credentials"
	AuthEmailInUse         AuthErrorCode = "email_in_use"
	AuthWeakPassword       AuthErrorCode = "weak_password"
	AuthUnknownEmail       AuthErrorCode = "unknown_email"
	AuthNetworkError       AuthErrorCode = "network_error"
	AuthOther              AuthErrorCode = "other"
)

// AuthError is a typed failure from the credential store. The originating
// error is carried unmodified so callers can surface or unwrap it.
type AuthError struct {
	Code    AuthErrorCode
	Message string
	Err     error
}

func (e *AuthError) Error() string {
	return e.Message
}

func (e *AuthError) Unwrap() error {
	return e.Err
}

// NewAuthError creates a typed auth error with a formatted message.
func NewAuthError(code AuthErrorCode, format string, args ...any) *AuthError {
	return &AuthError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapAuthError creates a typed auth error preserving the cause.
func WrapAuthError(code AuthErrorCode, err error, format string, args ...any) *AuthError {
	return &AuthError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

// StoreErrorCode classifies profile store failures.
type StoreErrorCode string

const (
	StoreNotFound     StoreErrorCode = "not_found"
	StoreNetworkError StoreErrorCode = "network_error"
	StoreOther        StoreErrorCode = "other"
)

// StoreError is a typed failure from the profile store.
type StoreError struct {
	Code    StoreErrorCode
	Message string
	Err     error
}

func (e *StoreError) Error() string {
	return e.Message
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

// NewStoreError creates a typed store error with a formatted message.
func NewStoreError(code StoreErrorCode, format string, args ...any) *StoreError {
	return &StoreError{Code: code, Message: fmt.Sprintf(format, args...)}
}

// WrapStoreError creates a typed store error preserving the cause.
func WrapStoreError(code StoreErrorCode, err error, format string, args ...any) *StoreError {
	return &StoreError{Code: code, Message: fmt.Sprintf(format, args...), Err: err}
}

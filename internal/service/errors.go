// Package service provides business logic for the application.
package service

import "errors"

// Service errors.
var (
	ErrValidation         = errors.New("validation failed")
	ErrDuplicateEmail     = errors.New("email already in use")
	ErrNomineeNotFound    = errors.New("nominee not found")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthenticated    = errors.New("authentication required")
)

package domain

import "errors"

// Sentinel errors returned by services and repositories. Handlers map these to
// HTTP statuses; infrastructure errors (database, cache, broker) are wrapped and
// passed through untranslated.
var (
	ErrNotFound     = errors.New("resource not found")
	ErrConflict     = errors.New("resource already exists")
	ErrUnauthorized = errors.New("unauthorized")
	ErrValidation   = errors.New("invalid input")
)

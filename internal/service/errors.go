package service

import "errors"

var (
	// ErrValidation marks input rejected before any write. Never retried.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound marks a query for an unknown hospital. A normal outcome.
	ErrNotFound = errors.New("not found")

	// ErrEventPublish marks a publish failure that happened after the
	// database transaction committed. Callers must not assume the write
	// was rolled back when they see this error.
	ErrEventPublish = errors.New("event publish failed")
)

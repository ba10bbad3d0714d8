package entities

import "errors"

var (
	// ErrNotFound reports an operation on an id or key that is not present.
	ErrNotFound = errors.New("entity not found")
	// ErrInvalidArgument reports a rejected record, field name or value.
	ErrInvalidArgument = errors.New("invalid argument")
)

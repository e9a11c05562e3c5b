package service

import (
	"errors"
)

// Pipeline stage failures are returned as typed values so callers can map
// them to acknowledgements without tearing down the connection.

// ErrUnauthorized means the caller has no established identity or the
// identity does not match the operation.
var ErrUnauthorized = errors.New("unauthorized")

// ErrDuplicateGroupName is the conflict returned when a group name is taken.
var ErrDuplicateGroupName = errors.New("group name already exists")

// ValidationError is a malformed or missing required field.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string { return e.Reason }

// AttachmentError carries the attachment store's rejection reason verbatim.
type AttachmentError struct {
	Reason string
}

func (e *AttachmentError) Error() string { return e.Reason }

// NotFoundError is a missing referenced entity (parent message, group, user).
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string { return e.Resource + " not found" }

// PersistenceError wraps a storage failure. Its message is deliberately
// generic; the cause is logged at the point of failure, never surfaced.
type PersistenceError struct {
	Err error
}

func (e *PersistenceError) Error() string { return "internal server error" }

func (e *PersistenceError) Unwrap() error { return e.Err }

func persistence(err error) error {
	return &PersistenceError{Err: err}
}

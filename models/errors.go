// ABOUTME: Error taxonomy for CRM data operations
// ABOUTME: Sentinels plus OpError carrying kind, operation, and a human-readable message
package models

import (
	"errors"
	"fmt"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalid      = errors.New("invalid record")
	ErrBackend      = errors.New("backend failure")
	ErrPartialBatch = errors.New("partial batch failure")
)

// OpError is returned by every backing store. Message is safe to show to a
// user; Err is one of the sentinels above, possibly joined with a cause.
type OpError struct {
	Kind    Kind
	Op      string
	ID      ID
	Message string
	Err     error
}

func (e *OpError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Kind, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Kind, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// FallbackMessage is the generic message used when a backend supplies none.
func FallbackMessage(op string, kind Kind) string {
	return fmt.Sprintf("Failed to %s %s", op, kind)
}

// NotFound builds the error returned when id is absent from kind's collection.
func NotFound(kind Kind, op string, id ID) error {
	return &OpError{
		Kind:    kind,
		Op:      op,
		ID:      id,
		Message: fmt.Sprintf("%s %s not found", kind, id),
		Err:     ErrNotFound,
	}
}

func invalid(kind Kind, msg string) error {
	return &OpError{Kind: kind, Op: "validate", Message: msg, Err: ErrInvalid}
}

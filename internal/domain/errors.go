package domain

import "fmt"

// NotFoundError is returned when a mutation, delete or merge target does not
// exist or is already soft-deleted. It is a result, not a panic condition.
type NotFoundError struct {
	Kind EntityKind
	ID   int64
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %d not found (or already deleted)", e.Kind, e.ID)
}

// ConflictError is returned when a direct creation hits a duplicate natural
// key (company name, product name, user email).
type ConflictError struct {
	Kind EntityKind
	Key  string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s with key %q already exists", e.Kind, e.Key)
}

// ValidationError is returned for bad input before any statement is issued
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

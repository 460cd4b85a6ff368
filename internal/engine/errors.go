package engine

import (
	"errors"
	"fmt"
)

var (
	// ErrAlreadyCompleted is returned when a completion would be a duplicate. The cache is left untouched.
	ErrAlreadyCompleted = errors.New("task already completed")

	// ErrTaskNotFound is returned when the task is not in the active cache.
	ErrTaskNotFound = errors.New("task not found")

	// ErrCompletionInFlight is returned while another completion of the same task is pending.
	ErrCompletionInFlight = errors.New("completion already in progress")

	// ErrNoCatalog is returned by a catalog source that has nothing to read from.
	ErrNoCatalog = errors.New("no badge catalog configured")
)

// ValidationError indicates a request that can never succeed as issued, such as a routine task
// without a routine id. It is raised before any optimistic mutation or gateway call.
type ValidationError struct {
	TaskID string
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	if e.TaskID == "" {
		return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
	}
	return fmt.Sprintf("task %s: invalid %s: %s", e.TaskID, e.Field, e.Reason)
}

// PersistenceError wraps a rejected gateway write. The local cache has already been rolled back.
type PersistenceError struct {
	TaskID string
	Kind   TaskKind
	Err    error
}

func (e PersistenceError) Error() string {
	return fmt.Sprintf("complete %s task %s: %v", e.Kind, e.TaskID, e.Err)
}

func (e PersistenceError) Unwrap() error { return e.Err }

// EvaluationError describes a badge or level computation that could not be performed.
// It is logged, never returned to completion callers.
type EvaluationError struct {
	BadgeID string
	Reason  string
}

func (e EvaluationError) Error() string {
	return fmt.Sprintf("badge %q: %s", e.BadgeID, e.Reason)
}

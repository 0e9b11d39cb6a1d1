package games

import "fmt"

// NotFoundError means a referenced entity (game, player, quest, round) does not exist.
// The action has no effect; callers surface this as-is.
type NotFoundError struct {
	Entity string
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Entity, e.Key)
}

// NewNotFoundError builds a NotFoundError for the given entity/key.
func NewNotFoundError(entity, key string) error {
	return &NotFoundError{Entity: entity, Key: key}
}

// InvalidError means the payload or caller failed validation: malformed payload, wrong
// type for the current state, team size mismatch, unknown player, duplicate vote, caller
// is not the leader, etc. No events are emitted before this error is returned.
type InvalidError struct {
	Reason string
}

func (e *InvalidError) Error() string {
	return e.Reason
}

// NewInvalidError builds an InvalidError with the given reason.
func NewInvalidError(format string, args ...interface{}) error {
	return &InvalidError{Reason: fmt.Sprintf(format, args...)}
}

// ConflictError means the game is in the wrong state/status for the action, or some
// structural invariant (exactly one assassin) does not hold.
type ConflictError struct {
	Reason string
}

func (e *ConflictError) Error() string {
	return e.Reason
}

// NewConflictError builds a ConflictError with the given reason.
func NewConflictError(format string, args ...interface{}) error {
	return &ConflictError{Reason: fmt.Sprintf(format, args...)}
}

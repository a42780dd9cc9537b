package domain

import (
	"errors"
	"fmt"
)

// ErrNoEligibleTransition is returned by Advance (or a top-level
// exploration round) when no rule's guard passed at the current state.
var ErrNoEligibleTransition = errors.New("no eligible transition")

// ErrEmptySnapshotStack is returned when Retrieve or Commit is called with
// nothing saved. It signals a caller programming error, not a normal
// outcome.
var ErrEmptySnapshotStack = errors.New("empty snapshot stack")

// ErrNoViableBranch is returned when augmented exploration exhausted every
// branch at every depth without a commit and no snapshot remained to
// retreat to.
var ErrNoViableBranch = errors.New("no viable branch")

// ErrUnknownState is returned when a transition targets a state that is
// not a key of the rule table.
var ErrUnknownState = errors.New("unknown state")

// CallbackError wraps an error returned by a guard, action, or enter/exit
// callback, recording where it fired.
type CallbackError struct {
	State StateID
	Phase string // "guard", "action", "enter", "exit"
	Err   error
}

// Error implements error.
func (e *CallbackError) Error() string {
	return fmt.Sprintf("%s callback at state %d: %v", e.Phase, e.State, e.Err)
}

// Unwrap exposes the underlying callback error to errors.Is/As.
func (e *CallbackError) Unwrap() error {
	return e.Err
}

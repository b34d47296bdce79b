package searcher

import (
	"errors"
	"fmt"
)

var (
	// ErrPrecondition reports invalid hyperparameters, action spaces or beliefs.
	ErrPrecondition = errors.New("precondition violated")

	// ErrUnexpandedHistory is returned when statistics are read for a history
	// that no simulation has expanded yet.
	ErrUnexpandedHistory = errors.New("history not expanded")
)

// ModelError wraps a failure returned by one of the caller's model functions.
type ModelError struct {
	Op  string
	Err error
}

func (e *ModelError) Error() string {
	return fmt.Sprintf("model %s: %v", e.Op, e.Err)
}

func (e *ModelError) Unwrap() error {
	return e.Err
}

func modelError(op string, err error) error {
	return &ModelError{Op: op, Err: err}
}

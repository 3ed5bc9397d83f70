package generations

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound indicates an entity was not found.
	ErrNotFound = errors.New("not found")

	// ErrInvalidInput indicates validation or bad input.
	ErrInvalidInput = errors.New("invalid input")

	// ErrForbidden indicates access is not allowed.
	ErrForbidden = errors.New("forbidden")

	// ErrNotArchived indicates the generation has no stored PDF.
	ErrNotArchived = errors.New("pdf not archived")
)

// StageError wraps the cause of a failed pipeline step.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// StageOf returns the failed stage recorded in err, or "".
func StageOf(err error) Stage {
	var se *StageError
	if errors.As(err, &se) {
		return se.Stage
	}
	return ""
}

func stageErr(stage Stage, err error) error {
	return &StageError{Stage: stage, Err: err}
}

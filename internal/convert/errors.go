package convert

import (
	"errors"
	"fmt"
)

// Kind classifies a failed conversion.
type Kind string

const (
	KindSourceMissing Kind = "source_missing"
	KindNotFound      Kind = "binary_not_found"
	KindExit          Kind = "exit"
	KindTimeout       Kind = "timeout"
	KindNoOutput      Kind = "no_output"
	KindCanceled      Kind = "canceled"
)

// Error is returned by Convert for every failure.
type Error struct {
	Kind     Kind
	ExitCode int
	Stderr   string
	Err      error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindExit:
		msg := fmt.Sprintf("conversion failed with exit code %d", e.ExitCode)
		if e.Stderr != "" {
			msg += ": " + e.Stderr
		}
		return msg
	case KindNoOutput:
		if e.Err != nil {
			return "conversion produced no recoverable output path: " + e.Err.Error()
		}
		return "conversion produced no recoverable output path"
	}
	if e.Err != nil {
		return fmt.Sprintf("conversion %s: %v", e.Kind, e.Err)
	}
	return fmt.Sprintf("conversion %s", e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches another *Error with the same Kind, so errors.Is(err, &Error{Kind: KindTimeout}) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the Kind carried by err, or "" when err is not a conversion error.
func KindOf(err error) Kind {
	var convErr *Error
	if errors.As(err, &convErr) {
		return convErr.Kind
	}
	return ""
}

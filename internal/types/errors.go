package types

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput      = errors.New("no sequences to annotate")
	ErrInvalidSequence = errors.New("invalid protein sequence")
)

// ConnectionError is returned when the store location cannot be opened.
type ConnectionError struct {
	Location string
	Err      error
}

func (e *ConnectionError) Error() string {
	return fmt.Sprintf("failed to connect to store %q: %v", e.Location, e.Err)
}

func (e *ConnectionError) Unwrap() error {
	return e.Err
}

// InvalidParameterError names a caller-supplied value outside its domain.
type InvalidParameterError struct {
	Parameter string
	Value     int
	Reason    string
}

func (e *InvalidParameterError) Error() string {
	return fmt.Sprintf("invalid %s %d: %s", e.Parameter, e.Value, e.Reason)
}

// DerivationError reports the derived table whose statement failed.
type DerivationError struct {
	Table Table
	Err   error
}

func (e *DerivationError) Error() string {
	return fmt.Sprintf("failed to derive %s: %v", e.Table, e.Err)
}

func (e *DerivationError) Unwrap() error {
	return e.Err
}

type AnnotationError struct {
	Op     string
	Err    error
	Stderr string
}

func (e *AnnotationError) Error() string {
	if e.Stderr != "" {
		return fmt.Sprintf("annotation %s failed: %v: %s", e.Op, e.Err, e.Stderr)
	}
	return fmt.Sprintf("annotation %s failed: %v", e.Op, e.Err)
}

func (e *AnnotationError) Unwrap() error {
	return e.Err
}

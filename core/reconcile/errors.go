package reconcile

import (
	"errors"
	"fmt"
)

var (
	// ErrLoad indicates that the configuration source could not be read or parsed.
	ErrLoad = errors.New("reconcile: load failed")
	// ErrMissingField indicates that a record lacks a required field.
	ErrMissingField = errors.New("reconcile: missing required field")
	// ErrConstraintViolation indicates a uniqueness or foreign key violation in the store.
	ErrConstraintViolation = errors.New("reconcile: constraint violation")
	// ErrUnknownMode indicates an unsupported mode or schema name.
	ErrUnknownMode = errors.New("reconcile: unknown mode")
)

// MissingFieldError names the record and the field that is missing.
type MissingFieldError struct {
	Record string
	Field  string
}

func (e *MissingFieldError) Error() string {
	if e.Record == "" {
		return fmt.Sprintf("%s: %s", ErrMissingField, e.Field)
	}
	return fmt.Sprintf("%s: %s (validator %q)", ErrMissingField, e.Field, e.Record)
}

// Unwrap allows errors.Is(err, ErrMissingField).
func (e *MissingFieldError) Unwrap() error {
	return ErrMissingField
}

// loadError wraps err so that it matches ErrLoad.
func loadError(op string, err error) error {
	if errors.Is(err, ErrLoad) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrLoad, op, err)
}

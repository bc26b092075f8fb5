package core

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// FieldError is used to indicate an error with a specific struct field.
type FieldError struct {
	Field string
	Error string
}

type ValidationError struct {
	Err    error
	Fields []FieldError
}

func NewValidationError(err error, flds ...FieldError) error {
	return &ValidationError{err, flds}
}

func (err *ValidationError) Error() string {
	if len(err.Fields) > 0 {
		return JoinFieldErrors(err.Fields)
	}
	if err.Err == nil {
		return ""
	}
	return err.Err.Error()
}

func (err *ValidationError) Unwrap() error { return err.Err }

// JoinFieldErrors renders field errors as a single human readable message, sorted by field.
func JoinFieldErrors(flds []FieldError) string {
	sorted := make([]FieldError, len(flds))
	copy(sorted, flds)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Field < sorted[j].Field })

	parts := make([]string, 0, len(sorted))
	for _, f := range sorted {
		parts = append(parts, f.Field+": "+f.Error)
	}
	return strings.Join(parts, "; ")
}

// NotFoundError is returned by services whenever a record does not exist.
type NotFoundError struct {
	Entity string
}

func NewNotFoundError(entity string) error {
	return &NotFoundError{Entity: entity}
}

func (err *NotFoundError) Error() string {
	return err.Entity + " not found"
}

func IsNotFound(err error) bool {
	_, ok := errors.Cause(err).(*NotFoundError)
	return ok
}

var ErrInUse = errors.New("record in use")

// NewInUseError is returned when a record cannot be deleted because other records still point at it.
func NewInUseError(entity, by string) error {
	return NewValidationError(
		errors.Wrapf(ErrInUse, "%s referenced by %s", entity, by),
		FieldError{Field: "id", Error: "this " + entity + " is still referenced by " + by},
	)
}

type shutdown struct {
	message string
}

func NewShutdownError(msg string) error {
	return &shutdown{message: msg}
}

func (s shutdown) Error() string {
	return s.message
}

func IsShutdown(err error) bool {
	_, ok := errors.Cause(err).(*shutdown)
	return ok
}

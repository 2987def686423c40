package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound is returned when a read, update or delete target is absent.
	ErrNotFound = errors.New("record not found")
	// ErrDuplicateKey is returned when a unique or foreign-key constraint rejects a write.
	ErrDuplicateKey = errors.New("duplicate key")
	// ErrInvalidType is returned when a value cannot be stored in its column.
	ErrInvalidType = errors.New("invalid field type")
	// ErrUnknownField is returned when a field name has no matching column.
	ErrUnknownField = errors.New("unknown field")
	// ErrInvalidArgument is returned for bad pagination, empty payloads and
	// filter values whose type does not match the column.
	ErrInvalidArgument = errors.New("invalid argument")
)

// FieldError reports which field and value caused a failure.
// It matches both its Kind and its cause with errors.Is.
type FieldError struct {
	Kind     error
	Table    string
	Field    string
	Value    any
	Expected string
	Err      error
}

func (e *FieldError) Error() string {
	msg := fmt.Sprintf("%v: %s.%s", e.Kind, e.Table, e.Field)
	if e.Value != nil || e.Expected != "" {
		msg += fmt.Sprintf(" (value %v of type %T", e.Value, e.Value)
		if e.Expected != "" {
			msg += ", expected " + e.Expected
		}
		msg += ")"
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *FieldError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

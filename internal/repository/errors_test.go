package repository

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFieldError(t *testing.T) {
	cause := errors.New("boom")
	err := error(&FieldError{
		Kind:     ErrInvalidArgument,
		Table:    "producers",
		Field:    "id",
		Value:    "a",
		Expected: "integer",
		Err:      cause,
	})

	assert.ErrorIs(t, err, ErrInvalidArgument)
	assert.ErrorIs(t, err, cause)
	assert.NotErrorIs(t, err, ErrInvalidType)
	assert.Equal(t, "invalid argument: producers.id (value a of type string, expected integer): boom", err.Error())
}

func TestFieldError_WithoutValue(t *testing.T) {
	err := &FieldError{Kind: ErrUnknownField, Table: "producers", Field: "extra"}
	assert.Equal(t, "unknown field: producers.extra", err.Error())
	assert.ErrorIs(t, err, ErrUnknownField)
}

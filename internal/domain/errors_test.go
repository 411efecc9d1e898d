package domain

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationErrorWrapping(t *testing.T) {
	t.Parallel()

	err := NewValidationError("field", "is bad", nil)
	assert.Equal(t, "field is bad", err.Error())
	assert.True(t, errors.Is(err, ErrValidation))
	assert.True(t, errors.Is(err, ErrInvalidArgument))

	idErr := NewValidationError("id", "missing", ErrInvalidID)
	assert.True(t, errors.Is(idErr, ErrInvalidID))
	assert.True(t, errors.Is(idErr, ErrInvalidArgument))
	assert.False(t, errors.Is(idErr, ErrNotFound))
}

func TestDemotionDisabledIsNotInvalidArgument(t *testing.T) {
	t.Parallel()

	assert.False(t, errors.Is(ErrDemotionDisabled, ErrInvalidArgument))
}

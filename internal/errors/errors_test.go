package errors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindInvalidAmount, KindOf(NewInvalidAmount(-5)))
	assert.Equal(t, KindStorage, KindOf(NewStorageError(errors.New("db down"))))
	assert.Equal(t, Kind(""), KindOf(errors.New("plain")))
	assert.Equal(t, Kind(""), KindOf(nil))
}

func TestKindOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("handling command: %w", NewNoJob())
	assert.Equal(t, KindNoJob, KindOf(err))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(NewInvalidAmount(0)))
	assert.True(t, IsValidation(NewNothingToSteal()))
	assert.False(t, IsValidation(NewStorageError(errors.New("db down"))))
	assert.False(t, IsValidation(errors.New("plain")))
	assert.False(t, IsValidation(nil))
}

func TestValidationErrorsNotRetryable(t *testing.T) {
	for _, err := range []*AppError{
		NewInvalidAmount(0),
		NewInvalidJob("astronaut"),
		NewNoJob(),
		NewUnknownItem("yacht"),
		NewItemNotOwned("car"),
		NewInsufficientFunds(500, 100),
		NewNothingToSteal(),
		NewInvalidTicketCount(0),
		NewNoParticipants(),
	} {
		assert.False(t, IsRetryable(err), err.Kind)
		assert.NotEmpty(t, err.UserMessage, err.Kind)
	}
}

func TestStorageErrorWrapsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewStorageError(cause)

	assert.True(t, IsRetryable(err))
	assert.Equal(t, SeverityHigh, err.Severity)
	assert.ErrorIs(t, err, cause)
}

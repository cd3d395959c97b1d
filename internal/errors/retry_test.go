package errors

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestWithRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_RetriesRetryableErrors(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		if calls < 3 {
			return NewStorageError(errors.New("transient"))
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 3, calls)
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewStorageError(errors.New("persistent"))
	})

	assert.Error(t, err)
	assert.Equal(t, MaxRetries+1, calls)
}

func TestWithRetry_ValidationAbortsImmediately(t *testing.T) {
	calls := 0
	err := WithRetry(context.Background(), func() error {
		calls++
		return NewInvalidAmount(-1)
	})

	assert.Error(t, err)
	assert.Equal(t, 1, calls)
}

func TestWithRetry_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := WithRetry(ctx, func() error {
		return NewStorageError(errors.New("never reached"))
	})

	assert.ErrorIs(t, err, context.Canceled)
}

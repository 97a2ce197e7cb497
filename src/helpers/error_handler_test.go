package helpers

import (
	"errors"
	"testing"
	"time"

	"tda-observer/src/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------

func TestObserverErrorWrapping(t *testing.T) {
	cause := errors.New("connection reset")
	err := NewDataSourceError("provider fetch failed", cause)

	assert.Equal(t, "provider fetch failed: connection reset", err.Error())
	assert.ErrorIs(t, err, cause)

	bare := NewStorageError("cursor missing", nil)
	assert.Equal(t, "cursor missing", bare.Error())
}

// -----------------------------------------------------------------------------

func TestRetryWithBackoff(t *testing.T) {
	log := logger.NewLogger("ERROR", "test")

	attempts := 0
	err := RetryWithBackoff(log, "flaky op", 3, time.Millisecond, func() error {
		attempts++
		if attempts < 3 {
			return errors.New("transient")
		}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 3, attempts)

	attempts = 0
	err = RetryWithBackoff(log, "broken op", 2, time.Millisecond, func() error {
		attempts++
		return errors.New("permanent")
	})
	assert.Error(t, err)
	assert.Equal(t, 2, attempts)
}

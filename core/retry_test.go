package core

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
)

func TestRetry(t *testing.T) {
	ctx := context.Background()

	t.Run("first attempt succeeds", func(t *testing.T) {
		var calls int
		err := Retry(ctx, func() error { calls++; return nil })
		assert.NoError(t, err)
		assert.Equal(t, 1, calls)
	})

	t.Run("transient then success", func(t *testing.T) {
		var calls int
		err := Retry(ctx, func() error {
			calls++
			if calls < 2 {
				return NewTransientError(errors.New("store unavailable"))
			}
			return nil
		})
		assert.NoError(t, err)
		assert.Equal(t, 2, calls)
	})

	t.Run("gives up after bounded attempts", func(t *testing.T) {
		var calls int
		wantErr := NewTransientError(errors.New("store unavailable"))
		err := Retry(ctx, func() error { calls++; return wantErr })
		assert.Equal(t, wantErr, err)
		assert.Equal(t, retryMaxAttempts, calls)
	})

	t.Run("non-transient error aborts immediately", func(t *testing.T) {
		var calls int
		wantErr := errors.New("boom")
		err := Retry(ctx, func() error { calls++; return wantErr })
		assert.Equal(t, wantErr, err)
		assert.Equal(t, 1, calls)
	})
}

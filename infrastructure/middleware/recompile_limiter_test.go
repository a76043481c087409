package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"golang.org/x/time/rate"
)

func TestRecompileLimiter_AllowRespectsBurst(t *testing.T) {
	limiter := NewRecompileLimiter(rate.Every(time.Hour), 2)

	assert.True(t, limiter.Allow())
	assert.True(t, limiter.Allow())
	assert.False(t, limiter.Allow())
}

func TestRecompileLimiter_WaitReturnsOnCancellation(t *testing.T) {
	limiter := NewRecompileLimiter(rate.Every(time.Hour), 1)
	require.True(t, limiter.Allow())

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	err := limiter.Wait(ctx)
	assert.Error(t, err)
}

func TestRecompileLimiter_WaitSucceedsWithinBudget(t *testing.T) {
	limiter := NewRecompileLimiter(rate.Every(time.Millisecond), 1)

	err := limiter.Wait(context.Background())
	assert.NoError(t, err)
}

package middleware

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testTargetMetrics is shared across this package's tests to avoid
// duplicate Prometheus registration panics.
var testTargetMetrics *TargetMetrics

func init() {
	testTargetMetrics = NewTargetMetrics()
}

func TestNewTargetMetrics(t *testing.T) {
	m := testTargetMetrics
	assert.NotNil(t, m)
	assert.NotNil(t, m.renderLatency)
	assert.NotNil(t, m.renderTotal)
}

func TestMetricsMiddleware_RecordsSuccess(t *testing.T) {
	fake := newFakeTarget()
	wrapped := MetricsMiddleware(testTargetMetrics)(fake)

	out, err := wrapped.RenderDelayReactionBody(context.Background(), "tick", "out")
	require.NoError(t, err)
	assert.Equal(t, "rendered", out)
}

func TestMetricsMiddleware_RecordsFailure(t *testing.T) {
	fake := newFakeTarget()
	fake.err = errors.New("render error")
	wrapped := MetricsMiddleware(testTargetMetrics)(fake)

	_, err := wrapped.RenderForwardBody(context.Background(), "tick", "out")
	assert.Error(t, err)
}

package infra

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var errFuente = errors.New("source unavailable")

func fallar(context.Context) error  { return errFuente }
func cumplir(context.Context) error { return nil }

func TestCircuitBreaker_AbreTrasFallos(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 2, OpenTimeout: time.Minute})
	ctx := context.Background()

	assert.ErrorIs(t, cb.Execute(ctx, fallar), errFuente)
	assert.Equal(t, CBClosed, cb.State())
	assert.ErrorIs(t, cb.Execute(ctx, fallar), errFuente)
	assert.Equal(t, CBOpen, cb.State())

	llamado := false
	err := cb.Execute(ctx, func(context.Context) error { llamado = true; return nil })
	assert.ErrorIs(t, err, ErrCircuitOpen)
	assert.False(t, llamado)

	snap := cb.Snapshot()
	assert.Equal(t, "open", snap.State)
	assert.Equal(t, 2, snap.Failures)
	assert.Equal(t, errFuente.Error(), snap.LastErrorMsg)
}

func TestCircuitBreaker_SemiAbiertoSeCierra(t *testing.T) {
	ahora := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 1, SuccessThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return ahora }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fallar))
	assert.Equal(t, CBOpen, cb.State())

	ahora = ahora.Add(2 * time.Minute)
	assert.Equal(t, CBHalfOpen, cb.State())
	require.NoError(t, cb.Execute(ctx, cumplir))
	assert.Equal(t, CBClosed, cb.State())
	assert.Empty(t, cb.Snapshot().LastErrorMsg)
}

func TestCircuitBreaker_SondaFallidaReabre(t *testing.T) {
	ahora := time.Date(2026, 1, 1, 10, 0, 0, 0, time.UTC)
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 1, OpenTimeout: time.Minute})
	cb.now = func() time.Time { return ahora }
	ctx := context.Background()

	require.Error(t, cb.Execute(ctx, fallar))
	ahora = ahora.Add(2 * time.Minute)
	require.Error(t, cb.Execute(ctx, fallar))
	assert.Equal(t, CBOpen, cb.State())
}

func TestCircuitBreaker_CancelacionNoCuenta(t *testing.T) {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Name: "test", FailureThreshold: 1})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := cb.Execute(ctx, func(ctx context.Context) error { return ctx.Err() })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, CBClosed, cb.State())
}

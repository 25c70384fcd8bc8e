package observability

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestShutdownManager(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), nil, time.Second)

	var calls atomic.Int32
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		calls.Add(1)
		return nil
	})

	require.NoError(t, sm.Shutdown())
	assert.Equal(t, int32(2), calls.Load())
}

func TestShutdownManagerErrors(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), nil, time.Second)
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		return errors.New("watcher close failed")
	})

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "watcher close failed")
}

func TestShutdownManagerTimeout(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), nil, 20*time.Millisecond)
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		time.Sleep(200 * time.Millisecond)
		return nil
	})

	err := sm.Shutdown()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "timeout")
}

func TestWaitForShutdownOnContext(t *testing.T) {
	sm := NewShutdownManager(NewNopLogger(), nil, time.Second)
	var called atomic.Bool
	sm.RegisterShutdownFunc(func(ctx context.Context) error {
		called.Store(true)
		return nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	require.NoError(t, sm.WaitForShutdown(ctx))
	assert.True(t, called.Load())
}

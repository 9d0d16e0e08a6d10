package concurrent

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCancelsSiblingsOnError(t *testing.T) {
	boom := errors.New("boom")
	var stopped atomic.Bool

	err := Run(context.Background(),
		func(ctx context.Context) error {
			<-ctx.Done()
			stopped.Store(true)
			return ctx.Err()
		},
		func(context.Context) error { return boom },
	)

	require.ErrorIs(t, err, boom)
	assert.True(t, stopped.Load())
}

func TestRunParentCancelIsClean(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()

	err := Run(ctx, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	assert.NoError(t, err)
}

func TestEveryTicksUntilError(t *testing.T) {
	stop := errors.New("stop")
	var calls int
	var total time.Duration

	err := Every(context.Background(), time.Millisecond, func(now, dt time.Duration) error {
		calls++
		total += dt
		assert.GreaterOrEqual(t, now, total-time.Millisecond)
		if calls == 3 {
			return stop
		}
		return nil
	})

	require.ErrorIs(t, err, stop)
	assert.Equal(t, 3, calls)
	assert.Positive(t, total)
}

func TestEveryRejectsZeroInterval(t *testing.T) {
	assert.Error(t, Every(context.Background(), 0, func(time.Duration, time.Duration) error { return nil }))
}

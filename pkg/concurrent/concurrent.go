package concurrent

import (
	"context"
	"errors"
	"time"

	"golang.org/x/sync/errgroup"
)

// Run starts every loop in its own goroutine with a shared context. The first
// loop to return a non-nil error cancels the others; Run waits for all of them
// and returns that error. context.Canceled from a cancelled parent is not
// reported.
func Run(ctx context.Context, loops ...func(context.Context) error) error {
	group, groupCtx := errgroup.WithContext(ctx)
	for _, loop := range loops {
		loop := loop
		group.Go(func() error {
			return loop(groupCtx)
		})
	}

	err := group.Wait()
	if errors.Is(err, context.Canceled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// Every calls fn on each tick of interval until ctx is done or fn fails. The
// elapsed time since the first tick and the time since the previous one are
// passed to fn.
func Every(ctx context.Context, interval time.Duration, fn func(now, dt time.Duration) error) error {
	if interval <= 0 {
		return errors.New("concurrent: interval must be positive")
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	start := time.Now()
	last := start
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case t := <-ticker.C:
			if err := fn(t.Sub(start), t.Sub(last)); err != nil {
				return err
			}
			last = t
		}
	}
}

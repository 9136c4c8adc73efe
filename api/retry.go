package api

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"
)

// retryManager repeats an operation sequentially with a constant pause.
// The error of the final attempt is returned unchanged.
type retryManager struct {
	maxRetries int
	delay      time.Duration
	metrics    *Metrics

	totalRetries atomic.Int64
}

func newRetryManager(maxRetries int, delay time.Duration, metrics *Metrics) *retryManager {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return &retryManager{
		maxRetries: maxRetries,
		delay:      delay,
		metrics:    metrics,
	}
}

// Do runs fn until it succeeds, returns a non-retryable error, the context
// ends, or the retry budget is spent.
func (rm *retryManager) Do(ctx context.Context, op string, fn func(attempt int) error) error {
	var err error
	for attempt := 0; attempt <= rm.maxRetries; attempt++ {
		if attempt > 0 {
			if werr := rm.wait(ctx); werr != nil {
				return err
			}
			rm.totalRetries.Add(1)
			rm.metrics.IncRetries()
			slog.Debug("retrying request",
				slog.String("op", op),
				slog.Int("attempt", attempt+1),
				slog.Any("error", err),
			)
		}

		err = fn(attempt)
		if err == nil || !Retryable(err) || ctx.Err() != nil {
			return err
		}
	}
	return err
}

func (rm *retryManager) wait(ctx context.Context) error {
	if rm.delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(rm.delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// TotalRetries reports how many extra attempts have been issued.
func (rm *retryManager) TotalRetries() int {
	return int(rm.totalRetries.Load())
}

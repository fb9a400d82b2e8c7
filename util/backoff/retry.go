package backoff

import (
	"context"
	"time"
)

type (
	// Operation is a unit of work that may be retried.
	Operation func(ctx context.Context) error

	// IsRetriableFunc reports whether err is worth another attempt.
	IsRetriableFunc func(err error) bool
)

// Retry runs op until it succeeds, returns a non-retriable error, the policy
// is exhausted or ctx is done. The last operation error is returned when the
// policy gives up. A nil isRetriable retries every error.
func Retry(ctx context.Context, op Operation, policy RetryPolicy, isRetriable IsRetriableFunc) error {
	if isRetriable == nil {
		isRetriable = func(error) bool { return true }
	}
	retrier := NewRetrier(policy)

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := op(ctx)
		if err == nil {
			return nil
		}
		if !isRetriable(err) {
			return err
		}

		interval, retryErr := retrier.Next(err)
		if retryErr != nil {
			return err
		}

		if interval > 0 {
			timer := time.NewTimer(interval)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
	}
}

// Package backoff provides bounded retry helpers.
package backoff

import (
	"errors"
	"sync"
	"time"
)

// ErrRetriesExhausted is returned by a policy once no further attempt is allowed.
var ErrRetriesExhausted = errors.New("retries exhausted")

// RetryPolicy decides how long to wait before the next attempt.
type RetryPolicy interface {
	// ComputeNextInterval returns the wait before retry number retryCount
	// (zero based), or ErrRetriesExhausted.
	ComputeNextInterval(retryCount int, err error) (time.Duration, error)
}

// LinearBackoffPolicy waits Step after the first attempt, 2*Step after the
// second, and so on.
type LinearBackoffPolicy struct {
	Step        time.Duration
	MaxInterval time.Duration // zero means uncapped
	MaxAttempts int           // total attempts including the first; zero means unlimited
}

// NewLinearBackoffPolicy builds a linear policy allowing maxAttempts attempts in total.
func NewLinearBackoffPolicy(step time.Duration, maxAttempts int) *LinearBackoffPolicy {
	return &LinearBackoffPolicy{Step: step, MaxAttempts: maxAttempts}
}

// ComputeNextInterval implements RetryPolicy.
func (p *LinearBackoffPolicy) ComputeNextInterval(retryCount int, _ error) (time.Duration, error) {
	attempt := retryCount + 1
	if p.MaxAttempts > 0 && attempt >= p.MaxAttempts {
		return 0, ErrRetriesExhausted
	}
	interval := time.Duration(attempt) * p.Step
	if p.MaxInterval > 0 && interval > p.MaxInterval {
		interval = p.MaxInterval
	}
	return interval, nil
}

// Retrier tracks the attempt count for a single retry loop.
type Retrier struct {
	policy     RetryPolicy
	retryCount int
	mu         sync.Mutex
}

// NewRetrier creates a Retrier for the given policy.
func NewRetrier(policy RetryPolicy) *Retrier {
	return &Retrier{policy: policy}
}

// Next returns the wait before the next attempt and advances the count.
func (r *Retrier) Next(err error) (time.Duration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	interval, computeErr := r.policy.ComputeNextInterval(r.retryCount, err)
	if computeErr != nil {
		return 0, computeErr
	}
	r.retryCount++
	return interval, nil
}

// Attempts returns how many retries have been granted so far.
func (r *Retrier) Attempts() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.retryCount
}

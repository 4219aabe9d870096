// Package retry bounds calls to external collaborators with a per-attempt timeout
// and retries attempts that time out using exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// ErrTimeout indicates every attempt exceeded its per-attempt timeout.
var ErrTimeout = errors.New("collaborator timeout")

// Policy configures attempt timeouts and backoff between retries.
type Policy struct {
	Timeout         time.Duration
	MaxRetries      int
	InitialInterval time.Duration
	MaxInterval     time.Duration
}

func (p Policy) backoff(ctx context.Context) backoff.BackOff {
	eb := backoff.NewExponentialBackOff()
	if p.InitialInterval > 0 {
		eb.InitialInterval = p.InitialInterval
	}
	if p.MaxInterval > 0 {
		eb.MaxInterval = p.MaxInterval
	}
	eb.MaxElapsedTime = 0

	retries := p.MaxRetries
	if retries < 0 {
		retries = 0
	}

	return backoff.WithContext(backoff.WithMaxRetries(eb, uint64(retries)), ctx)
}

// Do calls fn until it succeeds, fails with a non-timeout error, or the retry budget
// is spent. Only attempts that exceed Policy.Timeout are retried. When the budget is
// spent on timeouts the returned error wraps ErrTimeout. Cancellation of ctx stops
// retrying and returns the context error.
func Do[T any](ctx context.Context, p Policy, fn func(ctx context.Context) (T, error)) (T, error) {
	var (
		result   T
		attempts int
	)

	op := func() error {
		attempts++

		actx := ctx
		cancel := context.CancelFunc(func() {})
		if p.Timeout > 0 {
			actx, cancel = context.WithTimeout(ctx, p.Timeout)
		}
		defer cancel()

		v, err := fn(actx)
		if err == nil {
			result = v
			return nil
		}

		if ctx.Err() != nil {
			return backoff.Permanent(ctx.Err())
		}

		if errors.Is(err, context.DeadlineExceeded) || errors.Is(actx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%w: attempt %d exceeded %s", ErrTimeout, attempts, p.Timeout)
		}

		return backoff.Permanent(err)
	}

	if err := backoff.Retry(op, p.backoff(ctx)); err != nil {
		var zero T
		return zero, err
	}

	return result, nil
}

package gateway

import (
	"context"
	"fmt"
	"time"

	"mindsoothe-backend/internal/models"
)

// DefaultMaxWait is how long an ask may queue for a free provider slot.
const DefaultMaxWait = 5 * time.Minute

// Limiter bounds the number of provider calls in flight and how long each may
// take.
type Limiter struct {
	next     Gateway
	rateChan chan struct{} // Token bucket
	timeout  time.Duration
	maxWait  time.Duration
}

func NewLimiter(next Gateway, concurrentReqs int, timeout time.Duration) *Limiter {
	if concurrentReqs <= 0 {
		concurrentReqs = 1
	}

	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	return &Limiter{
		next:     next,
		rateChan: rateChan,
		timeout:  timeout,
		maxWait:  DefaultMaxWait,
	}
}

func (l *Limiter) Name() string { return l.next.Name() }

// Budget is the longest a Complete call can take, counting the wait for a
// slot. Zero means unbounded.
func (l *Limiter) Budget() time.Duration {
	if l.timeout <= 0 {
		return 0
	}
	return l.maxWait + l.timeout
}

func (l *Limiter) Complete(ctx context.Context, messages []models.Message) (string, error) {
	if err := l.acquireRate(ctx); err != nil {
		return "", err
	}
	defer l.releaseRate()

	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	return l.next.Complete(ctx, messages)
}

// acquireRate blocks until a rate slot is available
func (l *Limiter) acquireRate(ctx context.Context) error {
	timer := time.NewTimer(l.maxWait)
	defer timer.Stop()

	select {
	case <-l.rateChan:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return fmt.Errorf("timeout waiting for %s rate slot", l.next.Name())
	}
}

func (l *Limiter) releaseRate() {
	l.rateChan <- struct{}{}
}

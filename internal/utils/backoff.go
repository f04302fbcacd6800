package utils

import (
	"context"
	"errors"
	"math/rand"
	"time"
)

// MaxDelay caps a single wait before jitter.
const MaxDelay = 30 * time.Second

type Backoff struct {
	base       time.Duration
	maxRetries int
}

func NewBackoff(base time.Duration, maxRetries int) Backoff {
	if maxRetries < 0 {
		maxRetries = 0
	}
	return Backoff{base: base, maxRetries: maxRetries}
}

type permanent struct{ err error }

func (p permanent) Error() string { return p.err.Error() }
func (p permanent) Unwrap() error { return p.err }

// Permanent marks err as not worth retrying.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanent{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the retries run
// out or ctx is done. Waits grow exponentially with up to 50% jitter.
func (b Backoff) Do(ctx context.Context, fn func(i int) error) error {
	var err error
	for i := 0; i <= b.maxRetries; i++ {
		err = fn(i)
		if err == nil {
			return nil
		}
		var p permanent
		if errors.As(err, &p) {
			return p.err
		}
		if i == b.maxRetries {
			break
		}
		timer := time.NewTimer(b.delay(i))
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}
	}
	return err
}

// delay is base doubled i times, capped at MaxDelay, plus up to 50% jitter.
func (b Backoff) delay(i int) time.Duration {
	if b.base <= 0 {
		return 0
	}
	t := b.base
	for n := 0; n < i && t < MaxDelay; n++ {
		t *= 2
	}
	if t > MaxDelay {
		t = MaxDelay
	}
	return t + time.Duration(rand.Int63n(int64(t)/2+1))
}

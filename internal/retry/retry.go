// Package retry runs remote operations with a per-attempt timeout and
// exponential backoff.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrSnakeDoc/atal/internal/domain"
	"github.com/MrSnakeDoc/atal/internal/logger"
)

const (
	DefaultMaxAttempts = 3
	DefaultBaseDelay   = time.Second
	DefaultTimeout     = 10 * time.Second
)

// ErrTimeout is the failure recorded for an attempt that outlived Policy.Timeout.
var ErrTimeout = errors.New("operation timed out")

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// Policy controls how an operation is retried.
type Policy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	Timeout     time.Duration

	// Sleep replaces the backoff wait. Tests use it to record delays.
	Sleep SleepFunc

	// BeforeAttempt runs before every attempt.
	BeforeAttempt func()

	// Name is used in log lines.
	Name   string
	Logger logger.Logger
}

// DefaultPolicy returns 3 attempts, 1s base delay and a 10s attempt timeout.
func DefaultPolicy() Policy {
	return Policy{
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		Timeout:     DefaultTimeout,
	}
}

// WithName returns a copy of p labelled for logging.
func (p Policy) WithName(name string) Policy {
	p.Name = name
	return p
}

func (p Policy) normalized() Policy {
	if p.MaxAttempts < 1 {
		p.MaxAttempts = DefaultMaxAttempts
	}
	if p.BaseDelay < 0 {
		p.BaseDelay = 0
	}
	if p.Timeout <= 0 {
		p.Timeout = DefaultTimeout
	}
	if p.Sleep == nil {
		p.Sleep = sleepCtx
	}
	if p.Logger == nil {
		p.Logger = logger.NewNop()
	}
	return p
}

// Delay returns the wait after the given zero-based failed attempt:
// BaseDelay * 2^attempt.
func (p Policy) Delay(attempt int) time.Duration {
	return p.BaseDelay << uint(attempt)
}

// Permanent reports whether err must not be retried.
func Permanent(err error) bool {
	return domain.IsConfiguration(err) ||
		domain.IsNotFound(err) ||
		errors.Is(err, domain.ErrValidation)
}

// Do runs op until it succeeds, fails permanently or runs out of attempts.
// The last error is returned on exhaustion.
func Do[T any](ctx context.Context, p Policy, op func(ctx context.Context) (T, error)) (T, error) {
	p = p.normalized()

	var zero T
	var lastErr error

	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		if p.BeforeAttempt != nil {
			p.BeforeAttempt()
		}

		v, err := runAttempt(ctx, p.Timeout, op)
		if err == nil {
			if attempt > 0 {
				p.Logger.Info("remote operation succeeded after retry",
					logger.String("op", p.Name),
					logger.Int("attempts", attempt+1))
			}
			return v, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return zero, ctx.Err()
		}
		if Permanent(err) {
			return zero, err
		}
		if attempt == p.MaxAttempts-1 {
			break
		}

		wait := p.Delay(attempt)
		p.Logger.Warn("remote operation failed, retrying",
			logger.String("op", p.Name),
			logger.Int("attempt", attempt+1),
			logger.Duration("next_retry_in", wait),
			logger.Error(err))

		if err := p.Sleep(ctx, wait); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("%d attempts failed: %w", p.MaxAttempts, lastErr)
}

type outcome[T any] struct {
	v   T
	err error
}

// runAttempt races op against timeout. A late result is discarded.
func runAttempt[T any](ctx context.Context, timeout time.Duration, op func(ctx context.Context) (T, error)) (T, error) {
	actx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	done := make(chan outcome[T], 1)
	go func() {
		v, err := op(actx)
		done <- outcome[T]{v: v, err: err}
	}()

	var zero T
	select {
	case o := <-done:
		if o.err != nil && errors.Is(o.err, context.DeadlineExceeded) && ctx.Err() == nil {
			return zero, ErrTimeout
		}
		return o.v, o.err
	case <-actx.Done():
		if err := ctx.Err(); err != nil {
			return zero, err
		}
		return zero, ErrTimeout
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

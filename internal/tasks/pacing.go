package tasks

import (
	"context"
	"time"

	"github.com/desertthunder/skylist/internal/shared"
	"golang.org/x/time/rate"
)

// Outcome classifies the event a [Pacer] is reacting to.
type Outcome int

const (
	// OutcomeSuccess follows a successful membership write.
	OutcomeSuccess Outcome = iota
	// OutcomeFailure follows a failed membership write, likely rate limited.
	OutcomeFailure
	// OutcomePage follows a fetched membership page.
	OutcomePage
)

// Pacer decides how long to wait before the next request given the outcome
// of the previous one. Implementations must honor context cancellation.
type Pacer interface {
	Wait(ctx context.Context, outcome Outcome) error
}

// FixedPacer waits a fixed interval per outcome: a short delay after
// successful writes, a longer one after failures, and a courtesy delay
// between membership pages.
type FixedPacer struct {
	Success time.Duration
	Failure time.Duration
	Page    time.Duration
}

// NewFixedPacer builds a FixedPacer from config, falling back to the
// defaults (200ms / 1s / 100ms) for non-positive values.
func NewFixedPacer(cfg shared.PacingConfig) *FixedPacer {
	p := &FixedPacer{
		Success: time.Duration(cfg.WriteDelayMS) * time.Millisecond,
		Failure: time.Duration(cfg.FailureDelayMS) * time.Millisecond,
		Page:    time.Duration(cfg.PageDelayMS) * time.Millisecond,
	}
	if p.Success <= 0 {
		p.Success = 200 * time.Millisecond
	}
	if p.Failure <= 0 {
		p.Failure = time.Second
	}
	if p.Page <= 0 {
		p.Page = 100 * time.Millisecond
	}
	return p
}

// Wait sleeps for the configured interval or until the context is cancelled.
func (p *FixedPacer) Wait(ctx context.Context, outcome Outcome) error {
	var d time.Duration
	switch outcome {
	case OutcomeFailure:
		d = p.Failure
	case OutcomePage:
		d = p.Page
	default:
		d = p.Success
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

// LimiterPacer paces successful writes and page fetches with a token bucket
// and backs off a fixed interval after failures.
type LimiterPacer struct {
	limiter *rate.Limiter
	failure time.Duration
}

// NewLimiterPacer allows writesPerSecond sustained throughput with a burst
// of one, pausing failureDelay after each failed write.
func NewLimiterPacer(writesPerSecond float64, failureDelay time.Duration) *LimiterPacer {
	if writesPerSecond <= 0 {
		writesPerSecond = 5.0
	}
	if failureDelay <= 0 {
		failureDelay = time.Second
	}
	return &LimiterPacer{
		limiter: rate.NewLimiter(rate.Limit(writesPerSecond), 1),
		failure: failureDelay,
	}
}

// Wait blocks until the limiter grants a token; failures first sit out the
// backoff interval.
func (p *LimiterPacer) Wait(ctx context.Context, outcome Outcome) error {
	if outcome == OutcomeFailure {
		timer := time.NewTimer(p.failure)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return p.limiter.Wait(ctx)
}

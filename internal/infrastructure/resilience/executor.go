// Package resilience bounds the blast radius of the module's two flaky
// upstreams: the classification service and the import queue. Callers hand
// Execute a named upstream operation and an error classifier; the executor
// retries what the classifier deems transient and keeps one circuit breaker
// per operation so a dead upstream fails fast instead of stacking timeouts.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/sony/gobreaker/v2"
)

// Verdict is a classifier's judgement of one failed upstream call.
type Verdict struct {
	// Retry means the failure is transient and another attempt may succeed.
	Retry bool
	// Penalty means the failure counts toward opening the breaker. Caller
	// mistakes (bad input, cancelled context) carry no penalty.
	Penalty bool
}

// Classifier maps an upstream error to a Verdict. A nil error never reaches
// the classifier.
type Classifier func(err error) Verdict

type Executor struct {
	policy Policy
	logger *slog.Logger

	mu       sync.Mutex
	breakers map[string]*gobreaker.CircuitBreaker[any]
}

func NewExecutor(policy Policy, logger *slog.Logger) *Executor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Executor{
		policy:   policy.normalize(),
		logger:   logger,
		breakers: make(map[string]*gobreaker.CircuitBreaker[any]),
	}
}

// Execute runs one upstream call under the executor's policy. The operation
// name keys the circuit breaker, so "classifier.resolve" and
// "classifier.candidates" trip independently.
func (e *Executor) Execute(
	ctx context.Context,
	operation string,
	call func(context.Context) error,
	classify Classifier,
) error {
	if call == nil {
		return fmt.Errorf("resilience: nil upstream call for %q", operation)
	}
	op := strings.TrimSpace(operation)
	if op == "" {
		op = "unnamed"
	}
	if classify == nil {
		classify = func(error) Verdict { return Verdict{Penalty: true} }
	}

	if !e.policy.BreakerEnabled {
		return e.callWithRetry(ctx, op, call, classify)
	}

	_, err := e.breakerFor(op, classify).Execute(func() (any, error) {
		return nil, e.callWithRetry(ctx, op, call, classify)
	})
	return err
}

func (e *Executor) callWithRetry(
	ctx context.Context,
	operation string,
	call func(context.Context) error,
	classify Classifier,
) error {
	backoff := e.policy.InitialBackoff

	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		err := call(ctx)
		if err == nil {
			return nil
		}
		if verdict := classify(err); !verdict.Retry || attempt >= e.policy.MaxAttempts {
			return err
		}

		e.logger.Warn("upstream_retry",
			"operation", operation,
			"attempt", attempt,
			"max_attempts", e.policy.MaxAttempts,
			"backoff_ms", backoff.Milliseconds(),
			"error", err,
		)

		timer := time.NewTimer(backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return err
		case <-timer.C:
		}

		backoff = time.Duration(float64(backoff) * e.policy.BackoffGrowth)
		if backoff > e.policy.MaxBackoff {
			backoff = e.policy.MaxBackoff
		}
	}
}

func (e *Executor) breakerFor(operation string, classify Classifier) *gobreaker.CircuitBreaker[any] {
	e.mu.Lock()
	defer e.mu.Unlock()

	if breaker, ok := e.breakers[operation]; ok {
		return breaker
	}

	breaker := gobreaker.NewCircuitBreaker[any](gobreaker.Settings{
		Name:        operation,
		MaxRequests: e.policy.BreakerProbeCalls,
		Timeout:     e.policy.BreakerCooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < e.policy.BreakerMinSamples {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= e.policy.BreakerTripRatio
		},
		IsSuccessful: func(err error) bool {
			return err == nil || !classify(err).Penalty
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			e.logger.Warn("upstream_breaker_state",
				"operation", name, "from", from.String(), "to", to.String())
		},
	})
	e.breakers[operation] = breaker
	return breaker
}

// IsCircuitOpen reports whether err came from an open or saturated breaker
// rather than from the upstream itself.
func IsCircuitOpen(err error) bool {
	return errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests)
}

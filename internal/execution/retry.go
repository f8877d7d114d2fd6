// Package execution drives reviewer invocations: the adaptive retry
// controller that changes how it asks on each attempt, and the degradation
// pipeline that cascades through quality tiers until something succeeds.
package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/sevigo/reviewkit/internal/core"
)

// maxBackoff caps the delay between retry attempts.
const maxBackoff = 30 * time.Second

// raisedTemperature is used after a low-quality response to introduce variety.
const raisedTemperature = 0.3

// Operation is one reviewer invocation under a given configuration.
type Operation func(ctx context.Context, cfg core.ReviewerConfig) (*core.ReviewPayload, error)

// Validator judges whether a successful payload is actually usable. A payload
// that fails validation is treated as a low_quality_output failure.
type Validator func(*core.ReviewPayload) bool

// AttemptRecord captures one retry attempt for observability. Records are
// append-only; they are never mutated after creation.
type AttemptRecord struct {
	Number     int
	Model      string
	Elapsed    time.Duration
	Failure    core.FailureKind // empty if the attempt succeeded
	Adaptation string           // what changed relative to the previous attempt
}

// Outcome is a successful retry run: the payload plus every attempt it cost.
type Outcome struct {
	Payload  *core.ReviewPayload
	Attempts []AttemptRecord
}

// TotalElapsed sums the latency of all attempts.
func (o *Outcome) TotalElapsed() time.Duration {
	var total time.Duration
	for _, a := range o.Attempts {
		total += a.Elapsed
	}
	return total
}

// WasRetried reports whether more than one attempt was needed.
func (o *Outcome) WasRetried() bool {
	return len(o.Attempts) > 1
}

// ExhaustedError is the terminal failure after every attempt was consumed.
// It carries the full attempt list so callers see the cost of the run, and
// the last underlying error observed.
type ExhaustedError struct {
	Attempts []AttemptRecord
	LastErr  error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("all %d attempts failed, last error: %v", len(e.Attempts), e.LastErr)
}

func (e *ExhaustedError) Unwrap() error { return e.LastErr }

// Saw reports whether any attempt failed with the given classification.
func (e *ExhaustedError) Saw(kind core.FailureKind) bool {
	for _, a := range e.Attempts {
		if a.Failure == kind {
			return true
		}
	}
	return false
}

// Controller wraps one logical reviewer invocation with adaptive retries.
// Adaptation is derived fresh before each attempt from the accumulated
// failure set, never by mutating a shared configuration.
type Controller struct {
	op            Operation
	base          core.ReviewerConfig
	fallbackModel string
	maxAttempts   int
	validator     Validator
	logger        *slog.Logger

	// sleep is swapped out by tests to observe backoff without waiting.
	sleep func(time.Duration)
}

// NewController builds a retry controller. fallbackModel is the cheaper tier
// adopted after a rate limit; it must come from the caller's configuration,
// the controller never hardcodes model identifiers.
func NewController(op Operation, base core.ReviewerConfig, fallbackModel string, maxAttempts int, validator Validator, logger *slog.Logger) *Controller {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	return &Controller{
		op:            op,
		base:          base,
		fallbackModel: fallbackModel,
		maxAttempts:   maxAttempts,
		validator:     validator,
		logger:        logger,
		sleep:         time.Sleep,
	}
}

// deriveConfig produces the configuration for the next attempt from the
// failures accumulated so far. It is pure: the same failure set and base
// always yield the same configuration, and adaptations are cumulative.
func deriveConfig(failures []core.FailureKind, base core.ReviewerConfig, fallbackModel string) core.ReviewerConfig {
	cfg := base

	for _, kind := range failures {
		switch kind {
		case core.FailureInputTooLarge:
			cfg.PreferChunked = true
		case core.FailureLowQuality:
			cfg.Temperature = raisedTemperature
		case core.FailureRateLimited:
			if fallbackModel != "" && cfg.Model != fallbackModel {
				cfg.Model = fallbackModel
			}
		}
		// provider_error and timed_out only consume an attempt.
	}
	return cfg
}

// describeAdaptation summarises how cfg differs from the base configuration.
func describeAdaptation(cfg, base core.ReviewerConfig, failures []core.FailureKind) string {
	if len(failures) == 0 {
		return ""
	}
	var parts []string
	if cfg.PreferChunked && !base.PreferChunked {
		parts = append(parts, "prefer_chunked")
	}
	if cfg.Temperature != base.Temperature {
		parts = append(parts, fmt.Sprintf("temp=%.1f", cfg.Temperature))
	}
	if cfg.Model != base.Model {
		parts = append(parts, "model_downgrade")
	}
	return strings.Join(parts, ", ")
}

// backoffDelay returns min(2^attempt, 30) seconds.
func backoffDelay(attempt int) time.Duration {
	d := time.Duration(1<<uint(attempt)) * time.Second
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// Run executes the operation until it produces a validated payload or the
// attempt budget is exhausted. Authentication failures propagate immediately
// without consuming an attempt record; every other failure is classified,
// recorded, and absorbed into the next adaptation.
func (c *Controller) Run(ctx context.Context) (*Outcome, error) {
	var (
		attempts []AttemptRecord
		failures []core.FailureKind
		lastErr  error
	)

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		cfg := deriveConfig(failures, c.base, c.fallbackModel)
		adaptation := describeAdaptation(cfg, c.base, failures)

		start := time.Now()
		payload, err := c.op(ctx, cfg)
		elapsed := time.Since(start)

		if err == nil {
			if c.validator == nil || c.validator(payload) {
				attempts = append(attempts, AttemptRecord{
					Number:     attempt + 1,
					Model:      cfg.Model,
					Elapsed:    elapsed,
					Adaptation: adaptation,
				})
				return &Outcome{Payload: payload, Attempts: attempts}, nil
			}

			// Successful call, unusable payload.
			err = core.NewReviewError(core.FailureLowQuality, errors.New("response failed quality validation"))
		}

		if core.IsAuthError(err) {
			return nil, err
		}

		kind := core.ClassifyError(err)
		failures = append(failures, kind)
		lastErr = err
		attempts = append(attempts, AttemptRecord{
			Number:     attempt + 1,
			Model:      cfg.Model,
			Elapsed:    elapsed,
			Failure:    kind,
			Adaptation: adaptation,
		})

		if attempt < c.maxAttempts-1 {
			delay := backoffDelay(attempt + 1)
			c.logger.Warn("review attempt failed, backing off",
				"attempt", attempt+1,
				"max_attempts", c.maxAttempts,
				"failure", kind,
				"backoff", delay,
			)
			c.sleep(delay)
		}
	}

	return nil, &ExhaustedError{Attempts: attempts, LastErr: lastErr}
}

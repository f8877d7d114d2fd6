// Package gate provides the timeout circuit breaker that keeps slow or
// crashing deterministic checks from blocking a review run.
package gate

import (
	"context"
	"fmt"
	"time"

	"github.com/sevigo/reviewkit/internal/core"
)

// Status is the breaker's verdict on a check.
type Status string

const (
	StatusPassed  Status = "passed"
	StatusFailed  Status = "failed"
	StatusSkipped Status = "skipped"
)

// CheckFunc runs one deterministic check. The context carries the breaker's
// deadline; well-behaved checks stop early when it expires.
type CheckFunc func(ctx context.Context) (core.GateResult, error)

// Result is the outcome of running a check through the breaker. A skipped
// status means "no signal" and must never be treated as a failure by callers.
type Result struct {
	Status  Status
	Gate    core.GateResult
	Elapsed time.Duration
	Reason  string
}

// Passed reports whether the check completed and passed. It makes Result
// usable wherever a core.GateResult is expected.
func (r Result) Passed() bool { return r.Status == StatusPassed }

// Run executes check with a hard wall-clock timeout. A check that finishes in
// time maps to passed or failed from its own verdict; one that overruns is
// abandoned and reported as skipped, as is one that errors or panics. The
// abandoned worker's eventual result is discarded, never joined.
func Run(ctx context.Context, check CheckFunc, timeout time.Duration) Result {
	start := time.Now()

	cctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	type checkOutcome struct {
		gate core.GateResult
		err  error
	}

	// Buffered so the worker can always complete and be collected, even
	// after the breaker has stopped listening.
	done := make(chan checkOutcome, 1)

	go func() {
		defer func() {
			if r := recover(); r != nil {
				done <- checkOutcome{err: fmt.Errorf("check panicked: %v", r)}
			}
		}()
		gate, err := check(cctx)
		done <- checkOutcome{gate: gate, err: err}
	}()

	select {
	case out := <-done:
		elapsed := time.Since(start)
		if out.err != nil {
			return Result{Status: StatusSkipped, Elapsed: elapsed, Reason: out.err.Error()}
		}
		status := StatusFailed
		if out.gate != nil && out.gate.Passed() {
			status = StatusPassed
		}
		return Result{Status: status, Gate: out.gate, Elapsed: elapsed}

	case <-cctx.Done():
		elapsed := time.Since(start)
		reason := fmt.Sprintf("check timed out after %s", timeout)
		if ctx.Err() != nil {
			reason = ctx.Err().Error()
		}
		return Result{Status: StatusSkipped, Elapsed: elapsed, Reason: reason}
	}
}

// RunAll runs every named check through the breaker and returns the results
// keyed by name. The returned map satisfies the degradation pipeline's gate
// collector contract; checks run sequentially so each gets the full timeout.
func RunAll(ctx context.Context, checks map[string]CheckFunc, timeout time.Duration) map[string]core.GateResult {
	results := make(map[string]core.GateResult, len(checks))
	for name, check := range checks {
		results[name] = Run(ctx, check, timeout)
	}
	return results
}

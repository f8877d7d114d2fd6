package execution

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/sevigo/reviewkit/internal/core"
	"github.com/sevigo/reviewkit/internal/review"
)

const (
	fullMaxAttempts    = 3
	reducedMaxAttempts = 2
	chunkMaxAttempts   = 2

	// minSummaryLen is the quality floor: a review whose summary is this
	// short or shorter is treated as low-quality output.
	minSummaryLen = 20

	defaultChunkWorkers = 4

	gatesOnlyMessage = "LLM review unavailable; showing gate results only"
	minimalMessage   = "review infrastructure unavailable, retry later"
)

// pipelineState enumerates the degradation state machine. States are visited
// in strictly descending quality order and never revisited.
type pipelineState int

const (
	stateFull pipelineState = iota
	stateChunked
	stateReduced
	stateGatesOnly
	stateMinimal
)

func (s pipelineState) String() string {
	switch s {
	case stateFull:
		return "full"
	case stateChunked:
		return "chunked"
	case stateReduced:
		return "reduced"
	case stateGatesOnly:
		return "gates_only"
	default:
		return "minimal"
	}
}

// PipelineConfig carries the model tiers and chunking limits for one run.
// Both configurations come from the caller; the pipeline never hardcodes
// provider-specific identifiers.
type PipelineConfig struct {
	Full    core.ReviewerConfig
	Reduced core.ReviewerConfig

	// ChunkMaxLines bounds chunk size when the input has to be split.
	ChunkMaxLines int

	// ChunkWorkers bounds how many chunk reviews run concurrently.
	ChunkWorkers int
}

// GateCollector supplies the already-computed deterministic check results
// relayed at the gates_only level.
type GateCollector func() (map[string]core.GateResult, error)

// Pipeline cascades a review through quality tiers: a full-strength attempt,
// a chunked attempt when the input was too large, a reduced-strength attempt,
// and finally the caller's gate results or a terse unavailability notice.
// Execute always returns a result; the only error that escapes is an
// authentication failure.
type Pipeline struct {
	reviewer core.Reviewer
	cfg      PipelineConfig
	gates    GateCollector
	logger   *slog.Logger

	// sleep is passed through to retry controllers; tests replace it.
	sleep func(time.Duration)
}

// NewPipeline builds a pipeline over the given reviewer. gates holds the
// deterministic check results computed by the caller before this run; the
// pipeline never invokes gates itself.
func NewPipeline(reviewer core.Reviewer, cfg PipelineConfig, gates map[string]core.GateResult, logger *slog.Logger) *Pipeline {
	if cfg.ChunkMaxLines <= 0 {
		cfg.ChunkMaxLines = review.DefaultMaxLines
	}
	if cfg.ChunkWorkers <= 0 {
		cfg.ChunkWorkers = defaultChunkWorkers
	}
	return &Pipeline{
		reviewer: reviewer,
		cfg:      cfg,
		gates: func() (map[string]core.GateResult, error) {
			return gates, nil
		},
		logger: logger,
		sleep:  time.Sleep,
	}
}

// SetGateCollector replaces the static gate-result map with a collector
// function. A collector that fails or panics drops the run to minimal.
func (p *Pipeline) SetGateCollector(fn GateCollector) {
	p.gates = fn
}

// summaryValidator rejects payloads whose summary is too short to be useful.
func summaryValidator(payload *core.ReviewPayload) bool {
	return payload != nil && len(payload.Summary) > minSummaryLen
}

// Execute runs the degradation state machine for one input. It blocks until
// a result is ready and returns exactly once; a non-nil error is always an
// authentication failure.
func (p *Pipeline) Execute(ctx context.Context, input core.ReviewInput) (*core.DegradationResult, error) {
	var errs []string
	st := stateFull

	for {
		switch st {
		case stateFull:
			outcome, err := p.runReview(ctx, input, p.cfg.Full, fullMaxAttempts)
			if err == nil {
				p.logger.Info("review succeeded", "level", core.LevelFull, "attempts", len(outcome.Attempts))
				return &core.DegradationResult{
					Level:  core.LevelFull,
					Review: outcome.Payload,
					Errors: errs,
				}, nil
			}
			if core.IsAuthError(err) {
				return nil, err
			}
			errs = append(errs, levelError(st, err))

			var ex *ExhaustedError
			if errors.As(err, &ex) && ex.Saw(core.FailureInputTooLarge) {
				st = stateChunked
			} else {
				st = stateReduced
			}

		case stateChunked:
			payload, err := p.runChunked(ctx, input)
			if err == nil {
				// Chunking is a transparent strategy for reaching full
				// quality, not a distinct reported tier.
				p.logger.Info("review succeeded", "level", core.LevelFull, "chunked", true)
				return &core.DegradationResult{
					Level:  core.LevelFull,
					Review: payload,
					Errors: errs,
				}, nil
			}
			if core.IsAuthError(err) {
				return nil, err
			}
			errs = append(errs, levelError(st, err))
			st = stateReduced

		case stateReduced:
			outcome, err := p.runReview(ctx, input, p.cfg.Reduced, reducedMaxAttempts)
			if err == nil {
				p.logger.Info("review succeeded", "level", core.LevelReduced, "attempts", len(outcome.Attempts))
				return &core.DegradationResult{
					Level:  core.LevelReduced,
					Review: outcome.Payload,
					Errors: errs,
				}, nil
			}
			if core.IsAuthError(err) {
				return nil, err
			}
			errs = append(errs, levelError(st, err))
			st = stateGatesOnly

		case stateGatesOnly:
			gates, err := p.collectGates()
			if err != nil {
				errs = append(errs, levelError(st, err))
				st = stateMinimal
				continue
			}
			p.logger.Warn("review degraded to gate results only", "errors", len(errs))
			return &core.DegradationResult{
				Level:       core.LevelGatesOnly,
				GateResults: gates,
				Message:     gatesOnlyMessage,
				Errors:      errs,
			}, nil

		case stateMinimal:
			p.logger.Error("review degraded to minimal notice", "errors", len(errs))
			return &core.DegradationResult{
				Level:   core.LevelMinimal,
				Message: minimalMessage,
				Errors:  errs,
			}, nil
		}
	}
}

// runReview drives one retry-controller run against the reviewer.
func (p *Pipeline) runReview(ctx context.Context, input core.ReviewInput, base core.ReviewerConfig, maxAttempts int) (*Outcome, error) {
	op := func(ctx context.Context, cfg core.ReviewerConfig) (*core.ReviewPayload, error) {
		return p.reviewer.Review(ctx, input, cfg)
	}
	ctrl := NewController(op, base, p.cfg.Reduced.Model, maxAttempts, summaryValidator, p.logger)
	ctrl.sleep = p.sleep
	return ctrl.Run(ctx)
}

// runChunked splits the input, reviews every chunk independently through the
// retry controller, and merges the results. Chunk reviews may run
// concurrently, but payloads are reassembled in original chunk order before
// merging so fingerprint deduplication stays deterministic.
func (p *Pipeline) runChunked(ctx context.Context, input core.ReviewInput) (*core.ReviewPayload, error) {
	chunks := review.ChunkDiff(input.Diff, review.StrategyAuto, p.cfg.ChunkMaxLines)
	if len(chunks) == 0 {
		return nil, fmt.Errorf("input produced no reviewable chunks")
	}

	p.logger.Info("reviewing input in chunks", "chunks", len(chunks), "max_lines", p.cfg.ChunkMaxLines)

	payloads := make([]*core.ReviewPayload, len(chunks))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.cfg.ChunkWorkers)

	for i, chunk := range chunks {
		i, chunk := i, chunk
		g.Go(func() error {
			sub := core.ReviewInput{
				Diff:               chunk.Content,
				Description:        input.Description,
				FocusAreas:         input.FocusAreas,
				CustomInstructions: input.CustomInstructions,
			}
			outcome, err := p.runReview(gctx, sub, p.cfg.Full, chunkMaxAttempts)
			if err != nil {
				if core.IsAuthError(err) {
					return err
				}
				return fmt.Errorf("chunk %d/%d (%s): %w", chunk.Index+1, chunk.Total, chunk.FilePath, err)
			}
			payloads[i] = outcome.Payload
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return review.MergePayloads(payloads), nil
}

// collectGates invokes the gate collector, converting a panic into an error
// so a misbehaving collector degrades the run instead of crashing it.
func (p *Pipeline) collectGates() (gates map[string]core.GateResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			gates = nil
			err = fmt.Errorf("gate collection panicked: %v", r)
		}
	}()
	return p.gates()
}

// levelError formats one failed-level entry for the result's error list.
func levelError(st pipelineState, err error) string {
	return fmt.Sprintf("%s: %v", st, err)
}

package jobs

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/sevigo/reviewkit/internal/config"
	"github.com/sevigo/reviewkit/internal/core"
	"github.com/sevigo/reviewkit/internal/execution"
	"github.com/sevigo/reviewkit/internal/llm"
)

// ReviewJob is a background job that runs one resilient review and hands the
// outcome to a result handler.
type ReviewJob struct {
	cfg      *config.Config
	reviewer core.Reviewer
	handler  core.ResultHandler
	logger   *slog.Logger
}

// NewReviewJob creates a new ReviewJob with config, reviewer, result handler,
// and logger.
func NewReviewJob(cfg *config.Config, reviewer core.Reviewer, handler core.ResultHandler, logger *slog.Logger) core.Job {
	if cfg == nil {
		panic("config cannot be nil")
	}
	if reviewer == nil {
		panic("reviewer cannot be nil")
	}
	if handler == nil {
		panic("result handler cannot be nil")
	}
	if logger == nil {
		panic("logger cannot be nil")
	}
	return &ReviewJob{cfg: cfg, reviewer: reviewer, handler: handler, logger: logger}
}

// Run executes the review job for one queued request.
func (j *ReviewJob) Run(ctx context.Context, req *core.ReviewRequest) error {
	if err := j.validateRequest(ctx, req); err != nil {
		j.logger.Error("request validation failed", "error", err)
		return fmt.Errorf("request validation failed: %w", err)
	}

	j.logger.Info("starting review", "request_id", req.ID, "repo", req.Repo)

	model := llm.SelectModel(
		req.Input.Diff,
		j.cfg.DefaultModel,
		j.cfg.FallbackModel,
		j.cfg.SimpleThresholdLines,
		j.logger,
	)

	pipeline := execution.NewPipeline(j.reviewer, execution.PipelineConfig{
		Full: core.ReviewerConfig{
			Model:     model,
			MaxTokens: j.cfg.MaxTokens,
		},
		Reduced: core.ReviewerConfig{
			Model:     j.cfg.FallbackModel,
			MaxTokens: j.cfg.MaxTokens,
		},
		ChunkMaxLines: j.cfg.ChunkMaxLines,
		ChunkWorkers:  j.cfg.ChunkWorkers,
	}, req.Gates, j.logger)

	result, err := pipeline.Execute(ctx, req.Input)
	if err != nil {
		// Only authentication failures escape the pipeline.
		j.logger.Error("review aborted", "request_id", req.ID, "error", err)
		return fmt.Errorf("review aborted: %w", err)
	}

	if result.Review != nil {
		j.annotateFindings(result.Review, req.Input.Diff)
	}

	if err := j.handler.Handle(ctx, req, result); err != nil {
		j.logger.Error("result handler failed", "request_id", req.ID, "error", err)
		return fmt.Errorf("result handler failed: %w", err)
	}

	j.logger.Info("review completed",
		"request_id", req.ID,
		"repo", req.Repo,
		"level", result.Level,
		"failed_levels", len(result.Errors),
	)
	return nil
}

// annotateFindings turns findings anchored to changed lines into inline
// comments; findings pointing outside the diff stay in the general list only.
func (j *ReviewJob) annotateFindings(payload *core.ReviewPayload, diff string) {
	lineMaps, err := buildValidLineMaps(diff)
	if err != nil {
		j.logger.Warn("could not build diff line maps, skipping inline annotation", "error", err)
		return
	}

	inline, offDiff := PartitionFindingsByLine(j.logger, payload.Findings, lineMaps)
	for _, f := range inline {
		body := f.Description
		if f.Suggestion != "" {
			body += "\n\nSuggested fix: " + f.Suggestion
		}
		payload.InlineComments = append(payload.InlineComments, core.InlineComment{
			File: f.File,
			Line: f.Line,
			Body: body,
		})
	}

	if len(offDiff) > 0 {
		j.logger.Debug("findings outside the diff stay in the general list", "count", len(offDiff))
	}
}

// validateRequest ensures the request contains all required fields.
func (j *ReviewJob) validateRequest(ctx context.Context, req *core.ReviewRequest) error {
	if ctx == nil {
		return fmt.Errorf("context cannot be nil")
	}
	if req == nil {
		return fmt.Errorf("request cannot be nil")
	}
	if req.ID == "" {
		return fmt.Errorf("request ID cannot be empty")
	}
	if req.Input.Diff == "" {
		return fmt.Errorf("request diff cannot be empty")
	}
	return nil
}

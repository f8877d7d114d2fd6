package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	appconfig "github.com/sevigo/reviewkit/internal/config"
	"github.com/sevigo/reviewkit/internal/core"
	"github.com/sevigo/reviewkit/internal/jobs"
	"github.com/sevigo/reviewkit/internal/llm"
	"github.com/sevigo/reviewkit/internal/logger"
)

var (
	repoPath    string
	gatesFile   string
	description string
	jsonOutput  bool
)

// Color definitions
var (
	titleColor   = color.New(color.FgCyan, color.Bold)
	successColor = color.New(color.FgGreen)
	warnColor    = color.New(color.FgYellow)
	errorColor   = color.New(color.FgRed)
	dimColor     = color.New(color.FgHiBlack)
)

var severityColors = map[string]*color.Color{
	core.SeverityCritical:   color.New(color.FgRed, color.Bold),
	core.SeverityMajor:      color.New(color.FgRed),
	core.SeverityMinor:      color.New(color.FgYellow),
	core.SeveritySuggestion: color.New(color.FgCyan),
}

var reviewCmd = &cobra.Command{
	Use:   "review [diff-file]",
	Short: "Review a unified diff with graceful degradation",
	Long: `Review a unified diff with graceful degradation.

The review command sends the diff to the configured model through the
adaptive retry controller. Oversized inputs are chunked transparently and
provider failures degrade the run through reduced, gates-only, and minimal
tiers instead of failing outright. Use "-" to read the diff from stdin.

Examples:
  reviewkit review changes.diff
  git diff main | reviewkit review -
  reviewkit review --gates gates.json --json changes.diff`,
	Args: cobra.ExactArgs(1),
	RunE: runReview,
}

func init() { //nolint:gochecknoinits // Cobra command registration
	reviewCmd.Flags().StringVarP(&repoPath, "repo", "r", "", "Repository path holding an optional .reviewkit.yml")
	reviewCmd.Flags().StringVarP(&gatesFile, "gates", "g", "", "JSON file with precomputed gate results")
	reviewCmd.Flags().StringVarP(&description, "description", "d", "", "Free-form description of the change")
	reviewCmd.Flags().BoolVar(&jsonOutput, "json", false, "Print the raw result as JSON")
	rootCmd.AddCommand(reviewCmd)
}

// gateOutcome is the on-disk shape of one precomputed gate result.
type gateOutcome struct {
	Pass    bool   `json:"passed"`
	Details string `json:"details,omitempty"`
}

func (g gateOutcome) Passed() bool { return g.Pass }

func runReview(cmd *cobra.Command, args []string) error {
	cfg, err := appconfig.LoadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	log := logger.New(cfg.LogLevel, cfg.LogFormat, os.Stderr)

	diff, err := readDiff(args[0])
	if err != nil {
		return err
	}

	input := core.ReviewInput{Diff: diff, Description: description}
	if repoPath != "" {
		repoCfg, err := appconfig.LoadRepoConfig(repoPath)
		if err != nil && !errors.Is(err, appconfig.ErrConfigNotFound) {
			return fmt.Errorf("loading repo config: %w", err)
		}
		input.FocusAreas = repoCfg.FocusAreas
		input.CustomInstructions = repoCfg.CustomInstructions
		if repoCfg.MaxChunkLines > 0 {
			cfg.ChunkMaxLines = repoCfg.MaxChunkLines
		}
	}

	gates, err := loadGates(gatesFile)
	if err != nil {
		return err
	}

	reviewer := llm.NewClient(cfg.AnthropicAPIKey, cfg.AnthropicBaseURL, cfg.RequestTimeout, log)

	var result *core.DegradationResult
	handler := core.ResultHandlerFunc(func(_ context.Context, _ *core.ReviewRequest, res *core.DegradationResult) error {
		result = res
		return nil
	})

	job := jobs.NewReviewJob(cfg, reviewer, handler, log)
	req := &core.ReviewRequest{
		ID:    uuid.NewString(),
		Input: input,
		Gates: gates,
	}

	if err := job.Run(cmd.Context(), req); err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	renderResult(result)
	return nil
}

// readDiff loads the diff from a file, or stdin when path is "-".
func readDiff(path string) (string, error) {
	if path == "-" {
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("reading diff from stdin: %w", err)
		}
		return string(data), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading diff file: %w", err)
	}
	return string(data), nil
}

// loadGates reads precomputed gate results from a JSON file.
func loadGates(path string) (map[string]core.GateResult, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gates file: %w", err)
	}
	var raw map[string]gateOutcome
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing gates file: %w", err)
	}
	gates := make(map[string]core.GateResult, len(raw))
	for name, g := range raw {
		gates[name] = g
	}
	return gates, nil
}

func renderResult(res *core.DegradationResult) {
	titleColor.Printf("Review result (level: %s)\n\n", res.Level)

	if res.Message != "" {
		warnColor.Println(res.Message)
		fmt.Println()
	}

	if res.Review != nil {
		fmt.Println(res.Review.Summary)
		fmt.Println()

		for _, f := range res.Review.Findings {
			sev := severityColors[f.Severity]
			if sev == nil {
				sev = dimColor
			}
			sev.Printf("[%s] ", f.Severity)
			fmt.Printf("%s", f.File)
			if f.Line > 0 {
				fmt.Printf(":%d", f.Line)
			}
			fmt.Printf(" (%s)\n", f.Category)
			fmt.Printf("  %s\n", f.Description)
			if f.Suggestion != "" {
				dimColor.Printf("  fix: %s\n", f.Suggestion)
			}
		}

		if len(res.Review.Findings) == 0 {
			successColor.Println("No findings.")
		}

		dimColor.Printf("\nmodel=%s tokens=%d cost=$%.4f\n",
			res.Review.Model, res.Review.TotalTokens(), res.Review.CostUSD)
	}

	if len(res.GateResults) > 0 {
		titleColor.Println("Gate results")
		for name, gate := range res.GateResults {
			if gate.Passed() {
				successColor.Printf("  %s: passed\n", name)
			} else {
				errorColor.Printf("  %s: failed\n", name)
			}
		}
	}

	if len(res.Errors) > 0 {
		fmt.Println()
		dimColor.Println("Degraded levels:")
		for _, e := range res.Errors {
			dimColor.Printf("  - %s\n", e)
		}
	}
}

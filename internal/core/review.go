// Package core defines the essential interfaces and data structures that form the
// backbone of the application. These components are designed to be abstract,
// allowing for flexible and decoupled implementations of the application's logic.
package core

import "context"

// Severity levels for review findings, from most to least urgent.
const (
	SeverityCritical   = "critical"
	SeverityMajor      = "major"
	SeverityMinor      = "minor"
	SeveritySuggestion = "suggestion"
)

// ReviewInput is the payload handed to a reviewer. It is immutable for the
// duration of one pipeline run.
type ReviewInput struct {
	// Diff is the unified diff text under review.
	Diff string

	// Description is free-form context, typically the PR description.
	Description string

	// FocusAreas lists named aspects the reviewer should pay attention to.
	FocusAreas []string

	// CustomInstructions are repo-provided directives appended to the
	// reviewer prompt verbatim.
	CustomInstructions []string
}

// ReviewerConfig identifies the backing model tier and sampling parameters for
// one reviewer invocation. Adaptation always produces a new value; a config is
// never mutated in place once an attempt has used it.
type ReviewerConfig struct {
	Model       string
	MaxTokens   int
	Temperature float64

	// PreferChunked signals that the input should be pre-split before the
	// next attempt because the provider rejected it as too large.
	PreferChunked bool
}

// Finding is a single reported issue from a review.
type Finding struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	File        string `json:"file"`
	Line        int    `json:"line,omitempty"`
	StartLine   int    `json:"start_line,omitempty"`
	EndLine     int    `json:"end_line,omitempty"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion,omitempty"`

	// Fingerprint is a derived 16-hex-char identity hash used to deduplicate
	// the same logical issue across chunked sub-reviews.
	Fingerprint string `json:"fingerprint,omitempty"`
}

// InlineComment is a line-anchored remark that accompanies a review.
type InlineComment struct {
	File string `json:"file"`
	Line int    `json:"line"`
	Body string `json:"body"`
}

// ReviewPayload is the structured output of one reviewer invocation, or the
// merged output of several chunked invocations.
type ReviewPayload struct {
	Summary        string          `json:"summary"`
	Findings       []Finding       `json:"findings"`
	InlineComments []InlineComment `json:"inline_comments,omitempty"`
	Strengths      []string        `json:"strengths,omitempty"`
	Concerns       []string        `json:"concerns,omitempty"`
	Questions      []string        `json:"questions,omitempty"`

	InputTokens  int     `json:"input_tokens"`
	OutputTokens int     `json:"output_tokens"`
	Model        string  `json:"model"`
	CostUSD      float64 `json:"cost_usd"`
}

// TotalTokens returns the combined input and output token count.
func (p *ReviewPayload) TotalTokens() int {
	return p.InputTokens + p.OutputTokens
}

// Reviewer is the external capability that turns an input and a configuration
// into a structured review. Implementations must signal failures using the
// classified error types in this package so the retry controller can adapt.
type Reviewer interface {
	Review(ctx context.Context, input ReviewInput, cfg ReviewerConfig) (*ReviewPayload, error)
}

// ReviewerFunc adapts a plain function to the Reviewer interface.
type ReviewerFunc func(ctx context.Context, input ReviewInput, cfg ReviewerConfig) (*ReviewPayload, error)

// Review calls f.
func (f ReviewerFunc) Review(ctx context.Context, input ReviewInput, cfg ReviewerConfig) (*ReviewPayload, error) {
	return f(ctx, input, cfg)
}

package llm

import (
	"encoding/json"
	"strings"

	"github.com/sevigo/reviewkit/internal/core"
)

// wireReview mirrors the JSON shape the system prompt asks the model for.
type wireReview struct {
	Summary   string      `json:"summary"`
	Issues    []wireIssue `json:"issues"`
	Strengths []string    `json:"strengths"`
	Concerns  []string    `json:"concerns"`
	Questions []string    `json:"questions"`
}

type wireIssue struct {
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	File        string `json:"file"`
	Line        int    `json:"line"`
	StartLine   int    `json:"start_line"`
	EndLine     int    `json:"end_line"`
	Description string `json:"description"`
	Suggestion  string `json:"suggestion"`
}

// parsePayload extracts a structured review from model output. Models often
// wrap the JSON in prose, so after a direct parse fails we retry on the
// outermost brace span. If nothing parses, the raw text becomes the summary
// so the quality validator can judge it.
func parsePayload(text string) *core.ReviewPayload {
	var wire wireReview
	if err := json.Unmarshal([]byte(text), &wire); err != nil {
		start := strings.Index(text, "{")
		end := strings.LastIndex(text, "}")
		if start < 0 || end <= start {
			return &core.ReviewPayload{Summary: strings.TrimSpace(text)}
		}
		if err := json.Unmarshal([]byte(text[start:end+1]), &wire); err != nil {
			return &core.ReviewPayload{Summary: strings.TrimSpace(text)}
		}
	}

	payload := &core.ReviewPayload{
		Summary:   wire.Summary,
		Strengths: wire.Strengths,
		Concerns:  wire.Concerns,
		Questions: wire.Questions,
	}

	for _, issue := range wire.Issues {
		severity := issue.Severity
		if severity == "" {
			severity = core.SeverityMinor
		}
		category := issue.Category
		if category == "" {
			category = "style"
		}
		payload.Findings = append(payload.Findings, core.Finding{
			Severity:    severity,
			Category:    category,
			File:        issue.File,
			Line:        issue.Line,
			StartLine:   issue.StartLine,
			EndLine:     issue.EndLine,
			Description: issue.Description,
			Suggestion:  issue.Suggestion,
		})
	}

	return payload
}

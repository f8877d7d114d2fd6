package llm

import (
	"fmt"
	"strings"

	"github.com/sevigo/reviewkit/internal/core"
)

const systemPrompt = `You are an expert code reviewer. Review the diff and provide actionable feedback.

Focus on:
1. Logic errors and bugs
2. Security vulnerabilities
3. Missing test coverage
4. Code patterns and best practices
5. Naming and readability

DO NOT focus on (handled by linters):
- Formatting issues
- Import ordering
- Whitespace problems

Respond in JSON format:
{
  "summary": "Brief overall assessment",
  "issues": [
    {
      "severity": "critical|major|minor|suggestion",
      "category": "logic|security|performance|style|testing|documentation",
      "file": "filename",
      "line": null or line number,
      "description": "What's wrong",
      "suggestion": "How to fix it"
    }
  ],
  "strengths": ["What the change does well"],
  "concerns": ["High-level concerns"],
  "questions": ["Questions for the author"]
}`

// buildUserPrompt assembles the user message from the review input.
func buildUserPrompt(input core.ReviewInput) string {
	var b strings.Builder

	if input.Description != "" {
		fmt.Fprintf(&b, "## Description\n%s\n\n", input.Description)
	}

	if len(input.FocusAreas) > 0 {
		fmt.Fprintf(&b, "## Focus Areas\nPay particular attention to: %s\n\n", strings.Join(input.FocusAreas, ", "))
	}

	if len(input.CustomInstructions) > 0 {
		b.WriteString("## Repository Instructions\n")
		for _, instr := range input.CustomInstructions {
			fmt.Fprintf(&b, "- %s\n", instr)
		}
		b.WriteString("\n")
	}

	fmt.Fprintf(&b, "## Diff\n```diff\n%s\n```\n\n", input.Diff)
	b.WriteString("Please review this change and provide your feedback in the JSON format specified.")

	return b.String()
}

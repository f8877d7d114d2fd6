package review

import (
	"strings"

	"github.com/sevigo/reviewkit/internal/core"
)

// summarySeparator joins per-chunk summaries in the merged payload.
const summarySeparator = " | "

// MergePayloads combines the independent reviews of N chunks into one
// payload. Findings are deduplicated by fingerprint with the first occurrence
// winning, so callers must pass payloads in original chunk order. Inline
// comments are concatenated as-is since they anchor to distinct chunk
// contexts. A single payload is returned unchanged.
func MergePayloads(payloads []*core.ReviewPayload) *core.ReviewPayload {
	if len(payloads) == 0 {
		return &core.ReviewPayload{}
	}
	if len(payloads) == 1 {
		return payloads[0]
	}

	merged := &core.ReviewPayload{Model: payloads[0].Model}

	seen := make(map[string]struct{})
	var summaries []string

	for _, p := range payloads {
		for _, f := range p.Findings {
			if f.Fingerprint == "" {
				f.Fingerprint = Fingerprint(f)
			}
			if _, dup := seen[f.Fingerprint]; dup {
				continue
			}
			seen[f.Fingerprint] = struct{}{}
			merged.Findings = append(merged.Findings, f)
		}

		merged.InlineComments = append(merged.InlineComments, p.InlineComments...)

		if p.Summary != "" {
			summaries = append(summaries, p.Summary)
		}

		merged.InputTokens += p.InputTokens
		merged.OutputTokens += p.OutputTokens
		merged.CostUSD += p.CostUSD
	}

	merged.Summary = strings.Join(summaries, summarySeparator)

	merged.Strengths = dedupeStrings(payloads, func(p *core.ReviewPayload) []string { return p.Strengths })
	merged.Concerns = dedupeStrings(payloads, func(p *core.ReviewPayload) []string { return p.Concerns })
	merged.Questions = dedupeStrings(payloads, func(p *core.ReviewPayload) []string { return p.Questions })

	return merged
}

// dedupeStrings collects a string list from every payload, dropping repeats
// while preserving first-seen order.
func dedupeStrings(payloads []*core.ReviewPayload, pick func(*core.ReviewPayload) []string) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, p := range payloads {
		for _, s := range pick(p) {
			if _, dup := seen[s]; dup {
				continue
			}
			seen[s] = struct{}{}
			out = append(out, s)
		}
	}
	return out
}

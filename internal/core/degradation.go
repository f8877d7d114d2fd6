package core

// DegradationLevel is the quality tier a pipeline run settled at, ordered
// full > reduced > gates_only > minimal.
type DegradationLevel string

const (
	LevelFull      DegradationLevel = "full"
	LevelReduced   DegradationLevel = "reduced"
	LevelGatesOnly DegradationLevel = "gates_only"
	LevelMinimal   DegradationLevel = "minimal"
)

// rank orders levels for comparison; higher is better.
var levelRank = map[DegradationLevel]int{
	LevelFull:      3,
	LevelReduced:   2,
	LevelGatesOnly: 1,
	LevelMinimal:   0,
}

// AtLeast reports whether l is the same tier as other or a better one.
func (l DegradationLevel) AtLeast(other DegradationLevel) bool {
	return levelRank[l] >= levelRank[other]
}

// GateResult is the outcome of a deterministic, non-LLM check (lint,
// security, coverage, dependency, size) computed by the caller before the
// pipeline runs. The engine only relays these at the gates_only level.
type GateResult interface {
	Passed() bool
}

// DegradationResult is the single value every pipeline run resolves to.
// The pipeline never raises past its own boundary except for auth failures;
// every other outcome is expressed here.
type DegradationResult struct {
	Level DegradationLevel `json:"level"`

	// Review is present only at the full and reduced levels.
	Review *ReviewPayload `json:"review,omitempty"`

	// GateResults is present at the gates_only level.
	GateResults map[string]GateResult `json:"gate_results,omitempty"`

	// Message is a human-readable unavailability notice, set when the run
	// degraded past the reduced level.
	Message string `json:"message,omitempty"`

	// Errors holds one entry per failed level attempted before success or
	// exhaustion, in attempt order, each prefixed with the level name.
	Errors []string `json:"errors,omitempty"`
}

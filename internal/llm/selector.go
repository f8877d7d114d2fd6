package llm

import (
	"log/slog"

	"github.com/sevigo/reviewkit/internal/review"
)

// SelectModel picks the model tier for a change based on its size. Small
// diffs go to the cheaper model; anything at or above thresholdLines, or a
// diff that cannot be parsed, gets the default model.
func SelectModel(diff, defaultModel, simpleModel string, thresholdLines int, logger *slog.Logger) string {
	if simpleModel == "" || thresholdLines <= 0 {
		return defaultModel
	}

	stats, err := review.DiffStats(diff)
	if err != nil || stats.Files == 0 {
		logger.Warn("could not parse diff for model selection, using default model", "error", err)
		return defaultModel
	}

	if stats.TotalLines() < thresholdLines {
		logger.Debug("small change, selecting simple model",
			"lines", stats.TotalLines(),
			"threshold", thresholdLines,
			"model", simpleModel,
		)
		return simpleModel
	}
	return defaultModel
}

package jobs

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"

	"github.com/sevigo/reviewkit/internal/core"
)

// PartitionFindingsByLine splits findings into those anchored to lines that
// actually appear in the diff and those that are not. Off-diff findings are
// still reported, just never as inline annotations.
func PartitionFindingsByLine(logger *slog.Logger, findings []core.Finding, validLineMaps map[string]map[int]struct{}) ([]core.Finding, []core.Finding) {
	if len(validLineMaps) == 0 {
		logger.Warn("valid line map is empty, skipping finding partition")
		return nil, findings
	}

	var inline []core.Finding
	var offDiff []core.Finding

	for _, f := range findings {
		cleanPath := strings.TrimPrefix(f.File, "./")
		lines, exists := validLineMaps[cleanPath]
		if !exists {
			logger.Debug("finding references a file outside the diff",
				"file", f.File,
				"normalized", cleanPath,
			)
			offDiff = append(offDiff, f)
			continue
		}

		if _, lineExists := lines[f.Line]; lineExists {
			inline = append(inline, f)
		} else {
			logger.Debug("finding references an off-diff line",
				"file", cleanPath,
				"line", f.Line,
			)
			offDiff = append(offDiff, f)
		}
	}
	return inline, offDiff
}

// buildValidLineMaps parses a unified diff and records, per file, the
// new-side line numbers the diff actually touches or shows.
func buildValidLineMaps(diff string) (map[string]map[int]struct{}, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return nil, fmt.Errorf("parsing diff: %w", err)
	}

	maps := make(map[string]map[int]struct{})
	for _, f := range files {
		name := f.NewName
		if name == "" {
			name = f.OldName
		}
		if name == "" {
			continue
		}

		lines, ok := maps[name]
		if !ok {
			lines = make(map[int]struct{})
			maps[name] = lines
		}

		for _, frag := range f.TextFragments {
			lineNo := int(frag.NewPosition)
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd, gitdiff.OpContext:
					lines[lineNo] = struct{}{}
					lineNo++
				case gitdiff.OpDelete:
					// Deleted lines do not exist on the new side.
				}
			}
		}
	}
	return maps, nil
}

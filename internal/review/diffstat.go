package review

import (
	"fmt"
	"strings"

	"github.com/bluekeyes/go-gitdiff/gitdiff"
)

// Stats holds aggregate size information about a unified diff.
type Stats struct {
	Files   int
	Added   int
	Deleted int
}

// TotalLines returns the combined count of added and deleted lines.
func (s Stats) TotalLines() int {
	return s.Added + s.Deleted
}

// DiffStats parses a unified diff and counts its files and changed lines.
// Model selection uses these counts to decide which tier a change deserves.
func DiffStats(diff string) (Stats, error) {
	files, _, err := gitdiff.Parse(strings.NewReader(diff))
	if err != nil {
		return Stats{}, fmt.Errorf("parsing diff: %w", err)
	}

	stats := Stats{Files: len(files)}
	for _, f := range files {
		for _, frag := range f.TextFragments {
			for _, line := range frag.Lines {
				switch line.Op {
				case gitdiff.OpAdd:
					stats.Added++
				case gitdiff.OpDelete:
					stats.Deleted++
				}
			}
		}
	}
	return stats, nil
}

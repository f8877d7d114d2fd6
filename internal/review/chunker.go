package review

import (
	"regexp"
	"strings"
)

// Strategy selects how an oversized diff is split into chunks.
type Strategy string

const (
	// StrategyFile splits on file boundaries only.
	StrategyFile Strategy = "by_file"
	// StrategyLines splits file bodies into fixed-size line windows.
	StrategyLines Strategy = "by_lines"
	// StrategyAuto splits by file first, then by lines for files whose body
	// exceeds the window; single-file diffs go straight to line windows.
	StrategyAuto Strategy = "auto"
)

// DefaultMaxLines is the chunk window used when no override is configured.
const DefaultMaxLines = 200

// DiffChunk is a contiguous, independently-reviewable slice of a diff.
type DiffChunk struct {
	Content  string
	FilePath string
	Index    int
	Total    int
}

var fileDiffPattern = regexp.MustCompile(`(?m)^diff --git a/(.*?) b/`)

type fileSection struct {
	path    string
	content string
}

// splitByFile cuts a unified diff into per-file sections.
func splitByFile(diff string) []fileSection {
	matches := fileDiffPattern.FindAllStringSubmatchIndex(diff, -1)
	if len(matches) == 0 {
		return nil
	}

	sections := make([]fileSection, 0, len(matches))
	for i, m := range matches {
		start := m[0]
		end := len(diff)
		if i+1 < len(matches) {
			end = matches[i+1][0]
		}
		sections = append(sections, fileSection{
			path:    diff[m[2]:m[3]],
			content: strings.TrimRight(diff[start:end], " \t\n"),
		})
	}
	return sections
}

// splitByLines cuts a single file's diff into line windows of maxLines,
// repeating the file header (everything before the first hunk) in every
// window so each chunk stays independently reviewable.
func splitByLines(content, path string, maxLines int) []fileSection {
	lines := strings.Split(content, "\n")

	headerEnd := 0
	for i, line := range lines {
		if strings.HasPrefix(line, "@@") {
			headerEnd = i
			break
		}
	}

	header := strings.Join(lines[:headerEnd], "\n")
	body := lines[headerEnd:]

	if len(body) <= maxLines {
		return []fileSection{{path: path, content: content}}
	}

	var sections []fileSection
	for start := 0; start < len(body); start += maxLines {
		end := min(start+maxLines, len(body))
		chunk := strings.Join(body[start:end], "\n")
		if header != "" {
			chunk = header + "\n" + chunk
		}
		sections = append(sections, fileSection{
			path:    path,
			content: strings.TrimRight(chunk, " \t\n"),
		})
	}
	return sections
}

// ChunkDiff splits a diff into chunks using the given strategy. Empty input
// yields zero chunks. Ordering is stable and matches input order; every chunk
// records its ordinal index and the total count for this split.
func ChunkDiff(diff string, strategy Strategy, maxLines int) []DiffChunk {
	if strings.TrimSpace(diff) == "" {
		return nil
	}
	if maxLines <= 0 {
		maxLines = DefaultMaxLines
	}

	var raw []fileSection

	switch strategy {
	case StrategyFile:
		raw = splitByFile(diff)

	case StrategyLines:
		sections := splitByFile(diff)
		if len(sections) == 0 {
			sections = []fileSection{{path: "unknown", content: diff}}
		}
		for _, sec := range sections {
			raw = append(raw, splitByLines(sec.content, sec.path, maxLines)...)
		}

	default: // StrategyAuto
		sections := splitByFile(diff)
		if len(sections) > 1 {
			for _, sec := range sections {
				if len(strings.Split(sec.content, "\n")) > maxLines {
					raw = append(raw, splitByLines(sec.content, sec.path, maxLines)...)
				} else {
					raw = append(raw, sec)
				}
			}
		} else {
			path, content := "unknown", diff
			if len(sections) == 1 {
				path, content = sections[0].path, sections[0].content
			}
			raw = splitByLines(content, path, maxLines)
		}
	}

	chunks := make([]DiffChunk, len(raw))
	for i, sec := range raw {
		chunks[i] = DiffChunk{
			Content:  sec.content,
			FilePath: sec.path,
			Index:    i,
			Total:    len(raw),
		}
	}
	return chunks
}

// Package review implements the pieces of a review the engine manipulates
// directly: finding fingerprints, diff chunking, and result merging.
package review

import (
	"crypto/sha256"
	"encoding/hex"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/sevigo/reviewkit/internal/core"
)

// lineBucketSize groups nearby line numbers so the same issue reported a few
// lines apart still produces the same fingerprint.
const lineBucketSize = 10

// stopWords are dropped from descriptions before hashing so wording filler
// does not change a finding's identity.
var stopWords = map[string]struct{}{
	"a": {}, "an": {}, "the": {}, "is": {}, "are": {}, "was": {}, "were": {},
	"be": {}, "been": {}, "being": {}, "have": {}, "has": {}, "had": {},
	"do": {}, "does": {}, "did": {}, "will": {}, "would": {}, "could": {},
	"should": {}, "may": {}, "might": {}, "shall": {}, "can": {}, "need": {},
	"must": {}, "in": {}, "on": {}, "at": {}, "to": {}, "for": {}, "of": {},
	"with": {}, "by": {}, "from": {}, "this": {}, "that": {}, "these": {},
	"those": {}, "it": {}, "its": {}, "and": {}, "or": {}, "but": {},
	"not": {}, "no": {}, "nor": {}, "if": {}, "then": {}, "else": {},
	"when": {}, "where": {}, "which": {}, "what": {}, "who": {},
	"there": {}, "here": {}, "found": {}, "also": {},
}

var punctuation = regexp.MustCompile(`[^\w\s]`)

// NormalizeDescription produces a canonical form of a finding description:
// lowercase, punctuation stripped, stop words removed, remaining words sorted
// alphabetically and joined with single spaces. The result is insensitive to
// word order and filler but sensitive to substantive vocabulary changes.
func NormalizeDescription(desc string) string {
	if desc == "" {
		return ""
	}

	text := punctuation.ReplaceAllString(strings.ToLower(desc), " ")

	var words []string
	for _, w := range strings.Fields(text) {
		if _, skip := stopWords[w]; !skip {
			words = append(words, w)
		}
	}
	sort.Strings(words)

	return strings.Join(words, " ")
}

// bucketLine maps a finding's location to its 10-line window. The midpoint is
// used when a range is known; findings with no location map to bucket 0.
func bucketLine(f core.Finding) int {
	switch {
	case f.StartLine > 0 && f.EndLine > 0:
		return ((f.StartLine + f.EndLine) / 2) / lineBucketSize
	case f.Line > 0:
		return f.Line / lineBucketSize
	case f.StartLine > 0:
		return f.StartLine / lineBucketSize
	default:
		return 0
	}
}

// Fingerprint derives the stable identity hash for a finding as a 16-hex-char
// string. Two findings describing the same underlying issue at slightly
// shifted lines or with reworded but semantically equal descriptions collide;
// findings differing in file, category, severity, or substantive wording do not.
func Fingerprint(f core.Finding) string {
	canonical := strings.Join([]string{
		f.File,
		strconv.Itoa(bucketLine(f)),
		f.Category,
		f.Severity,
		NormalizeDescription(f.Description),
	}, "|")

	digest := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(digest[:])[:16]
}

package review

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reviewkit/internal/core"
)

func TestNormalizeDescription(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "Stop words removed and sorted",
			input: "The variable is not used in this function",
			want:  "function used variable",
		},
		{
			name:  "Word order does not matter",
			input: "used variable function",
			want:  "function used variable",
		},
		{
			name:  "Punctuation and case stripped",
			input: "Unused variable: `foo`!",
			want:  "foo unused variable",
		},
		{
			name:  "Empty input",
			input: "",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDescription(tt.input))
		})
	}
}

func TestFingerprint_Collisions(t *testing.T) {
	base := core.Finding{
		Severity:    core.SeverityMajor,
		Category:    "logic",
		File:        "internal/server/server.go",
		Line:        42,
		Description: "Nil pointer dereference when the config is missing",
	}

	t.Run("Identical findings collide", func(t *testing.T) {
		assert.Equal(t, Fingerprint(base), Fingerprint(base))
	})

	t.Run("Nearby lines in the same bucket collide", func(t *testing.T) {
		shifted := base
		shifted.Line = 47 // same 10-line window as 42
		assert.Equal(t, Fingerprint(base), Fingerprint(shifted))
	})

	t.Run("Reworded description with same significant words collides", func(t *testing.T) {
		reworded := base
		reworded.Description = "When config is missing, a nil pointer dereference"
		assert.Equal(t, Fingerprint(base), Fingerprint(reworded))
	})

	t.Run("Range midpoint buckets like a single line", func(t *testing.T) {
		ranged := base
		ranged.Line = 0
		ranged.StartLine = 40
		ranged.EndLine = 48 // midpoint 44, bucket 4 like line 42
		assert.Equal(t, Fingerprint(base), Fingerprint(ranged))
	})

	t.Run("Different bucket does not collide", func(t *testing.T) {
		far := base
		far.Line = 52
		assert.NotEqual(t, Fingerprint(base), Fingerprint(far))
	})

	t.Run("Different file does not collide", func(t *testing.T) {
		other := base
		other.File = "internal/server/router.go"
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("Different category does not collide", func(t *testing.T) {
		other := base
		other.Category = "security"
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("Different severity does not collide", func(t *testing.T) {
		other := base
		other.Severity = core.SeverityMinor
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})

	t.Run("Substantive wording change does not collide", func(t *testing.T) {
		other := base
		other.Description = "Race condition when the config is reloaded"
		assert.NotEqual(t, Fingerprint(base), Fingerprint(other))
	})
}

func TestFingerprint_Shape(t *testing.T) {
	fp := Fingerprint(core.Finding{
		Severity:    core.SeverityCritical,
		Category:    "security",
		Description: "SQL injection in query builder",
	})
	require.Len(t, fp, 16)
	assert.Regexp(t, "^[0-9a-f]{16}$", fp)
}

func TestFingerprint_NoLocation(t *testing.T) {
	a := core.Finding{Severity: core.SeverityMinor, Category: "style", Description: "inconsistent naming"}
	b := a
	b.Line = 5 // bucket 0, same as no location
	assert.Equal(t, Fingerprint(a), Fingerprint(b))
}

package llm

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func additionDiff(lines int) string {
	var b strings.Builder
	b.WriteString("diff --git a/main.go b/main.go\n")
	b.WriteString("index 1111111..2222222 100644\n")
	b.WriteString("--- a/main.go\n")
	b.WriteString("+++ b/main.go\n")
	fmt.Fprintf(&b, "@@ -0,0 +1,%d @@\n", lines)
	for i := 0; i < lines; i++ {
		fmt.Fprintf(&b, "+line %d\n", i)
	}
	return b.String()
}

func TestSelectModel(t *testing.T) {
	tests := []struct {
		name      string
		diff      string
		threshold int
		want      string
	}{
		{
			name:      "Small change uses simple model",
			diff:      additionDiff(10),
			threshold: 100,
			want:      "simple-model",
		},
		{
			name:      "Large change uses default model",
			diff:      additionDiff(150),
			threshold: 100,
			want:      "default-model",
		},
		{
			name:      "Exactly at threshold uses default model",
			diff:      additionDiff(100),
			threshold: 100,
			want:      "default-model",
		},
		{
			name:      "Unparseable diff uses default model",
			diff:      "not a diff at all",
			threshold: 100,
			want:      "default-model",
		},
		{
			name:      "Zero threshold disables selection",
			diff:      additionDiff(10),
			threshold: 0,
			want:      "default-model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := SelectModel(tt.diff, "default-model", "simple-model", tt.threshold, testLogger)
			assert.Equal(t, tt.want, got)
		})
	}
}

package jobs

import (
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reviewkit/internal/core"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

const sampleDiff = `diff --git a/internal/api/server.go b/internal/api/server.go
index 1111111..2222222 100644
--- a/internal/api/server.go
+++ b/internal/api/server.go
@@ -10,2 +10,4 @@ func Start() {
 	srv := newServer()
-	srv.listen()
+	if err := srv.listen(); err != nil {
+		panic(err)
+	}
`

func TestBuildValidLineMaps(t *testing.T) {
	maps, err := buildValidLineMaps(sampleDiff)
	require.NoError(t, err)

	lines, ok := maps["internal/api/server.go"]
	require.True(t, ok)

	// New-side lines 10-13: one context line plus the replacement block.
	for line := 10; line <= 13; line++ {
		assert.Contains(t, lines, line)
	}
	assert.NotContains(t, lines, 42)
}

func TestBuildValidLineMaps_NotADiff(t *testing.T) {
	maps, err := buildValidLineMaps("plain text")
	require.NoError(t, err)
	assert.Empty(t, maps)
}

func TestPartitionFindingsByLine(t *testing.T) {
	lineMaps := map[string]map[int]struct{}{
		"a.go": {10: {}, 11: {}, 12: {}},
	}

	findings := []core.Finding{
		{File: "a.go", Line: 11, Description: "on a changed line"},
		{File: "./a.go", Line: 12, Description: "path with dot prefix"},
		{File: "a.go", Line: 99, Description: "off-diff line"},
		{File: "b.go", Line: 10, Description: "file not in diff"},
	}

	inline, offDiff := PartitionFindingsByLine(testLogger, findings, lineMaps)

	require.Len(t, inline, 2)
	assert.Equal(t, "on a changed line", inline[0].Description)
	assert.Equal(t, "path with dot prefix", inline[1].Description)

	require.Len(t, offDiff, 2)
	assert.Equal(t, "off-diff line", offDiff[0].Description)
	assert.Equal(t, "file not in diff", offDiff[1].Description)
}

func TestPartitionFindingsByLine_EmptyMap(t *testing.T) {
	findings := []core.Finding{{File: "a.go", Line: 1}}

	inline, offDiff := PartitionFindingsByLine(testLogger, findings, nil)
	assert.Empty(t, inline)
	assert.Equal(t, findings, offDiff)
}

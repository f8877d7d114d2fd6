package llm

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sevigo/reviewkit/internal/core"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

var testInput = core.ReviewInput{
	Diff:        "diff --git a/main.go b/main.go\n+func main() {}",
	Description: "add entrypoint",
	FocusAreas:  []string{"error handling"},
}

var testConfig = core.ReviewerConfig{
	Model:     "claude-sonnet-4-20250514",
	MaxTokens: 4096,
}

func messagesBody(reviewJSON string, inputTokens, outputTokens int) string {
	body := map[string]any{
		"content": []map[string]string{{"type": "text", "text": reviewJSON}},
		"usage":   map[string]int{"input_tokens": inputTokens, "output_tokens": outputTokens},
	}
	data, _ := json.Marshal(body)
	return string(data)
}

func TestClient_ReviewSuccess(t *testing.T) {
	reviewJSON := `{
		"summary": "Solid change with one real problem worth fixing.",
		"issues": [
			{
				"severity": "major",
				"category": "logic",
				"file": "main.go",
				"line": 3,
				"description": "error return is ignored",
				"suggestion": "check and propagate the error"
			}
		],
		"strengths": ["small, focused diff"],
		"questions": ["is the CLI flag still needed?"]
	}`

	var gotPath, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotKey = r.Header.Get("X-Api-Key")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(messagesBody(reviewJSON, 1000, 500)))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, time.Second, testLogger)
	payload, err := client.Review(context.Background(), testInput, testConfig)
	require.NoError(t, err)

	assert.Equal(t, "/v1/messages", gotPath)
	assert.Equal(t, "test-key", gotKey)

	assert.Equal(t, "Solid change with one real problem worth fixing.", payload.Summary)
	require.Len(t, payload.Findings, 1)
	assert.Equal(t, core.SeverityMajor, payload.Findings[0].Severity)
	assert.Len(t, payload.Findings[0].Fingerprint, 16)
	assert.Equal(t, []string{"small, focused diff"}, payload.Strengths)

	assert.Equal(t, 1000, payload.InputTokens)
	assert.Equal(t, 500, payload.OutputTokens)
	assert.Equal(t, "claude-sonnet-4-20250514", payload.Model)
	// 1000 * 0.003/1000 + 500 * 0.015/1000
	assert.InDelta(t, 0.0105, payload.CostUSD, 1e-9)
}

func TestClient_ErrorClassification(t *testing.T) {
	tests := []struct {
		name     string
		status   int
		message  string
		wantKind core.FailureKind
		wantAuth bool
	}{
		{
			name:     "Rate limited",
			status:   http.StatusTooManyRequests,
			message:  "rate limit exceeded",
			wantKind: core.FailureRateLimited,
		},
		{
			name:     "Context too long",
			status:   http.StatusBadRequest,
			message:  "prompt exceeds the maximum context length",
			wantKind: core.FailureInputTooLarge,
		},
		{
			name:     "Other bad request",
			status:   http.StatusBadRequest,
			message:  "invalid temperature",
			wantKind: core.FailureProviderError,
		},
		{
			name:     "Server error",
			status:   http.StatusInternalServerError,
			message:  "overloaded",
			wantKind: core.FailureProviderError,
		},
		{
			name:     "Gateway timeout",
			status:   http.StatusGatewayTimeout,
			message:  "upstream timeout",
			wantKind: core.FailureTimedOut,
		},
		{
			name:     "Unauthorized",
			status:   http.StatusUnauthorized,
			message:  "invalid x-api-key",
			wantAuth: true,
		},
		{
			name:     "Forbidden",
			status:   http.StatusForbidden,
			message:  "permission denied",
			wantAuth: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_ = json.NewEncoder(w).Encode(map[string]any{
					"error": map[string]string{"type": "error", "message": tt.message},
				})
			}))
			defer server.Close()

			client := NewClient("test-key", server.URL, time.Second, testLogger)
			_, err := client.Review(context.Background(), testInput, testConfig)
			require.Error(t, err)

			if tt.wantAuth {
				assert.True(t, core.IsAuthError(err))
				return
			}
			assert.False(t, core.IsAuthError(err))
			assert.Equal(t, tt.wantKind, core.ClassifyError(err))
			assert.ErrorContains(t, err, tt.message)
		})
	}
}

func TestClient_RequestTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = w.Write([]byte(messagesBody(`{"summary":"late"}`, 1, 1)))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, 20*time.Millisecond, testLogger)
	_, err := client.Review(context.Background(), testInput, testConfig)
	require.Error(t, err)
	assert.Equal(t, core.FailureTimedOut, core.ClassifyError(err))
}

func TestClient_EmptyContent(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"content": [], "usage": {"input_tokens": 1, "output_tokens": 0}}`))
	}))
	defer server.Close()

	client := NewClient("test-key", server.URL, time.Second, testLogger)
	_, err := client.Review(context.Background(), testInput, testConfig)
	require.Error(t, err)
	assert.Equal(t, core.FailureLowQuality, core.ClassifyError(err))
}

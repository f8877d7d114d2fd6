// Package llm adapts an Anthropic-style messages API to the core.Reviewer
// contract, classifying transport failures into the engine's failure taxonomy.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sevigo/reviewkit/internal/core"
	"github.com/sevigo/reviewkit/internal/review"
)

const (
	defaultBaseURL = "https://api.anthropic.com"
	messagesPath   = "/v1/messages"
	apiVersion     = "2023-06-01"

	defaultTimeout = 120 * time.Second
)

// Client is a reviewer backed by an Anthropic-style chat completion endpoint.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	pricing    PricingTable
	logger     *slog.Logger
}

// NewClient builds a reviewer client. baseURL may be empty to use the public
// endpoint; tests point it at a local server.
func NewClient(apiKey, baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		apiKey:     apiKey,
		pricing:    DefaultPricing(),
		logger:     logger,
	}
}

type messagesRequest struct {
	Model       string           `json:"model"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float64          `json:"temperature"`
	System      string           `json:"system"`
	Messages    []requestMessage `json:"messages"`
}

type requestMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type messagesResponse struct {
	Content []struct {
		Text string `json:"text"`
	} `json:"content"`
	Usage struct {
		InputTokens  int `json:"input_tokens"`
		OutputTokens int `json:"output_tokens"`
	} `json:"usage"`
}

type apiErrorResponse struct {
	Error struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"error"`
}

// Review sends the input to the model named by cfg and parses the structured
// review out of the response. Failures are returned as classified errors so
// the retry controller can adapt.
func (c *Client) Review(ctx context.Context, input core.ReviewInput, cfg core.ReviewerConfig) (*core.ReviewPayload, error) {
	reqBody := messagesRequest{
		Model:       cfg.Model,
		MaxTokens:   cfg.MaxTokens,
		Temperature: cfg.Temperature,
		System:      systemPrompt,
		Messages: []requestMessage{
			{Role: "user", Content: buildUserPrompt(input)},
		},
	}

	data, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+messagesPath, bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Api-Key", c.apiKey)
	req.Header.Set("Anthropic-Version", apiVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransportError(err)
	}
	defer resp.Body.Close() //nolint:errcheck

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewReviewError(core.FailureProviderError, fmt.Errorf("reading response: %w", err))
	}

	if resp.StatusCode != http.StatusOK {
		return nil, classifyStatus(resp.StatusCode, body)
	}

	var parsed messagesResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, core.NewReviewError(core.FailureProviderError, fmt.Errorf("decoding response: %w", err))
	}
	if len(parsed.Content) == 0 {
		return nil, core.NewReviewError(core.FailureLowQuality, errors.New("response contained no content"))
	}

	payload := parsePayload(parsed.Content[0].Text)
	payload.Model = cfg.Model
	payload.InputTokens = parsed.Usage.InputTokens
	payload.OutputTokens = parsed.Usage.OutputTokens
	payload.CostUSD = c.pricing.Cost(cfg.Model, payload.InputTokens, payload.OutputTokens)

	for i := range payload.Findings {
		payload.Findings[i].Fingerprint = review.Fingerprint(payload.Findings[i])
	}

	c.logger.Debug("review call completed",
		"model", cfg.Model,
		"elapsed", time.Since(start),
		"findings", len(payload.Findings),
		"tokens", payload.TotalTokens(),
	)

	return payload, nil
}

// classifyTransportError maps client-side request failures to the taxonomy.
func classifyTransportError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return core.NewReviewError(core.FailureTimedOut, err)
	}
	var netErr interface{ Timeout() bool }
	if errors.As(err, &netErr) && netErr.Timeout() {
		return core.NewReviewError(core.FailureTimedOut, err)
	}
	return core.NewReviewError(core.FailureProviderError, err)
}

// classifyStatus maps an HTTP error response to the taxonomy.
func classifyStatus(status int, body []byte) error {
	var apiErr apiErrorResponse
	_ = json.Unmarshal(body, &apiErr)
	message := apiErr.Error.Message
	if message == "" {
		message = strings.TrimSpace(string(body))
	}

	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		return &core.AuthError{Message: message}
	case status == http.StatusTooManyRequests:
		return core.NewReviewError(core.FailureRateLimited, errors.New(message))
	case status == http.StatusBadRequest:
		lower := strings.ToLower(message)
		if strings.Contains(lower, "context length") ||
			strings.Contains(lower, "too long") ||
			strings.Contains(lower, "too large") {
			return core.NewReviewError(core.FailureInputTooLarge, errors.New(message))
		}
		return core.NewReviewError(core.FailureProviderError, fmt.Errorf("bad request: %s", message))
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		return core.NewReviewError(core.FailureTimedOut, errors.New(message))
	default:
		return core.NewReviewError(core.FailureProviderError, fmt.Errorf("status %d: %s", status, message))
	}
}

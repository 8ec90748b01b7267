// Package llm implements the chat-completions client and the interpretation
// of model replies into structured review issues.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/diffsentry/diffsentry/internal/config"
	"github.com/diffsentry/diffsentry/internal/core"
)

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg        config.LLMConfig
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a chat-completions client. The HTTP client carries no
// timeout of its own; a hung call is bounded by the surrounding CI job
// timeout, and serve mode passes request-scoped contexts.
func NewClient(cfg config.LLMConfig, logger *slog.Logger) *Client {
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{},
		logger:     logger,
	}
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	MaxTokens   int           `json:"max_tokens"`
	Stream      bool          `json:"stream"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error"`
	Code    int          `json:"code"`
}

type chatChoice struct {
	Message completionMessage `json:"message"`
}

// completionMessage mirrors a vendor quirk: the model's answer may arrive in
// Content, in ReasoningContent, or split across both.
type completionMessage struct {
	Content          string `json:"content"`
	ReasoningContent string `json:"reasoning_content"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// ReviewDiff sends the diff for review and returns the model's raw textual
// reply. It fails with core.ConfigError before any network I/O when no API
// key is configured, and with core.UpstreamError on any non-success or
// structurally unusable response.
func (c *Client) ReviewDiff(ctx context.Context, diff string) (string, error) {
	if c.cfg.APIKey == "" {
		return "", &core.ConfigError{Key: "LLM_API_KEY"}
	}

	reqBody := chatRequest{
		Model: c.cfg.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: buildUserPrompt(diff)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
		Stream:      false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return "", fmt.Errorf("marshaling chat request: %w", err)
	}

	c.logger.Debug("requesting review", "model", c.cfg.Model, "diff_chars", len(diff))

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("creating chat request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return "", fmt.Errorf("sending chat request: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("reading chat response: %w", err)
	}

	if httpResp.StatusCode < 200 || httpResp.StatusCode >= 300 {
		return "", &core.UpstreamError{
			Service:    "llm",
			StatusCode: httpResp.StatusCode,
			Body:       string(respBody),
		}
	}

	var resp chatResponse
	if err := json.Unmarshal(respBody, &resp); err != nil {
		return "", &core.UpstreamError{
			Service: "llm",
			Body:    fmt.Sprintf("malformed response body: %v", err),
		}
	}

	if resp.Error != nil {
		return "", &core.UpstreamError{
			Service: "llm",
			Body:    fmt.Sprintf("%s: %s", resp.Error.Type, resp.Error.Message),
		}
	}
	if resp.Code != 0 {
		return "", &core.UpstreamError{
			Service: "llm",
			Body:    fmt.Sprintf("error code %d in response", resp.Code),
		}
	}

	return extractModelText(resp)
}

// extractModelText isolates the content-or-reasoning quirk of the response
// shape. When both fields are present the reasoning is concatenated before
// the content; when neither is, the error carries a structural summary of
// the response rather than its payload.
func extractModelText(resp chatResponse) (string, error) {
	if len(resp.Choices) == 0 {
		return "", &core.UpstreamError{
			Service: "llm",
			Body:    "no choices in response",
		}
	}

	msg := resp.Choices[0].Message
	switch {
	case msg.Content != "" && msg.ReasoningContent != "":
		return msg.ReasoningContent + "\n\n" + msg.Content, nil
	case msg.Content != "":
		return msg.Content, nil
	case msg.ReasoningContent != "":
		return msg.ReasoningContent, nil
	default:
		return "", &core.UpstreamError{
			Service: "llm",
			Body: fmt.Sprintf("empty completion (choices=%d, has_content=false, has_reasoning=false)",
				len(resp.Choices)),
		}
	}
}

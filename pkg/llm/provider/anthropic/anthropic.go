// Package anthropic implements llm.Completer on Anthropic's Messages API.
package anthropic

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/shelf/pkg/llm"
)

const (
	DefaultModel     = "claude-haiku-4-5-20251001"
	DefaultBaseURL   = "https://api.anthropic.com"
	DefaultMaxTokens = 1024

	apiVersion = "2023-06-01"
)

// Config holds configuration for the Anthropic client.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// MaxTokens is sent when a request does not set its own. Defaults to 1024.
	MaxTokens int

	// Timeout bounds a single completion. Defaults to 60s.
	Timeout time.Duration
}

// Client calls the Anthropic messages endpoint.
type Client struct {
	apiKey     string
	model      string
	baseURL    string
	maxTokens  int
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates an Anthropic client.
func New(c Config, logger *slog.Logger) (*Client, error) {
	if c.APIKey == "" {
		return nil, errors.New("anthropic API key is required")
	}

	model := c.Model
	if model == "" {
		model = DefaultModel
	}
	baseURL := strings.TrimSuffix(c.BaseURL, "/")
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	maxTokens := c.MaxTokens
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &Client{
		apiKey:     c.APIKey,
		model:      model,
		baseURL:    baseURL,
		maxTokens:  maxTokens,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "anthropic", "model", model),
	}, nil
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return llm.CompleteWith(ctx, c, prompt)
}

// Chat sends a messages request. System messages are folded into the
// top-level system prompt since Anthropic rejects them in the message list.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body := anthropicRequest{
		Model:       cmp.Or(req.Model, c.model),
		MaxTokens:   c.maxTokens,
		Temperature: req.Temperature,
	}
	if req.MaxTokens != nil {
		body.MaxTokens = *req.MaxTokens
	}

	system := []string{}
	if req.System != "" {
		system = append(system, req.System)
	}
	for _, m := range req.Messages {
		if m.Role == llm.RoleSystem {
			system = append(system, m.GetText())
			continue
		}
		body.Messages = append(body.Messages, anthropicMessage{Role: m.Role, Content: m.GetText()})
	}
	body.System = strings.Join(system, "\n\n")

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/v1/messages", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("x-api-key", c.apiKey)
	httpReq.Header.Set("anthropic-version", apiVersion)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending anthropic request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("anthropic API error (status %d): %s", resp.StatusCode, string(payload))
	}

	result, err := parseResponse(payload)
	if err != nil {
		return nil, err
	}

	if result.Usage != nil {
		c.logger.Debug("anthropic completion",
			"prompt_tokens", result.Usage.PromptTokens,
			"completion_tokens", result.Usage.CompletionTokens,
		)
	}
	return result, nil
}

func parseResponse(payload []byte) (*llm.ChatResponse, error) {
	var resp anthropicResponse
	if err := json.Unmarshal(payload, &resp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if resp.Error != nil {
		return nil, fmt.Errorf("anthropic error: %s", resp.Error.Message)
	}

	content := make([]llm.ContentBlock, 0, len(resp.Content))
	for _, block := range resp.Content {
		content = append(content, llm.ContentBlock{Type: block.Type, Text: block.Text})
	}

	var usage *llm.Usage
	if resp.Usage != nil {
		usage = &llm.Usage{
			PromptTokens:     resp.Usage.InputTokens,
			CompletionTokens: resp.Usage.OutputTokens,
			TotalTokens:      resp.Usage.InputTokens + resp.Usage.OutputTokens,
		}
	}

	return &llm.ChatResponse{
		Model:      resp.Model,
		CreatedAt:  time.Now(),
		Message:    llm.Message{Role: resp.Role, Content: content},
		StopReason: resp.StopReason,
		Usage:      usage,
	}, nil
}

var _ llm.Completer = (*Client)(nil)

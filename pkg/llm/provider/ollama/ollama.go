// Package ollama implements llm.Completer on a local Ollama server.
package ollama

import (
	"bytes"
	"cmp"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/papercomputeco/shelf/pkg/llm"
)

const (
	DefaultModel   = "llama3.2"
	DefaultBaseURL = "http://localhost:11434"
)

// Config holds configuration for the Ollama client.
type Config struct {
	Model   string
	BaseURL string

	// Timeout bounds a single completion. Local models can be slow to load,
	// so this defaults to 120s.
	Timeout time.Duration
}

// Client calls Ollama's chat endpoint without streaming.
type Client struct {
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// New creates an Ollama client. No API key is needed.
func New(c Config, logger *slog.Logger) *Client {
	model := cmp.Or(c.Model, DefaultModel)
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = 120 * time.Second
	}

	return &Client{
		model:      model,
		baseURL:    cmp.Or(strings.TrimSuffix(c.BaseURL, "/"), DefaultBaseURL),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger.With("component", "ollama", "model", model),
	}
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return llm.CompleteWith(ctx, c, prompt)
}

// Chat sends a chat request.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	body := ollamaRequest{
		Model:  cmp.Or(req.Model, c.model),
		Stream: false,
	}
	if req.Temperature != nil || req.MaxTokens != nil {
		body.Options = &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		}
	}
	if req.System != "" {
		body.Messages = append(body.Messages, ollamaMessage{Role: llm.RoleSystem, Content: req.System})
	}
	for _, m := range req.Messages {
		body.Messages = append(body.Messages, ollamaMessage{Role: m.Role, Content: m.GetText()})
	}

	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("sending ollama request: %w", err)
	}
	defer resp.Body.Close()

	payload, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama API error (status %d): %s", resp.StatusCode, string(payload))
	}

	var result ollamaResponse
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if result.Error != "" {
		return nil, fmt.Errorf("ollama error: %s", result.Error)
	}

	c.logger.Debug("ollama completion",
		"prompt_tokens", result.PromptEvalCount,
		"completion_tokens", result.EvalCount,
	)

	return &llm.ChatResponse{
		Model:      result.Model,
		CreatedAt:  result.CreatedAt,
		Message:    llm.NewTextMessage(result.Message.Role, result.Message.Content),
		StopReason: result.DoneReason,
		Usage: &llm.Usage{
			PromptTokens:     result.PromptEvalCount,
			CompletionTokens: result.EvalCount,
			TotalTokens:      result.PromptEvalCount + result.EvalCount,
		},
	}, nil
}

var _ llm.Completer = (*Client)(nil)

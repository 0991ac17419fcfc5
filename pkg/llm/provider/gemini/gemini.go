// Package gemini implements llm.Completer on the Gemini API via the genai SDK.
package gemini

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"google.golang.org/genai"

	"github.com/papercomputeco/shelf/pkg/llm"
)

const DefaultModel = "gemini-2.5-flash"

// Config holds configuration for the Gemini client.
type Config struct {
	APIKey string
	Model  string

	// BaseURL overrides the API endpoint, mostly for tests.
	BaseURL string
}

// Client generates content with a Gemini model.
type Client struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// New creates a Gemini client.
func New(ctx context.Context, c Config, logger *slog.Logger) (*Client, error) {
	if c.APIKey == "" {
		return nil, errors.New("gemini API key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      c.APIKey,
		Backend:     genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{BaseURL: c.BaseURL},
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}

	model := cmp.Or(c.Model, DefaultModel)
	return &Client{
		client: client,
		model:  model,
		logger: logger.With("component", "gemini", "model", model),
	}, nil
}

// Complete sends prompt as a single user message.
func (c *Client) Complete(ctx context.Context, prompt string) (string, error) {
	return llm.CompleteWith(ctx, c, prompt)
}

// Chat generates content for the request. Assistant turns map to the
// "model" role.
func (c *Client) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	contents := make([]*genai.Content, 0, len(req.Messages))
	system := req.System
	for _, m := range req.Messages {
		switch m.Role {
		case llm.RoleSystem:
			system = m.GetText()
		case llm.RoleAssistant:
			contents = append(contents, genai.NewContentFromText(m.GetText(), genai.RoleModel))
		default:
			contents = append(contents, genai.NewContentFromText(m.GetText(), genai.RoleUser))
		}
	}

	config := &genai.GenerateContentConfig{}
	if system != "" {
		config.SystemInstruction = genai.NewContentFromText(system, genai.RoleUser)
	}
	if req.Temperature != nil {
		config.Temperature = genai.Ptr(float32(*req.Temperature))
	}
	if req.MaxTokens != nil {
		config.MaxOutputTokens = int32(*req.MaxTokens)
	}

	model := cmp.Or(req.Model, c.model)
	resp, err := c.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("generating content: %w", err)
	}

	result := &llm.ChatResponse{
		Model:     model,
		CreatedAt: time.Now(),
		Message:   llm.NewTextMessage(llm.RoleAssistant, resp.Text()),
	}
	if len(resp.Candidates) > 0 {
		result.StopReason = string(resp.Candidates[0].FinishReason)
	}
	if u := resp.UsageMetadata; u != nil {
		result.Usage = &llm.Usage{
			PromptTokens:     int(u.PromptTokenCount),
			CompletionTokens: int(u.CandidatesTokenCount),
			TotalTokens:      int(u.TotalTokenCount),
		}
		c.logger.Debug("gemini completion",
			"prompt_tokens", u.PromptTokenCount,
			"completion_tokens", u.CandidatesTokenCount,
		)
	}

	return result, nil
}

var _ llm.Completer = (*Client)(nil)

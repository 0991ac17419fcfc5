// Package openai generates images with OpenAI's images API.
package openai

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

	"github.com/papercomputeco/shelf/pkg/imagegen"
)

const (
	DefaultModel   = "dall-e-3"
	DefaultBaseURL = "https://api.openai.com"
)

// Config holds configuration for the OpenAI image generator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

type generateRequest struct {
	Model          string `json:"model"`
	Prompt         string `json:"prompt"`
	N              int    `json:"n"`
	Size           string `json:"size"`
	Quality        string `json:"quality"`
	ResponseFormat string `json:"response_format"`
}

type generateResponse struct {
	Data []struct {
		URL           string `json:"url"`
		RevisedPrompt string `json:"revised_prompt,omitempty"`
	} `json:"data"`
}

// Generator requests a URL for the generated image, then downloads it.
type Generator struct {
	apiKey     string
	model      string
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewGenerator creates an OpenAI image generator.
func NewGenerator(c Config, logger *slog.Logger) (*Generator, error) {
	if c.APIKey == "" {
		return nil, errors.New("openai API key is required")
	}

	return &Generator{
		apiKey:  c.APIKey,
		model:   cmp.Or(c.Model, DefaultModel),
		baseURL: cmp.Or(strings.TrimSuffix(c.BaseURL, "/"), DefaultBaseURL),
		httpClient: &http.Client{
			Timeout: 120 * time.Second,
		},
		logger: logger.With("component", "openai_images"),
	}, nil
}

// Generate creates the image and returns the bytes of the first one.
func (g *Generator) Generate(ctx context.Context, prompt string, opts imagegen.Options) (*imagegen.Image, error) {
	opts = opts.WithDefaults()

	data, err := json.Marshal(generateRequest{
		Model:          cmp.Or(opts.Model, g.model),
		Prompt:         prompt,
		N:              opts.N,
		Size:           fmt.Sprintf("%dx%d", opts.Width, opts.Height),
		Quality:        opts.Quality,
		ResponseFormat: "url",
	})
	if err != nil {
		return nil, fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/v1/images/generations", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("sending image request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("openai images API error (status %d): %s", resp.StatusCode, string(body))
	}

	var genResp generateResponse
	if err := json.NewDecoder(resp.Body).Decode(&genResp); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}
	if len(genResp.Data) == 0 || genResp.Data[0].URL == "" {
		return nil, imagegen.ErrNoImage
	}

	g.logger.Debug("image generated", "revised_prompt", genResp.Data[0].RevisedPrompt)
	return g.download(ctx, genResp.Data[0].URL)
}

func (g *Generator) download(ctx context.Context, url string) (*imagegen.Image, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating download request: %w", err)
	}

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("downloading image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("downloading image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading image: %w", err)
	}
	if len(data) == 0 {
		return nil, imagegen.ErrNoImage
	}

	mediaType := resp.Header.Get("Content-Type")
	if mediaType == "" || !strings.HasPrefix(mediaType, "image/") {
		mediaType = http.DetectContentType(data)
	}

	return &imagegen.Image{Data: data, MediaType: mediaType}, nil
}

var _ imagegen.Generator = (*Generator)(nil)

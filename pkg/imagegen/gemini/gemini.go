// Package gemini generates images with Imagen through the genai SDK.
package gemini

import (
	"cmp"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/genai"

	"github.com/papercomputeco/shelf/pkg/imagegen"
)

const DefaultModel = "imagen-4.0-generate-001"

// Config holds configuration for the Gemini image generator.
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Generator calls Models.GenerateImages.
type Generator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGenerator creates a Gemini image generator.
func NewGenerator(ctx context.Context, c Config, logger *slog.Logger) (*Generator, error) {
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

	return &Generator{
		client: client,
		model:  cmp.Or(c.Model, DefaultModel),
		logger: logger.With("component", "gemini_images"),
	}, nil
}

// Generate returns the first generated image. Imagen has no pixel size
// parameter, so Width and Height only choose the aspect ratio.
func (g *Generator) Generate(ctx context.Context, prompt string, opts imagegen.Options) (*imagegen.Image, error) {
	opts = opts.WithDefaults()

	resp, err := g.client.Models.GenerateImages(ctx, cmp.Or(opts.Model, g.model), prompt, &genai.GenerateImagesConfig{
		NumberOfImages: int32(opts.N),
		AspectRatio:    aspectRatio(opts.Width, opts.Height),
	})
	if err != nil {
		return nil, fmt.Errorf("generating images: %w", err)
	}

	for _, img := range resp.GeneratedImages {
		if img.Image == nil || len(img.Image.ImageBytes) == 0 {
			continue
		}

		mediaType := img.Image.MIMEType
		if mediaType == "" {
			mediaType = http.DetectContentType(img.Image.ImageBytes)
		}
		return &imagegen.Image{Data: img.Image.ImageBytes, MediaType: mediaType}, nil
	}

	return nil, imagegen.ErrNoImage
}

// aspectRatio maps a size to the closest ratio Imagen accepts.
func aspectRatio(width, height int) string {
	switch r := float64(width) / float64(height); {
	case r >= 1.6:
		return "16:9"
	case r >= 1.2:
		return "4:3"
	case r <= 0.625:
		return "9:16"
	case r <= 0.83:
		return "3:4"
	default:
		return "1:1"
	}
}

var _ imagegen.Generator = (*Generator)(nil)

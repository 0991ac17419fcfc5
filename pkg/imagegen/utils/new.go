// Package imagegenutils builds image generators from configuration.
package imagegenutils

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/papercomputeco/shelf/pkg/imagegen"
	"github.com/papercomputeco/shelf/pkg/imagegen/gemini"
	"github.com/papercomputeco/shelf/pkg/imagegen/openai"
)

type NewGeneratorOpts struct {
	ProviderType string
	Model        string
	BaseURL      string
	APIKey       string
	Logger       *slog.Logger
}

// NewGenerator returns nil with no error when image generation is disabled.
func NewGenerator(ctx context.Context, o *NewGeneratorOpts) (imagegen.Generator, error) {
	switch o.ProviderType {
	case "none":
		return nil, nil
	case "", "openai":
		g, err := openai.NewGenerator(openai.Config{
			APIKey:  o.APIKey,
			Model:   o.Model,
			BaseURL: o.BaseURL,
		}, o.Logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	case "gemini":
		g, err := gemini.NewGenerator(ctx, gemini.Config{
			APIKey:  o.APIKey,
			Model:   o.Model,
			BaseURL: o.BaseURL,
		}, o.Logger)
		if err != nil {
			return nil, err
		}
		return g, nil
	default:
		return nil, fmt.Errorf("unsupported image provider: %s", o.ProviderType)
	}
}

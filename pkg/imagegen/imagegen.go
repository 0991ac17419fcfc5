// Package imagegen defines the product image generator interface.
package imagegen

import (
	"context"
	"errors"
)

// Defaults applied by Options.WithDefaults.
const (
	DefaultN       = 1
	DefaultWidth   = 1024
	DefaultHeight  = 1024
	DefaultQuality = "standard"
)

// ErrNoImage is returned when a provider answers without any image.
var ErrNoImage = errors.New("no image generated")

// Image is a generated image.
type Image struct {
	Data      []byte
	MediaType string
}

// Options tunes a generation request. Zero fields take the defaults.
type Options struct {
	N       int
	Width   int
	Height  int
	Quality string

	// Model overrides the generator's configured model.
	Model string
}

// WithDefaults fills unset fields.
func (o Options) WithDefaults() Options {
	if o.N <= 0 {
		o.N = DefaultN
	}
	if o.Width <= 0 {
		o.Width = DefaultWidth
	}
	if o.Height <= 0 {
		o.Height = DefaultHeight
	}
	if o.Quality == "" {
		o.Quality = DefaultQuality
	}
	return o
}

// Generator creates an image from a text prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string, opts Options) (*Image, error)
}

package products

import "errors"

var (
	// ErrNoImage is returned when a product has no stored image.
	ErrNoImage = errors.New("product has no image")

	// ErrDescriptionGenerationDisabled is returned when no language model is
	// configured.
	ErrDescriptionGenerationDisabled = errors.New("description generation is not configured")

	// ErrImageGenerationDisabled is returned when no image generator is
	// configured.
	ErrImageGenerationDisabled = errors.New("image generation is not configured")
)

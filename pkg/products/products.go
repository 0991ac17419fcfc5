// Package products implements the product catalog service: CRUD over the
// relational store mirrored into the vector store, plus AI assisted
// descriptions and images.
package products

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/imagegen"
	"github.com/papercomputeco/shelf/pkg/indexer"
	"github.com/papercomputeco/shelf/pkg/llm"
	"github.com/papercomputeco/shelf/pkg/prompt"
	"github.com/papercomputeco/shelf/pkg/storage"
)

// Config wires the product service.
type Config struct {
	// Driver is the relational store. Required.
	Driver storage.Driver

	// Indexer is notified after every committed mutation. Optional.
	Indexer indexer.Indexer

	// Prompts renders the description and image prompts. Required.
	Prompts *prompt.Loader

	// Completer writes product descriptions. Optional.
	Completer llm.Completer

	// ImageGenerator draws product images. Optional.
	ImageGenerator imagegen.Generator

	// ImageOptions is passed to every generation request.
	ImageOptions imagegen.Options

	Logger *slog.Logger
}

// Service is the product catalog service.
type Service struct {
	driver    storage.Driver
	indexer   indexer.Indexer
	prompts   *prompt.Loader
	completer llm.Completer
	images    imagegen.Generator
	imageOpts imagegen.Options
	logger    *slog.Logger
}

// New creates a product service.
func New(c Config) (*Service, error) {
	if c.Driver == nil {
		return nil, errors.New("storage driver is required")
	}
	if c.Prompts == nil {
		return nil, errors.New("prompt loader is required")
	}

	return &Service{
		driver:    c.Driver,
		indexer:   c.Indexer,
		prompts:   c.Prompts,
		completer: c.Completer,
		images:    c.ImageGenerator,
		imageOpts: c.ImageOptions,
		logger:    c.Logger.With("component", "products"),
	}, nil
}

// List returns every product.
func (s *Service) List(ctx context.Context) ([]*catalog.Product, error) {
	return s.driver.ListProducts(ctx)
}

// Get returns one product. Non-positive IDs are reported as not found.
func (s *Service) Get(ctx context.Context, id int64) (*catalog.Product, error) {
	if id <= 0 {
		return nil, storage.ProductNotFound(id)
	}
	return s.driver.GetProduct(ctx, id)
}

// Search matches keyword against the product text fields. A blank keyword
// returns every product.
func (s *Service) Search(ctx context.Context, keyword string) ([]*catalog.Product, error) {
	keyword = strings.TrimSpace(keyword)
	if keyword == "" {
		return s.driver.ListProducts(ctx)
	}
	return s.driver.SearchProducts(ctx, keyword)
}

// Save inserts p when its ID is zero and updates it otherwise. A non-nil
// img replaces the product image; on update without img the stored image is
// kept.
func (s *Service) Save(ctx context.Context, p *catalog.Product, img *catalog.Image) (*catalog.Product, error) {
	if p == nil {
		return nil, fmt.Errorf("%w: product is required", catalog.ErrInvalidProduct)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}

	switch {
	case img != nil && len(img.Data) > 0:
		p.SetImage(img)
	case p.ID > 0:
		existing, err := s.driver.GetProduct(ctx, p.ID)
		if err != nil {
			return nil, err
		}
		p.CopyImage(existing)
	}

	if err := s.driver.SaveProduct(ctx, p); err != nil {
		return nil, fmt.Errorf("saving product: %w", err)
	}

	s.logger.Info("product saved", "product_id", p.ID, "name", p.Name)
	if s.indexer != nil {
		s.indexer.ProductSaved(ctx, p)
	}
	return p, nil
}

// Delete removes a product and its vector document.
func (s *Service) Delete(ctx context.Context, id int64) error {
	if id <= 0 {
		return storage.ProductNotFound(id)
	}
	if err := s.driver.DeleteProduct(ctx, id); err != nil {
		return err
	}

	s.logger.Info("product deleted", "product_id", id)
	if s.indexer != nil {
		s.indexer.ProductDeleted(ctx, id)
	}
	return nil
}

// Image returns the stored image of a product.
func (s *Service) Image(ctx context.Context, id int64) (*catalog.Image, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if !p.HasImage() {
		return nil, ErrNoImage
	}
	return &catalog.Image{Name: p.ImageName, Type: p.ImageType, Data: p.ImageData}, nil
}

// GenerateDescription asks the language model for a short listing text.
func (s *Service) GenerateDescription(ctx context.Context, name, category string) (string, error) {
	if s.completer == nil {
		return "", ErrDescriptionGenerationDisabled
	}

	text, err := s.prompts.Render(prompt.ProductDescription, map[string]string{
		"name":     name,
		"category": category,
	})
	if err != nil {
		return "", fmt.Errorf("rendering description prompt: %w", err)
	}

	desc, err := s.completer.Complete(ctx, text)
	if err != nil {
		return "", fmt.Errorf("generating description: %w", err)
	}
	return strings.TrimSpace(desc), nil
}

// GenerateImage asks the image model for a studio style product shot.
func (s *Service) GenerateImage(ctx context.Context, name, category, description string) (*imagegen.Image, error) {
	if s.images == nil {
		return nil, ErrImageGenerationDisabled
	}

	text, err := s.prompts.Render(prompt.ProductImage, map[string]string{
		"name":        name,
		"category":    category,
		"description": description,
	})
	if err != nil {
		return nil, fmt.Errorf("rendering image prompt: %w", err)
	}

	img, err := s.images.Generate(ctx, text, s.imageOpts.WithDefaults())
	if err != nil {
		return nil, fmt.Errorf("generating image: %w", err)
	}

	s.logger.Info("product image generated",
		"name", name,
		"bytes", len(img.Data),
		"media_type", img.MediaType,
	)
	return img, nil
}

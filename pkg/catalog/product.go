// Package catalog holds the shelf domain model: products, orders and the
// request/response shapes exchanged with clients.
package catalog

import (
	"errors"
	"fmt"
	"strings"
)

// Stock status labels.
const (
	StockIn  = "In Stock"
	StockLow = "Low Stock"
	StockOut = "Out of Stock"

	// lowStockThreshold is the quantity above which a product is fully in stock.
	lowStockThreshold = 10
)

var (
	// ErrInvalidProduct is returned when a product fails validation.
	ErrInvalidProduct = errors.New("invalid product")
)

// Product is a catalog entry. ImageData is never serialized into listings;
// clients fetch it from the product image endpoint.
type Product struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Brand            string `json:"brand"`
	Price            Money  `json:"price"`
	Category         string `json:"category"`
	ReleaseDate      Date   `json:"releaseDate"`
	ProductAvailable bool   `json:"productAvailable"`
	StockQuantity    int    `json:"stockQuantity"`
	ImageName        string `json:"imageName,omitempty"`
	ImageType        string `json:"imageType,omitempty"`
	ImageData        []byte `json:"-"`
}

// Image is an uploaded or generated product image.
type Image struct {
	Name string
	Type string
	Data []byte
}

// HasImage reports whether the product carries image bytes.
func (p *Product) HasImage() bool {
	return len(p.ImageData) > 0
}

// SetImage replaces the product's image fields.
func (p *Product) SetImage(img *Image) {
	p.ImageName = img.Name
	p.ImageType = img.Type
	p.ImageData = img.Data
}

// CopyImage carries the image fields of other over to p.
func (p *Product) CopyImage(other *Product) {
	p.ImageName = other.ImageName
	p.ImageType = other.ImageType
	p.ImageData = other.ImageData
}

// StockStatus returns the stock label for the product's quantity.
func (p *Product) StockStatus() string {
	return StockStatus(p.StockQuantity)
}

// StockStatus maps a quantity to its stock label.
func StockStatus(qty int) string {
	switch {
	case qty > lowStockThreshold:
		return StockIn
	case qty > 0:
		return StockLow
	default:
		return StockOut
	}
}

// Validate checks the fields a client must supply.
func (p *Product) Validate() error {
	var problems []string
	if strings.TrimSpace(p.Name) == "" {
		problems = append(problems, "name is required")
	}
	if p.Price.IsNegative() {
		problems = append(problems, "price must not be negative")
	}
	if p.StockQuantity < 0 {
		problems = append(problems, "stockQuantity must not be negative")
	}

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidProduct, strings.Join(problems, "; "))
	}
	return nil
}

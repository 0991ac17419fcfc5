// Package seed generates plausible catalog data for demos and tests.
package seed

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"github.com/papercomputeco/shelf/pkg/catalog"
)

const maxItemsPerOrder = 3

// categories maps each category to the item nouns its products are named
// after.
var categories = map[string][]string{
	"Electronics": {"Laptop", "Headphones", "Mouse", "Keyboard", "Monitor", "Speaker", "Webcam"},
	"Home":        {"Lamp", "Kettle", "Blender", "Chair", "Rug", "Clock"},
	"Sports":      {"Yoga Mat", "Dumbbell", "Tennis Racket", "Bike Helmet", "Water Bottle"},
	"Books":       {"Cookbook", "Novel", "Field Guide", "Atlas"},
	"Toys":        {"Puzzle", "Robot Kit", "Board Game", "Kite"},
}

var categoryNames = []string{"Electronics", "Home", "Sports", "Books", "Toys"}

var (
	releaseWindowStart = time.Date(2020, time.January, 1, 0, 0, 0, 0, time.UTC)
	releaseWindowEnd   = time.Date(2025, time.December, 31, 0, 0, 0, 0, time.UTC)
)

// Generator produces products and order requests. Two generators built
// with the same seed produce the same sequence.
type Generator struct {
	faker *gofakeit.Faker
}

// New creates a Generator. A zero seed picks a random one.
func New(seed int64) *Generator {
	return &Generator{faker: gofakeit.New(seed)}
}

// Product returns an unsaved product.
func (g *Generator) Product() *catalog.Product {
	f := g.faker

	category := f.RandomString(categoryNames)
	item := f.RandomString(categories[category])
	brand := f.Company()
	stock := f.Number(0, 60)

	return &catalog.Product{
		Name:             f.Adjective() + " " + item,
		Description:      f.Sentence(12),
		Brand:            brand,
		Price:            catalog.NewMoney(decimal.NewFromFloat(f.Price(5, 1500)).Round(2)),
		Category:         category,
		ReleaseDate:      catalog.NewDate(f.DateRange(releaseWindowStart, releaseWindowEnd)),
		ProductAvailable: stock > 0,
		StockQuantity:    stock,
	}
}

// Products returns n unsaved products.
func (g *Generator) Products(n int) []*catalog.Product {
	out := make([]*catalog.Product, 0, n)
	for range n {
		out = append(out, g.Product())
	}
	return out
}

// OrderRequest returns a request for up to three distinct in-stock products
// from the given list, never asking for more than is in stock. It returns
// nil when nothing is in stock.
func (g *Generator) OrderRequest(products []*catalog.Product) *catalog.OrderRequest {
	f := g.faker

	var inStock []*catalog.Product
	for _, p := range products {
		if p.ID > 0 && p.StockQuantity > 0 {
			inStock = append(inStock, p)
		}
	}
	if len(inStock) == 0 {
		return nil
	}

	f.ShuffleAnySlice(inStock)
	count := f.Number(1, min(maxItemsPerOrder, len(inStock)))

	req := &catalog.OrderRequest{
		CustomerName: f.Name(),
		Email:        f.Email(),
	}
	for _, p := range inStock[:count] {
		req.Items = append(req.Items, catalog.OrderItemRequest{
			ProductID: p.ID,
			Quantity:  f.Number(1, min(maxItemsPerOrder, p.StockQuantity)),
		})
	}
	return req
}

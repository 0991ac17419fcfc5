package indexer_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/indexer"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
	"github.com/papercomputeco/shelf/pkg/vector"
)

var _ = Describe("Documents", func() {
	Describe("ProductDocument", func() {
		It("renders every product field", func() {
			p := testutils.NewTestProduct("Gaming Laptop")
			p.ID = 12
			p.StockQuantity = 4

			doc := indexer.ProductDocument(p)
			Expect(doc.ID).To(Equal("product-12"))
			Expect(doc.Content).To(Equal("Product Information:\n" +
				"Product ID: 12\n" +
				"Name: Gaming Laptop\n" +
				"Description: Gaming Laptop description\n" +
				"Brand: Acme\n" +
				"Category: Electronics\n" +
				"Price: $49.99\n" +
				"Release Date: 2024-03-01\n" +
				"Available: Yes\n" +
				"Stock Quantity: 4\n" +
				"Stock Status: Low Stock\n"))
			Expect(doc.Metadata).To(Equal(map[string]string{
				vector.MetaType:        vector.TypeProduct,
				vector.MetaProductID:   "12",
				vector.MetaProductName: "Gaming Laptop",
				vector.MetaCategory:    "Electronics",
			}))
			Expect(doc.Embedding).To(BeEmpty())
		})

		It("reports unavailable products and pads prices", func() {
			p := testutils.NewTestProduct("Cable")
			p.ID = 3
			p.ProductAvailable = false
			p.StockQuantity = 0
			p.Price = catalog.NewMoney(decimal.NewFromInt(5))

			doc := indexer.ProductDocument(p)
			Expect(doc.Content).To(ContainSubstring("Price: $5.00\n"))
			Expect(doc.Content).To(ContainSubstring("Available: No\n"))
			Expect(doc.Content).To(ContainSubstring("Stock Status: Out of Stock\n"))
		})
	})

	Describe("OrderDocument", func() {
		It("renders the order header and one line per item", func() {
			headphones := &catalog.Product{ID: 1, Name: "Headphones", Price: catalog.MustParseMoney("49.99")}
			cable := &catalog.Product{ID: 2, Name: "Cable", Price: catalog.MustParseMoney("5")}

			o := testutils.NewTestOrder(headphones)
			o.OrderID = "ORDABCD1234"
			o.Items = append(o.Items, catalog.NewOrderItem(cable, 3))

			doc := indexer.OrderDocument(o)
			Expect(doc.ID).To(Equal("ORDABCD1234"))
			Expect(doc.Content).To(Equal("Order ID: ORDABCD1234\n" +
				"Customer: Ada Lovelace\n" +
				"Email: ada@example.com\n" +
				"Date: 2025-01-02\n" +
				"Status: PLACED\n" +
				"Total: $64.99\n" +
				"Product: Headphones, Qty: 1, Total: $49.99\n" +
				"Product: Cable, Qty: 3, Total: $15.00\n"))
			Expect(doc.Metadata).To(Equal(map[string]string{
				vector.MetaType:         vector.TypeOrder,
				vector.MetaOrderID:      "ORDABCD1234",
				vector.MetaCustomerName: "Ada Lovelace",
				vector.MetaStatus:       catalog.StatusPlaced,
			}))
		})
	})
})

package testutils

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/shopspring/decimal"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/storage"
)

// NewTestProduct returns an unsaved product with sensible defaults.
func NewTestProduct(name string) *catalog.Product {
	return &catalog.Product{
		Name:             name,
		Description:      name + " description",
		Brand:            "Acme",
		Price:            catalog.MustParseMoney("49.99"),
		Category:         "Electronics",
		ReleaseDate:      mustParseDate("2024-03-01"),
		ProductAvailable: true,
		StockQuantity:    20,
	}
}

// NewTestOrder returns an unsaved order for a single unit of p.
func NewTestOrder(p *catalog.Product) *catalog.Order {
	return &catalog.Order{
		OrderID:      catalog.NewOrderID(),
		CustomerName: "Ada Lovelace",
		Email:        "ada@example.com",
		Status:       catalog.StatusPlaced,
		OrderDate:    mustParseDate("2025-01-02"),
		Items:        []catalog.OrderItem{catalog.NewOrderItem(p, 1)},
	}
}

func mustParseDate(s string) catalog.Date {
	d, err := catalog.ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// DescribeStorageDriver registers the behaviors every storage.Driver must
// share. newDriver is called before each test; the driver is closed after.
func DescribeStorageDriver(newDriver func() storage.Driver) {
	var (
		driver storage.Driver
		ctx    context.Context
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
	})

	AfterEach(func() {
		if driver != nil {
			Expect(driver.Close()).To(Succeed())
		}
	})

	Describe("SaveProduct and GetProduct", func() {
		It("assigns an ID on insert and reads every field back", func() {
			p := NewTestProduct("Laptop")
			p.ImageName = "laptop.png"
			p.ImageType = "image/png"
			p.ImageData = []byte{0x89, 0x50, 0x4e, 0x47}

			Expect(driver.SaveProduct(ctx, p)).To(Succeed())
			Expect(p.ID).To(BeNumerically(">", 0))

			got, err := driver.GetProduct(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Laptop"))
			Expect(got.Description).To(Equal("Laptop description"))
			Expect(got.Brand).To(Equal("Acme"))
			Expect(got.Price.Equal(decimal.RequireFromString("49.99"))).To(BeTrue())
			Expect(got.Category).To(Equal("Electronics"))
			Expect(got.ReleaseDate.String()).To(Equal("2024-03-01"))
			Expect(got.ProductAvailable).To(BeTrue())
			Expect(got.StockQuantity).To(Equal(20))
			Expect(got.ImageName).To(Equal("laptop.png"))
			Expect(got.ImageType).To(Equal("image/png"))
			Expect(got.ImageData).To(Equal([]byte{0x89, 0x50, 0x4e, 0x47}))
		})

		It("updates an existing product in place", func() {
			p := NewTestProduct("Phone")
			Expect(driver.SaveProduct(ctx, p)).To(Succeed())
			id := p.ID

			p.Name = "Phone Pro"
			p.StockQuantity = 3
			Expect(driver.SaveProduct(ctx, p)).To(Succeed())
			Expect(p.ID).To(Equal(id))

			got, err := driver.GetProduct(ctx, id)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Phone Pro"))
			Expect(got.StockQuantity).To(Equal(3))

			all, err := driver.ListProducts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(1))
		})

		It("keeps products without a release date or image", func() {
			p := NewTestProduct("Cable")
			p.ReleaseDate = catalog.Date{}
			Expect(driver.SaveProduct(ctx, p)).To(Succeed())

			got, err := driver.GetProduct(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.ReleaseDate.IsZero()).To(BeTrue())
			Expect(got.HasImage()).To(BeFalse())
			Expect(got.ImageName).To(BeEmpty())
		})

		It("returns NotFoundError for a missing product", func() {
			_, err := driver.GetProduct(ctx, 9999)
			Expect(err).To(HaveOccurred())

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Kind).To(Equal(storage.KindProduct))
			Expect(notFound.Key).To(Equal("9999"))
		})

		It("returns NotFoundError when updating a missing product", func() {
			p := NewTestProduct("Ghost")
			p.ID = 4242

			var notFound storage.NotFoundError
			Expect(errors.As(driver.SaveProduct(ctx, p), &notFound)).To(BeTrue())
		})

		It("rejects nil products", func() {
			err := driver.SaveProduct(ctx, nil)
			Expect(err).To(HaveOccurred())
			Expect(err.Error()).To(ContainSubstring("nil product"))
		})
	})

	Describe("ListProducts", func() {
		It("returns an empty list for an empty store", func() {
			all, err := driver.ListProducts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(BeEmpty())
		})

		It("orders products by ID", func() {
			for _, name := range []string{"A", "B", "C"} {
				Expect(driver.SaveProduct(ctx, NewTestProduct(name))).To(Succeed())
			}

			all, err := driver.ListProducts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(all).To(HaveLen(3))
			Expect(all[0].Name).To(Equal("A"))
			Expect(all[2].Name).To(Equal("C"))
		})
	})

	Describe("DeleteProduct", func() {
		It("removes the product", func() {
			p := NewTestProduct("Doomed")
			Expect(driver.SaveProduct(ctx, p)).To(Succeed())
			Expect(driver.DeleteProduct(ctx, p.ID)).To(Succeed())

			_, err := driver.GetProduct(ctx, p.ID)
			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})

		It("returns NotFoundError for a missing product", func() {
			var notFound storage.NotFoundError
			Expect(errors.As(driver.DeleteProduct(ctx, 31337), &notFound)).To(BeTrue())
		})
	})

	Describe("SearchProducts", func() {
		BeforeEach(func() {
			laptop := NewTestProduct("Gaming Laptop")
			laptop.Brand = "Zephyr"
			Expect(driver.SaveProduct(ctx, laptop)).To(Succeed())

			shirt := NewTestProduct("Shirt")
			shirt.Category = "Clothing"
			shirt.Description = "Soft cotton tee"
			Expect(driver.SaveProduct(ctx, shirt)).To(Succeed())
		})

		DescribeTable("matches case-insensitively across text fields",
			func(keyword string, expected []string) {
				found, err := driver.SearchProducts(ctx, keyword)
				Expect(err).NotTo(HaveOccurred())

				names := make([]string, 0, len(found))
				for _, p := range found {
					names = append(names, p.Name)
				}
				Expect(names).To(Equal(expected))
			},
			Entry("name", "laptop", []string{"Gaming Laptop"}),
			Entry("brand", "ZEPHYR", []string{"Gaming Laptop"}),
			Entry("description", "Cotton", []string{"Shirt"}),
			Entry("category", "cloth", []string{"Shirt"}),
			Entry("no match", "submarine", []string{}),
		)
	})

	Describe("SaveOrder and GetOrder", func() {
		var product *catalog.Product

		BeforeEach(func() {
			product = NewTestProduct("Headphones")
			Expect(driver.SaveProduct(ctx, product)).To(Succeed())
		})

		It("persists the order with its items", func() {
			order := NewTestOrder(product)
			order.Items = append(order.Items, catalog.NewOrderItem(product, 2))

			Expect(driver.SaveOrder(ctx, order)).To(Succeed())
			Expect(order.ID).To(BeNumerically(">", 0))
			Expect(order.Items[0].ID).To(BeNumerically(">", 0))

			got, err := driver.GetOrder(ctx, order.OrderID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.CustomerName).To(Equal("Ada Lovelace"))
			Expect(got.Email).To(Equal("ada@example.com"))
			Expect(got.Status).To(Equal(catalog.StatusPlaced))
			Expect(got.OrderDate.String()).To(Equal("2025-01-02"))
			Expect(got.Items).To(HaveLen(2))
			Expect(got.Items[0].ProductID).To(Equal(product.ID))
			Expect(got.Items[0].ProductName).To(Equal("Headphones"))
			Expect(got.Items[1].Quantity).To(Equal(2))
			Expect(got.Total().Equal(decimal.RequireFromString("149.97"))).To(BeTrue())
		})

		It("keeps order lines after the product is deleted", func() {
			order := NewTestOrder(product)
			Expect(driver.SaveOrder(ctx, order)).To(Succeed())
			Expect(driver.DeleteProduct(ctx, product.ID)).To(Succeed())

			got, err := driver.GetOrder(ctx, order.OrderID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Items).To(HaveLen(1))
			Expect(got.Items[0].ProductName).To(Equal("Headphones"))
		})

		It("returns NotFoundError for a missing order", func() {
			_, err := driver.GetOrder(ctx, "ORDMISSING")

			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
			Expect(notFound.Kind).To(Equal(storage.KindOrder))
		})

		It("lists orders with their items", func() {
			first := NewTestOrder(product)
			second := NewTestOrder(product)
			Expect(driver.SaveOrder(ctx, first)).To(Succeed())
			Expect(driver.SaveOrder(ctx, second)).To(Succeed())

			orders, err := driver.ListOrders(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(orders).To(HaveLen(2))
			Expect(orders[0].OrderID).To(Equal(first.OrderID))
			Expect(orders[1].Items).To(HaveLen(1))
		})
	})

	Describe("InTx", func() {
		It("commits every write when fn succeeds", func() {
			product := NewTestProduct("Keyboard")
			Expect(driver.SaveProduct(ctx, product)).To(Succeed())

			order := NewTestOrder(product)
			err := driver.InTx(ctx, func(tx storage.Driver) error {
				product.StockQuantity--
				if err := tx.SaveProduct(ctx, product); err != nil {
					return err
				}
				return tx.SaveOrder(ctx, order)
			})
			Expect(err).NotTo(HaveOccurred())

			got, err := driver.GetProduct(ctx, product.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.StockQuantity).To(Equal(19))

			_, err = driver.GetOrder(ctx, order.OrderID)
			Expect(err).NotTo(HaveOccurred())
		})

		It("rolls back every write when fn fails", func() {
			product := NewTestProduct("Mouse")
			Expect(driver.SaveProduct(ctx, product)).To(Succeed())

			boom := errors.New("boom")
			order := NewTestOrder(product)
			err := driver.InTx(ctx, func(tx storage.Driver) error {
				changed := *product
				changed.StockQuantity = 0
				if err := tx.SaveProduct(ctx, &changed); err != nil {
					return err
				}
				if err := tx.SaveOrder(ctx, order); err != nil {
					return err
				}
				return boom
			})
			Expect(err).To(MatchError(boom))

			got, err := driver.GetProduct(ctx, product.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.StockQuantity).To(Equal(20))

			orders, err := driver.ListOrders(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(orders).To(BeEmpty())
		})
	})
}

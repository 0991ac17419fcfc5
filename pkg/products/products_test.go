package products_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/catalog"
	"github.com/papercomputeco/shelf/pkg/imagegen"
	"github.com/papercomputeco/shelf/pkg/logger"
	"github.com/papercomputeco/shelf/pkg/products"
	"github.com/papercomputeco/shelf/pkg/prompt"
	"github.com/papercomputeco/shelf/pkg/storage"
	"github.com/papercomputeco/shelf/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
)

var _ = Describe("Service", func() {
	var (
		ctx       context.Context
		driver    *inmemory.Driver
		idx       *testutils.MockIndexer
		completer *testutils.MockCompleter
		images    *testutils.MockImageGenerator
		svc       *products.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		idx = testutils.NewMockIndexer()
		completer = testutils.NewMockCompleter("  A bright and sturdy lamp.\n")
		images = testutils.NewMockImageGenerator()

		var err error
		svc, err = products.New(products.Config{
			Driver:         driver,
			Indexer:        idx,
			Prompts:        prompt.NewLoader("", logger.Nop()),
			Completer:      completer,
			ImageGenerator: images,
			Logger:         logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires a driver and a prompt loader", func() {
		_, err := products.New(products.Config{Logger: logger.Nop()})
		Expect(err).To(MatchError("storage driver is required"))

		_, err = products.New(products.Config{Driver: driver, Logger: logger.Nop()})
		Expect(err).To(MatchError("prompt loader is required"))
	})

	Describe("Save", func() {
		It("inserts, stores the image and notifies the indexer", func() {
			p := testutils.NewTestProduct("Lamp")
			saved, err := svc.Save(ctx, p, &catalog.Image{Name: "lamp.png", Type: "image/png", Data: []byte("png")})
			Expect(err).NotTo(HaveOccurred())
			Expect(saved.ID).To(BeNumerically(">", 0))
			Expect(idx.Calls()).To(Equal([]string{"product_saved:1"}))

			img, err := svc.Image(ctx, saved.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Name).To(Equal("lamp.png"))
			Expect(img.Type).To(Equal("image/png"))
			Expect(img.Data).To(Equal([]byte("png")))
		})

		It("keeps the stored image when an update carries none", func() {
			p := testutils.NewTestProduct("Lamp")
			_, err := svc.Save(ctx, p, &catalog.Image{Name: "lamp.png", Type: "image/png", Data: []byte("png")})
			Expect(err).NotTo(HaveOccurred())

			update := testutils.NewTestProduct("Lamp v2")
			update.ID = p.ID
			_, err = svc.Save(ctx, update, nil)
			Expect(err).NotTo(HaveOccurred())

			got, err := svc.Get(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(got.Name).To(Equal("Lamp v2"))
			Expect(got.ImageName).To(Equal("lamp.png"))
			Expect(got.ImageData).To(Equal([]byte("png")))
		})

		It("replaces the image when an update carries one", func() {
			p := testutils.NewTestProduct("Lamp")
			_, err := svc.Save(ctx, p, &catalog.Image{Name: "a.png", Type: "image/png", Data: []byte("a")})
			Expect(err).NotTo(HaveOccurred())

			update := testutils.NewTestProduct("Lamp")
			update.ID = p.ID
			_, err = svc.Save(ctx, update, &catalog.Image{Name: "b.jpg", Type: "image/jpeg", Data: []byte("b")})
			Expect(err).NotTo(HaveOccurred())

			img, err := svc.Image(ctx, p.ID)
			Expect(err).NotTo(HaveOccurred())
			Expect(img.Name).To(Equal("b.jpg"))
		})

		It("rejects invalid products without touching the indexer", func() {
			_, err := svc.Save(ctx, &catalog.Product{}, nil)
			Expect(errors.Is(err, catalog.ErrInvalidProduct)).To(BeTrue())
			Expect(idx.Calls()).To(BeEmpty())
		})

		It("reports updates of missing products as not found", func() {
			p := testutils.NewTestProduct("Ghost")
			p.ID = 99

			_, err := svc.Save(ctx, p, nil)
			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Describe("Get", func() {
		It("treats non-positive IDs as not found", func() {
			_, err := svc.Get(ctx, 0)
			var notFound storage.NotFoundError
			Expect(errors.As(err, &notFound)).To(BeTrue())
		})
	})

	Describe("Search", func() {
		BeforeEach(func() {
			for _, name := range []string{"Desk Lamp", "Office Chair"} {
				_, err := svc.Save(ctx, testutils.NewTestProduct(name), nil)
				Expect(err).NotTo(HaveOccurred())
			}
		})

		It("returns every product for a blank keyword", func() {
			found, err := svc.Search(ctx, "   ")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(2))
		})

		It("matches by keyword", func() {
			found, err := svc.Search(ctx, "chair")
			Expect(err).NotTo(HaveOccurred())
			Expect(found).To(HaveLen(1))
			Expect(found[0].Name).To(Equal("Office Chair"))
		})
	})

	Describe("Delete", func() {
		It("deletes and notifies the indexer", func() {
			p := testutils.NewTestProduct("Lamp")
			_, err := svc.Save(ctx, p, nil)
			Expect(err).NotTo(HaveOccurred())

			Expect(svc.Delete(ctx, p.ID)).To(Succeed())
			Expect(idx.Calls()).To(Equal([]string{"product_saved:1", "product_deleted:1"}))
		})

		It("does not notify the indexer for missing products", func() {
			var notFound storage.NotFoundError
			Expect(errors.As(svc.Delete(ctx, 5), &notFound)).To(BeTrue())
			Expect(idx.Calls()).To(BeEmpty())
		})
	})

	Describe("Image", func() {
		It("returns ErrNoImage for products without one", func() {
			p := testutils.NewTestProduct("Lamp")
			_, err := svc.Save(ctx, p, nil)
			Expect(err).NotTo(HaveOccurred())

			_, err = svc.Image(ctx, p.ID)
			Expect(err).To(MatchError(products.ErrNoImage))
		})
	})

	Describe("GenerateDescription", func() {
		It("renders the prompt and trims the answer", func() {
			desc, err := svc.GenerateDescription(ctx, "Desk Lamp", "Home")
			Expect(err).NotTo(HaveOccurred())
			Expect(desc).To(Equal("A bright and sturdy lamp."))

			Expect(completer.Prompts).To(HaveLen(1))
			Expect(completer.Prompts[0]).To(ContainSubstring("Product Name: Desk Lamp"))
			Expect(completer.Prompts[0]).To(ContainSubstring("Category: Home"))
		})

		It("wraps completer failures", func() {
			completer.Err = errors.New("rate limited")
			_, err := svc.GenerateDescription(ctx, "Desk Lamp", "Home")
			Expect(err).To(MatchError(ContainSubstring("generating description: rate limited")))
		})
	})

	Describe("GenerateImage", func() {
		It("renders the prompt and uses default options", func() {
			img, err := svc.GenerateImage(ctx, "Desk Lamp", "Home", "A lamp")
			Expect(err).NotTo(HaveOccurred())
			Expect(img.MediaType).To(Equal("image/png"))

			Expect(images.Prompts[0]).To(ContainSubstring("Name: Desk Lamp"))
			Expect(images.Prompts[0]).To(ContainSubstring("Description: A lamp"))
			Expect(images.Options[0]).To(Equal(imagegen.Options{
				N:       imagegen.DefaultN,
				Width:   imagegen.DefaultWidth,
				Height:  imagegen.DefaultHeight,
				Quality: imagegen.DefaultQuality,
			}))
		})

		It("reports a missing generator", func() {
			bare, err := products.New(products.Config{
				Driver:  driver,
				Prompts: prompt.NewLoader("", logger.Nop()),
				Logger:  logger.Nop(),
			})
			Expect(err).NotTo(HaveOccurred())

			_, err = bare.GenerateImage(ctx, "Desk Lamp", "Home", "A lamp")
			Expect(err).To(MatchError(products.ErrImageGenerationDisabled))

			_, err = bare.GenerateDescription(ctx, "Desk Lamp", "Home")
			Expect(err).To(MatchError(products.ErrDescriptionGenerationDisabled))
		})
	})
})

package indexer_test

import (
	"context"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	cacheinmemory "github.com/papercomputeco/shelf/pkg/cache/inmemory"
	"github.com/papercomputeco/shelf/pkg/indexer"
	"github.com/papercomputeco/shelf/pkg/logger"
	storageinmemory "github.com/papercomputeco/shelf/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
	"github.com/papercomputeco/shelf/pkg/vectorstore"
)

var _ = Describe("Syncer", func() {
	var (
		ctx      context.Context
		driver   *testutils.MockVectorDriver
		embedder *testutils.MockEmbedder
		cache    *cacheinmemory.Cache
		syncer   *indexer.Syncer
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = testutils.NewMockVectorDriver()
		embedder = testutils.NewMockEmbedder()
		cache = cacheinmemory.NewCache()
		store := vectorstore.New(driver, embedder, logger.Nop())
		syncer = indexer.NewSyncer(store, cache, logger.Nop())
	})

	Describe("ProductSaved", func() {
		It("deletes the stale document before adding the new one", func() {
			p := testutils.NewTestProduct("Lamp")
			p.ID = 7

			syncer.ProductSaved(ctx, p)

			Expect(driver.CallLog()).To(Equal([]string{
				"delete_where:productId=7",
				"add:product-7",
			}))
			Expect(driver.Documents).To(HaveLen(1))
			Expect(driver.Documents[0].Embedding).To(Equal([]float32{0.1, 0.2, 0.3}))
		})

		It("swallows vector store failures", func() {
			driver.FailAdd = true
			p := testutils.NewTestProduct("Lamp")
			p.ID = 7

			Expect(func() { syncer.ProductSaved(ctx, p) }).NotTo(Panic())
			Expect(driver.Documents).To(BeEmpty())
		})

		It("swallows embedding failures without adding", func() {
			p := testutils.NewTestProduct("Lamp")
			p.ID = 7
			embedder.FailOn = indexer.ProductDocument(p).Content

			syncer.ProductSaved(ctx, p)
			Expect(driver.CallLog()).To(Equal([]string{"delete_where:productId=7"}))
		})

		It("clears the chat cache even when syncing fails", func() {
			Expect(cache.Set(ctx, "q", "a", 0)).To(Succeed())
			driver.FailDeleteWhere = true

			p := testutils.NewTestProduct("Lamp")
			p.ID = 7
			syncer.ProductSaved(ctx, p)

			_, ok, err := cache.Get(ctx, "q")
			Expect(err).NotTo(HaveOccurred())
			Expect(ok).To(BeFalse())
			Expect(driver.CallLog()).To(BeEmpty())
		})
	})

	Describe("ProductDeleted", func() {
		It("deletes by product ID", func() {
			syncer.ProductDeleted(ctx, 9)
			Expect(driver.CallLog()).To(Equal([]string{"delete_where:productId=9"}))
		})
	})

	Describe("OrderPlaced", func() {
		It("replaces the order document", func() {
			p := testutils.NewTestProduct("Mouse")
			p.ID = 2
			o := testutils.NewTestOrder(p)

			syncer.OrderPlaced(ctx, o)

			Expect(driver.CallLog()).To(Equal([]string{
				"delete_where:orderId=" + o.OrderID,
				"add:" + o.OrderID,
			}))
		})

		It("returns the error from SyncOrder", func() {
			driver.FailAdd = true
			p := testutils.NewTestProduct("Mouse")
			p.ID = 2

			err := syncer.SyncOrder(ctx, testutils.NewTestOrder(p))
			Expect(err).To(MatchError(testutils.ErrMockVector))
			Expect(err.Error()).To(ContainSubstring("adding order document"))
		})
	})

	Describe("Reindex", func() {
		var store *storageinmemory.Driver

		BeforeEach(func() {
			store = storageinmemory.NewDriver()
			for _, name := range []string{"Desk", "Chair", "Shelf"} {
				Expect(store.SaveProduct(ctx, testutils.NewTestProduct(name))).To(Succeed())
			}
			products, err := store.ListProducts(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(store.SaveOrder(ctx, testutils.NewTestOrder(products[0]))).To(Succeed())
		})

		It("rebuilds every product and order document", func() {
			stats, err := syncer.Reindex(ctx, store)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Products).To(Equal(3))
			Expect(stats.Orders).To(Equal(1))
			Expect(stats.Failed).To(BeZero())

			ids := make([]string, 0, len(driver.Documents))
			for _, doc := range driver.Documents {
				ids = append(ids, doc.ID)
			}
			Expect(ids).To(ContainElements("product-1", "product-2", "product-3"))
			Expect(ids).To(HaveLen(4))
		})

		It("counts failed documents without aborting", func() {
			driver.FailAdd = true

			stats, err := syncer.Reindex(ctx, store)
			Expect(err).NotTo(HaveOccurred())
			Expect(stats.Failed).To(Equal(4))
		})

		It("stops when the context is cancelled", func() {
			cancelled, cancel := context.WithCancel(ctx)
			cancel()

			_, err := syncer.Reindex(cancelled, store)
			Expect(err).To(HaveOccurred())
		})
	})
})

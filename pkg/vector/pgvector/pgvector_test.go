package pgvector_test

import (
	"context"
	"fmt"
	"os"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/logger"
	"github.com/papercomputeco/shelf/pkg/vector"
	"github.com/papercomputeco/shelf/pkg/vector/pgvector"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("SHELF_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("SHELF_TEST_POSTGRES_DSN not set, skipping pgvector tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	It("requires a connection string", func() {
		_, err := pgvector.NewDriver(context.Background(), pgvector.Config{Dimensions: 3}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("connection string is required")))
	})

	It("requires dimensions", func() {
		_, err := pgvector.NewDriver(context.Background(), pgvector.Config{ConnString: "postgres://localhost"}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("dimensions cannot be 0")))
	})

	Context("against a live database", func() {
		var (
			driver *pgvector.Driver
			ctx    context.Context
		)

		BeforeEach(func() {
			ctx = context.Background()

			var err error
			driver, err = pgvector.NewDriver(ctx, pgvector.Config{
				ConnString: connStr(),
				TableName:  fmt.Sprintf("shelf_test_%d", time.Now().UnixNano()),
				Dimensions: 3,
			}, logger.Nop())
			Expect(err).NotTo(HaveOccurred())

			Expect(driver.Add(ctx, []vector.Document{
				{ID: "product-1", Content: "laptop", Metadata: map[string]string{"type": "product", "productId": "1"}, Embedding: []float32{1, 0, 0}},
				{ID: "ORD1", Content: "order", Metadata: map[string]string{"type": "order", "orderId": "ORD1"}, Embedding: []float32{0, 1, 0}},
			})).To(Succeed())
		})

		AfterEach(func() {
			if driver != nil {
				driver.Close()
			}
		})

		It("queries by cosine similarity", func() {
			results, err := driver.Query(ctx, []float32{1, 0, 0}, 2)
			Expect(err).NotTo(HaveOccurred())
			Expect(results).To(HaveLen(2))
			Expect(results[0].ID).To(Equal("product-1"))
			Expect(results[0].Score).To(BeNumerically("~", 1.0, 1e-5))
			Expect(results[0].Metadata).To(HaveKeyWithValue("productId", "1"))
		})

		It("deletes by metadata containment", func() {
			Expect(driver.DeleteWhere(ctx, vector.Filter{"productId": "1"})).To(Succeed())

			docs, err := driver.Get(ctx, []string{"product-1", "ORD1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(docs).To(HaveLen(1))
			Expect(docs[0].ID).To(Equal("ORD1"))
			Expect(docs[0].Embedding).To(Equal([]float32{0, 1, 0}))
		})
	})
})

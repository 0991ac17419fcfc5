package postgres_test

import (
	"context"
	"os"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/storage"
	"github.com/papercomputeco/shelf/pkg/storage/postgres"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
)

// connStr returns the PostgreSQL connection string from environment or skips the test.
func connStr() string {
	dsn := os.Getenv("SHELF_TEST_POSTGRES_DSN")
	if dsn == "" {
		Skip("SHELF_TEST_POSTGRES_DSN not set, skipping PostgreSQL tests")
	}
	return dsn
}

var _ = Describe("Driver", func() {
	testutils.DescribeStorageDriver(func() storage.Driver {
		ctx := context.Background()

		d, err := postgres.NewDriver(ctx, connStr())
		Expect(err).NotTo(HaveOccurred())

		// Clean all rows before each test for isolation.
		err = d.DB.Exec(ctx, "TRUNCATE order_items, orders, products RESTART IDENTITY", []any{}, nil)
		Expect(err).NotTo(HaveOccurred())

		return d
	})
})

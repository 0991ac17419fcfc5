package inmemory_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/storage"
	"github.com/papercomputeco/shelf/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
)

var _ = Describe("Driver", func() {
	testutils.DescribeStorageDriver(func() storage.Driver {
		return inmemory.NewDriver()
	})

	It("hands out copies so callers cannot mutate stored products", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()

		p := testutils.NewTestProduct("Mug")
		Expect(d.SaveProduct(ctx, p)).To(Succeed())

		got, err := d.GetProduct(ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		got.Name = "Changed"

		again, err := d.GetProduct(ctx, p.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(again.Name).To(Equal("Mug"))
		Expect(d.Count()).To(Equal(1))
	})

	It("keeps writes made outside a transaction that rolls back", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()

		stocked := testutils.NewTestProduct("Lamp")
		Expect(d.SaveProduct(ctx, stocked)).To(Succeed())

		outside := testutils.NewTestProduct("Desk")
		done := make(chan error, 1)
		boom := errors.New("out of stock")

		err := d.InTx(ctx, func(tx storage.Driver) error {
			changed := *stocked
			changed.StockQuantity = 0
			Expect(tx.SaveProduct(ctx, &changed)).To(Succeed())

			go func() { done <- d.SaveProduct(ctx, outside) }()
			Consistently(done, "50ms").ShouldNot(Receive())
			return boom
		})
		Expect(err).To(MatchError(boom))
		Eventually(done).Should(Receive(BeNil()))

		got, err := d.GetProduct(ctx, stocked.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(got.StockQuantity).To(Equal(20))

		_, err = d.GetProduct(ctx, outside.ID)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Count()).To(Equal(2))
	})

	It("joins the enclosing transaction on nested InTx", func() {
		ctx := context.Background()
		d := inmemory.NewDriver()

		boom := errors.New("boom")
		err := d.InTx(ctx, func(tx storage.Driver) error {
			return tx.InTx(ctx, func(inner storage.Driver) error {
				Expect(inner.SaveProduct(ctx, testutils.NewTestProduct("Lamp"))).To(Succeed())
				return boom
			})
		})
		Expect(err).To(MatchError(boom))
		Expect(d.Count()).To(BeZero())
	})
})

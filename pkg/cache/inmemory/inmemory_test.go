package inmemory_test

import (
	"context"
	"time"
	"unsafe"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/cache/inmemory"
)

var _ = Describe("Cache", func() {
	var (
		c   *inmemory.Cache
		ctx context.Context
		now time.Time
	)

	BeforeEach(func() {
		ctx = context.Background()
		now = time.Date(2025, 1, 2, 12, 0, 0, 0, time.UTC)
		c = inmemory.NewCache()
		c.SetClock(func() time.Time { return now })
	})

	It("misses on unknown keys", func() {
		_, ok, err := c.Get(ctx, "what is in stock?")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("returns stored values until the ttl passes", func() {
		Expect(c.Set(ctx, "q", "answer", time.Minute)).To(Succeed())

		val, ok, err := c.Get(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(val).To(Equal("answer"))

		now = now.Add(time.Minute)
		_, ok, err = c.Get(ctx, "q")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeFalse())
	})

	It("keeps entries without a ttl", func() {
		Expect(c.Set(ctx, "q", "answer", 0)).To(Succeed())
		now = now.Add(24 * time.Hour)

		_, ok, _ := c.Get(ctx, "q")
		Expect(ok).To(BeTrue())
	})

	It("clears every entry", func() {
		Expect(c.Set(ctx, "a", "1", time.Minute)).To(Succeed())
		Expect(c.Set(ctx, "b", "2", time.Minute)).To(Succeed())
		Expect(c.Clear(ctx)).To(Succeed())

		_, ok, _ := c.Get(ctx, "a")
		Expect(ok).To(BeFalse())
		_, ok, _ = c.Get(ctx, "b")
		Expect(ok).To(BeFalse())
	})

	It("keeps keys stable when the caller's buffer is reused", func() {
		buf := []byte("what is in stock?")
		key := unsafe.String(&buf[0], len(buf))
		Expect(c.Set(ctx, key, "answer", time.Minute)).To(Succeed())

		copy(buf, "which lamp is red")

		val, ok, err := c.Get(ctx, "what is in stock?")
		Expect(err).NotTo(HaveOccurred())
		Expect(ok).To(BeTrue())
		Expect(val).To(Equal("answer"))

		_, ok, _ = c.Get(ctx, "which lamp is red")
		Expect(ok).To(BeFalse())
	})
})

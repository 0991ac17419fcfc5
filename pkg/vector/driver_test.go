package vector_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/vector"
)

var _ = Describe("Filter", func() {
	meta := map[string]string{"type": "product", "productId": "7"}

	DescribeTable("Matches",
		func(f vector.Filter, expected bool) {
			Expect(f.Matches(meta)).To(Equal(expected))
		},
		Entry("empty filter", vector.Filter{}, true),
		Entry("single pair", vector.Filter{"productId": "7"}, true),
		Entry("all pairs", vector.Filter{"type": "product", "productId": "7"}, true),
		Entry("one pair differs", vector.Filter{"type": "order", "productId": "7"}, false),
		Entry("missing key", vector.Filter{"orderId": "ORD1"}, false),
	)

	It("treats nil metadata as empty", func() {
		Expect(vector.Filter{"type": "product"}.Matches(nil)).To(BeFalse())
	})
})

package askcmder_test

import (
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	askcmder "github.com/papercomputeco/shelf/cmd/shelf/ask"
	"github.com/papercomputeco/shelf/pkg/chatbot"
)

var _ = Describe("NewAskCmd", func() {
	It("creates a command with the correct use string", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Use).To(Equal("ask <question>"))
	})

	It("has --api-target flag with default value", func() {
		cmd := askcmder.NewAskCmd()
		flag := cmd.Flags().Lookup("api-target")
		Expect(flag).NotTo(BeNil())
		Expect(flag.Shorthand).To(Equal("a"))
		Expect(flag.DefValue).To(Equal("http://localhost:8080"))
	})

	It("requires a question", func() {
		cmd := askcmder.NewAskCmd()
		Expect(cmd.Args(cmd, []string{})).To(HaveOccurred())
		Expect(cmd.Args(cmd, []string{"laptops?"})).To(Succeed())
	})
})

var _ = Describe("FormatReport", func() {
	It("lists every threshold with its hits", func() {
		out := askcmder.FormatReport(&chatbot.DebugReport{
			Query: "lamps",
			Levels: []chatbot.DebugLevel{
				{Threshold: 0.0, Count: 1, Hits: []chatbot.DebugHit{
					{Type: "product", ID: "product-3", ProductID: "3", Score: 0.61},
				}},
				{Threshold: 0.9, Count: 0},
			},
		})

		Expect(out).To(ContainSubstring(`"lamps"`))
		Expect(out).To(ContainSubstring("1 documents"))
		Expect(out).To(ContainSubstring("0 documents"))
		Expect(out).To(ContainSubstring("0.6100"))
	})
})

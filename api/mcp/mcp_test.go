package mcp

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/chatbot"
	"github.com/papercomputeco/shelf/pkg/logger"
	"github.com/papercomputeco/shelf/pkg/products"
	"github.com/papercomputeco/shelf/pkg/prompt"
	"github.com/papercomputeco/shelf/pkg/storage/inmemory"
	testutils "github.com/papercomputeco/shelf/pkg/utils/test"
	"github.com/papercomputeco/shelf/pkg/vector"
	"github.com/papercomputeco/shelf/pkg/vectorstore"
)

func textOf(result *mcp.CallToolResult) string {
	Expect(result.Content).To(HaveLen(1))
	text, ok := result.Content[0].(*mcp.TextContent)
	Expect(ok).To(BeTrue())
	return text.Text
}

var _ = Describe("MCP Server", func() {
	var (
		ctx       context.Context
		server    *Server
		driver    *inmemory.Driver
		vectors   *testutils.MockVectorDriver
		completer *testutils.MockCompleter
		store     *vectorstore.Store
		bot       *chatbot.Bot
		svc       *products.Service
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = inmemory.NewDriver()
		vectors = testutils.NewMockVectorDriver()
		completer = testutils.NewMockCompleter("The Gaming Laptop is in stock.")
		store = vectorstore.New(vectors, testutils.NewMockEmbedder(), logger.Nop())
		loader := prompt.NewLoader("", logger.Nop())

		var err error
		svc, err = products.New(products.Config{
			Driver:  driver,
			Prompts: loader,
			Logger:  logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		bot, err = chatbot.New(chatbot.Config{
			Store:     store,
			Completer: completer,
			Prompts:   loader,
			Logger:    logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())

		server, err = NewServer(Config{
			Products:    svc,
			Chatbot:     bot,
			VectorStore: store,
			Logger:      logger.Nop(),
		})
		Expect(err).NotTo(HaveOccurred())
	})

	Describe("NewServer", func() {
		It("returns an error when the product service is nil", func() {
			_, err := NewServer(Config{Logger: logger.Nop()})
			Expect(err).To(MatchError("product service is required"))
		})

		It("returns an error when logger is nil", func() {
			_, err := NewServer(Config{Products: svc})
			Expect(err).To(MatchError("logger is required"))
		})

		It("builds an empty server in noop mode", func() {
			noop, err := NewServer(Config{Noop: true})
			Expect(err).NotTo(HaveOccurred())
			Expect(noop.Handler()).NotTo(BeNil())
		})

		It("returns an HTTP handler", func() {
			Expect(server.Handler()).NotTo(BeNil())
		})

		It("registers only the tools it can serve", func() {
			names := func(s *Server) []string {
				serverT, clientT := mcp.NewInMemoryTransports()
				ss, err := s.mcpServer.Connect(ctx, serverT, nil)
				Expect(err).NotTo(HaveOccurred())
				defer ss.Close()

				client := mcp.NewClient(&mcp.Implementation{Name: "test", Version: "v0"}, nil)
				cs, err := client.Connect(ctx, clientT, nil)
				Expect(err).NotTo(HaveOccurred())
				defer cs.Close()

				tools, err := cs.ListTools(ctx, &mcp.ListToolsParams{})
				Expect(err).NotTo(HaveOccurred())

				out := []string{}
				for _, t := range tools.Tools {
					out = append(out, t.Name)
				}
				return out
			}

			Expect(names(server)).To(ConsistOf("search_products", "ask_shelf", "similar_documents"))

			minimal, err := NewServer(Config{Products: svc, Logger: logger.Nop()})
			Expect(err).NotTo(HaveOccurred())
			Expect(names(minimal)).To(ConsistOf("search_products"))
		})
	})

	Describe("search_products", func() {
		BeforeEach(func() {
			Expect(driver.SaveProduct(ctx, testutils.NewTestProduct("Gaming Laptop"))).To(Succeed())
			Expect(driver.SaveProduct(ctx, testutils.NewTestProduct("Desk Lamp"))).To(Succeed())
		})

		It("returns matching products", func() {
			result, output, err := server.handleSearchProducts(ctx, nil, SearchProductsInput{Keyword: "laptop"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(1))
			Expect(output.Products[0].Name).To(Equal("Gaming Laptop"))
			Expect(output.Products[0].Price).To(Equal("49.99"))
			Expect(output.Products[0].StockStatus).To(Equal("In Stock"))

			var mirrored SearchProductsOutput
			Expect(json.Unmarshal([]byte(textOf(result)), &mirrored)).To(Succeed())
			Expect(mirrored).To(Equal(output))
		})

		It("lists everything for an empty keyword", func() {
			_, output, err := server.handleSearchProducts(ctx, nil, SearchProductsInput{})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(2))
		})
	})

	Describe("ask_shelf", func() {
		It("answers through the chatbot", func() {
			result, output, err := server.handleAsk(ctx, nil, AskInput{Question: " is the laptop in stock? "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Question).To(Equal("is the laptop in stock?"))
			Expect(output.Answer).To(Equal("The Gaming Laptop is in stock."))
			Expect(textOf(result)).To(Equal(output.Answer))
		})

		It("rejects an empty question", func() {
			result, _, err := server.handleAsk(ctx, nil, AskInput{Question: "  "})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(textOf(result)).To(Equal("question is required"))
			Expect(completer.Calls()).To(BeZero())
		})
	})

	Describe("similar_documents", func() {
		BeforeEach(func() {
			vectors.Results = []vector.QueryResult{
				{Document: vector.Document{ID: "product-1", Content: "Name: Gaming Laptop", Metadata: map[string]string{vector.MetaType: vector.TypeProduct}}, Score: 0.8},
				{Document: vector.Document{ID: "ORD1", Content: "Order ID: ORD1"}, Score: 0.2},
			}
		})

		It("returns scored documents above the threshold", func() {
			result, output, err := server.handleSimilar(ctx, nil, SimilarInput{Query: "laptop", Threshold: 0.5})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeFalse())
			Expect(output.Count).To(Equal(1))
			Expect(output.Documents[0].ID).To(Equal("product-1"))
			Expect(output.Documents[0].Preview).To(Equal("Name: Gaming Laptop"))
			Expect(output.Documents[0].Metadata).To(HaveKeyWithValue(vector.MetaType, vector.TypeProduct))
		})

		It("defaults top_k", func() {
			_, output, err := server.handleSimilar(ctx, nil, SimilarInput{Query: "laptop"})
			Expect(err).NotTo(HaveOccurred())
			Expect(output.Count).To(Equal(2))
			Expect(vectors.QueriedTopK).To(Equal([]int{defaultSimilarTopK}))
		})

		It("reports vector store failures as tool errors", func() {
			vectors.FailQuery = true
			result, _, err := server.handleSimilar(ctx, nil, SimilarInput{Query: "laptop"})
			Expect(err).NotTo(HaveOccurred())
			Expect(result.IsError).To(BeTrue())
			Expect(textOf(result)).To(ContainSubstring("Failed to query vector store"))
		})
	})
})

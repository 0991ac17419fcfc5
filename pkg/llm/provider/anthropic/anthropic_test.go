package anthropic_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/llm"
	"github.com/papercomputeco/shelf/pkg/llm/provider/anthropic"
	"github.com/papercomputeco/shelf/pkg/logger"
)

var _ = Describe("Client", func() {
	var (
		server   *httptest.Server
		received map[string]any
		headers  http.Header
		status   int
		reply    string
	)

	BeforeEach(func() {
		status = http.StatusOK
		reply = `{
			"id": "msg_1",
			"type": "message",
			"role": "assistant",
			"model": "claude-haiku-4-5-20251001",
			"content": [{"type": "text", "text": "Order ORD1 shipped."}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 20, "output_tokens": 4}
		}`

		server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer GinkgoRecover()
			Expect(r.URL.Path).To(Equal("/v1/messages"))
			headers = r.Header.Clone()
			Expect(json.NewDecoder(r.Body).Decode(&received)).To(Succeed())
			w.WriteHeader(status)
			_, _ = w.Write([]byte(reply))
		}))
	})

	AfterEach(func() {
		server.Close()
	})

	newClient := func() *anthropic.Client {
		c, err := anthropic.New(anthropic.Config{APIKey: "sk-ant", BaseURL: server.URL}, logger.Nop())
		Expect(err).NotTo(HaveOccurred())
		return c
	}

	It("requires an API key", func() {
		_, err := anthropic.New(anthropic.Config{}, logger.Nop())
		Expect(err).To(MatchError(ContainSubstring("API key is required")))
	})

	It("completes a prompt with auth headers and default max tokens", func() {
		out, err := newClient().Complete(context.Background(), "Where is ORD1?")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Order ORD1 shipped."))

		Expect(headers.Get("x-api-key")).To(Equal("sk-ant"))
		Expect(headers.Get("anthropic-version")).NotTo(BeEmpty())
		Expect(received).To(HaveKeyWithValue("model", anthropic.DefaultModel))
		Expect(received).To(HaveKeyWithValue("max_tokens", BeNumerically("==", anthropic.DefaultMaxTokens)))
		Expect(received).NotTo(HaveKey("system"))
	})

	It("folds system messages into the system prompt", func() {
		req := &llm.ChatRequest{
			System: "Be brief.",
			Messages: []llm.Message{
				llm.NewTextMessage(llm.RoleSystem, "Answer about orders."),
				llm.NewTextMessage(llm.RoleUser, "Where is ORD1?"),
			},
		}

		resp, err := newClient().Chat(context.Background(), req)
		Expect(err).NotTo(HaveOccurred())
		Expect(resp.Usage.TotalTokens).To(Equal(24))
		Expect(received).To(HaveKeyWithValue("system", "Be brief.\n\nAnswer about orders."))
		Expect(received["messages"]).To(HaveLen(1))
	})

	It("reports API errors with the status code", func() {
		status = http.StatusUnauthorized
		reply = `{"type": "error", "error": {"type": "authentication_error", "message": "bad key"}}`

		_, err := newClient().Complete(context.Background(), "hi")
		Expect(err).To(MatchError(ContainSubstring("status 401")))
	})
})

package llm_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/shelf/pkg/llm"
)

type chatFunc func(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error)

func (f chatFunc) Chat(ctx context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
	return f(ctx, req)
}

var _ = Describe("CompleteWith", func() {
	It("sends the prompt as one user message and joins text blocks", func() {
		var seen *llm.ChatRequest
		c := chatFunc(func(_ context.Context, req *llm.ChatRequest) (*llm.ChatResponse, error) {
			seen = req
			return &llm.ChatResponse{Message: llm.Message{
				Role: llm.RoleAssistant,
				Content: []llm.ContentBlock{
					{Type: "text", Text: "Hello, "},
					{Type: "thinking", Text: "ignored"},
					{Type: "text", Text: "shopper"},
				},
			}}, nil
		})

		out, err := llm.CompleteWith(context.Background(), c, "greet me")
		Expect(err).NotTo(HaveOccurred())
		Expect(out).To(Equal("Hello, shopper"))
		Expect(seen.Messages).To(HaveLen(1))
		Expect(seen.Messages[0].Role).To(Equal(llm.RoleUser))
		Expect(seen.Messages[0].GetText()).To(Equal("greet me"))
	})

	It("rejects empty answers", func() {
		c := chatFunc(func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
			return &llm.ChatResponse{}, nil
		})
		_, err := llm.CompleteWith(context.Background(), c, "hi")
		Expect(err).To(MatchError(llm.ErrEmptyCompletion))
	})

	It("passes provider errors through", func() {
		boom := errors.New("rate limited")
		c := chatFunc(func(context.Context, *llm.ChatRequest) (*llm.ChatResponse, error) {
			return nil, boom
		})
		_, err := llm.CompleteWith(context.Background(), c, "hi")
		Expect(err).To(MatchError(boom))
	})
})

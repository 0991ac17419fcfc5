// Package llm holds the provider-agnostic chat types and the Completer
// interface the rest of shelf talks to.
package llm

import (
	"context"
	"errors"
)

// ErrEmptyCompletion is returned when a provider answers without any text.
var ErrEmptyCompletion = errors.New("empty completion")

// Completer turns a rendered prompt into model output.
type Completer interface {
	Complete(ctx context.Context, prompt string) (string, error)
}

// Chatter sends full chat requests.
type Chatter interface {
	Chat(ctx context.Context, req *ChatRequest) (*ChatResponse, error)
}

// CompleteWith sends prompt as a single user message through c and returns
// the response text.
func CompleteWith(ctx context.Context, c Chatter, prompt string) (string, error) {
	resp, err := c.Chat(ctx, NewPromptRequest(prompt))
	if err != nil {
		return "", err
	}

	text := resp.Message.GetText()
	if text == "" {
		return "", ErrEmptyCompletion
	}
	return text, nil
}

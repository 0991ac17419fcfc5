package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/shelf/pkg/eventstream"
	"github.com/papercomputeco/shelf/pkg/imagegen"
)

// MockCompleter is a test llm.Completer that records prompts and returns
// a canned response.
type MockCompleter struct {
	mu sync.Mutex

	Response string
	Err      error
	Prompts  []string
}

func NewMockCompleter(response string) *MockCompleter {
	return &MockCompleter{Response: response}
}

func (m *MockCompleter) Complete(_ context.Context, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	return m.Response, nil
}

// Calls returns how many completions were requested.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	return len(m.Prompts)
}

// MockImageGenerator is a test imagegen.Generator.
type MockImageGenerator struct {
	Image   *imagegen.Image
	Err     error
	Prompts []string
	Options []imagegen.Options
}

func NewMockImageGenerator() *MockImageGenerator {
	return &MockImageGenerator{
		Image: &imagegen.Image{
			Data:      []byte{0x89, 0x50, 0x4e, 0x47},
			MediaType: "image/png",
		},
	}
}

func (m *MockImageGenerator) Generate(_ context.Context, prompt string, opts imagegen.Options) (*imagegen.Image, error) {
	m.Prompts = append(m.Prompts, prompt)
	m.Options = append(m.Options, opts)
	if m.Err != nil {
		return nil, m.Err
	}
	return m.Image, nil
}

// MockPublisher is a test eventstream.Publisher that records events.
type MockPublisher struct {
	mu sync.Mutex

	Events []*eventstream.OrderPlacedEvent
	Fail   bool
}

var ErrMockPublish = errors.New("mock publish failure")

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) PublishOrderPlaced(_ context.Context, event *eventstream.OrderPlacedEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if event == nil {
		return eventstream.ErrNilEvent
	}
	if m.Fail {
		return ErrMockPublish
	}
	m.Events = append(m.Events, event)
	return nil
}

func (m *MockPublisher) Close() error {
	return nil
}

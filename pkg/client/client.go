// Package client is a small HTTP client for the shelf chat API used by the
// ask and chat commands.
package client

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/papercomputeco/shelf/pkg/chatbot"
)

// DefaultTimeout bounds a single ask; answers wait on the LLM.
const DefaultTimeout = 5 * time.Minute

// Client talks to a running shelf API server.
type Client struct {
	target string
	http   *http.Client
}

// New creates a Client for the API at target, e.g. http://localhost:8080.
func New(target string) (*Client, error) {
	u, err := url.Parse(target)
	if err != nil {
		return nil, fmt.Errorf("invalid API target URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid API target URL: %q", target)
	}

	return &Client{
		target: strings.TrimRight(target, "/"),
		http:   &http.Client{Timeout: DefaultTimeout},
	}, nil
}

// Ask sends a question to /api/chat/ask and returns the answer text.
func (c *Client) Ask(ctx context.Context, message string) (string, error) {
	body, err := c.get(ctx, "/api/chat/ask", message)
	if err != nil {
		return "", err
	}
	return string(body), nil
}

// Debug fetches the threshold sweep for message from /api/chat/debug.
func (c *Client) Debug(ctx context.Context, message string) (*chatbot.DebugReport, error) {
	body, err := c.get(ctx, "/api/chat/debug", message)
	if err != nil {
		return nil, err
	}

	report := &chatbot.DebugReport{}
	if err := json.Unmarshal(body, report); err != nil {
		return nil, fmt.Errorf("failed to parse debug response: %w", err)
	}
	return report, nil
}

func (c *Client) get(ctx context.Context, path, message string) ([]byte, error) {
	u, err := url.Parse(c.target + path)
	if err != nil {
		return nil, fmt.Errorf("building request URL: %w", err)
	}
	q := u.Query()
	q.Set("message", message)
	u.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to shelf API at %s: %w", c.target, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("request failed (HTTP %d): %s", resp.StatusCode, apiError(body))
	}
	return body, nil
}

// apiError extracts the message from a JSON error body, falling back to the
// raw body.
func apiError(body []byte) string {
	var e struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &e); err == nil && e.Error != "" {
		return e.Error
	}
	return strings.TrimSpace(string(body))
}

// Package ollama talks to an Ollama server, the generative backend used both
// for the model under evaluation and for the evaluator model.
package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
	"wireshairk/internal/models"

	"github.com/ollama/ollama/api"
)

// DefaultURL is where a local Ollama server listens.
const DefaultURL = "http://localhost:11434"

// Client issues non-streaming, deterministic generate requests.
type Client struct {
	api  *api.Client
	base *url.URL
}

// New returns a client for the server at rawURL. A zero timeout disables the
// per-request deadline.
func New(rawURL string, timeout time.Duration) (*Client, error) {
	if rawURL == "" {
		rawURL = DefaultURL
	}
	base, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("parse ollama url %q: %w", rawURL, err)
	}
	return &Client{
		api:  api.NewClient(base, &http.Client{Timeout: timeout}),
		base: base,
	}, nil
}

// Generate returns the full completion text for req.
func (c *Client) Generate(ctx context.Context, req models.GenerateRequest) (string, error) {
	stream := false
	var out strings.Builder

	err := c.api.Generate(ctx, &api.GenerateRequest{
		Model:   req.Model,
		System:  req.System,
		Prompt:  req.Prompt,
		Stream:  &stream,
		Options: map[string]any{"temperature": 0},
	}, func(resp api.GenerateResponse) error {
		out.WriteString(resp.Response)
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("ollama generate with %s: %w", req.Model, err)
	}
	return out.String(), nil
}

// Ping checks that the server is up.
func (c *Client) Ping(ctx context.Context) error {
	if err := c.api.Heartbeat(ctx); err != nil {
		return fmt.Errorf("ollama is not running at %s: %w", c.base, err)
	}
	return nil
}

package ollama

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ollama/ollama/api"
)

// DefaultBaseURL is the loopback address of a local Ollama server.
const DefaultBaseURL = "http://localhost:11434"

type Client struct {
	client  *api.Client
	model   string
	baseURL string
}

// Options are the generation parameters passed through to /api/chat.
type Options struct {
	Temperature float64
	MaxTokens   int
}

// ResolveBaseURL returns baseURL without a trailing slash, or DefaultBaseURL when blank.
func ResolveBaseURL(baseURL string) string {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return DefaultBaseURL
	}
	return strings.TrimRight(baseURL, "/")
}

// TagsURL returns the model listing endpoint for baseURL.
func TagsURL(baseURL string) string {
	return ResolveBaseURL(baseURL) + "/api/tags"
}

func NewClient(baseURL, model string) (*Client, error) {
	baseURL = ResolveBaseURL(baseURL)
	if model == "" {
		model = "llama3.1:latest"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid Ollama URL: %w", err)
	}
	if parsedURL.Scheme == "" || parsedURL.Host == "" {
		return nil, fmt.Errorf("invalid Ollama URL: %q", baseURL)
	}

	client := api.NewClient(parsedURL, http.DefaultClient)

	return &Client{
		client:  client,
		model:   model,
		baseURL: baseURL,
	}, nil
}

// Generate sends a single user message to /api/chat with streaming disabled
// and returns the assistant's reply.
func (c *Client) Generate(ctx context.Context, prompt string, opts Options) (string, error) {
	stream := false
	req := &api.ChatRequest{
		Model: c.model,
		Messages: []api.Message{
			{Role: "user", Content: prompt},
		},
		Stream:  &stream,
		Options: buildOptions(opts),
	}

	var content strings.Builder
	respFunc := func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		return nil
	}

	if err := c.client.Chat(ctx, req, respFunc); err != nil {
		return "", err
	}
	return content.String(), nil
}

// buildOptions maps generation parameters onto Ollama option names.
func buildOptions(opts Options) map[string]any {
	options := map[string]any{
		"temperature": opts.Temperature,
	}
	if opts.MaxTokens > 0 {
		options["num_predict"] = opts.MaxTokens
	}
	return options
}

// ListModels returns the model names reported by /api/tags.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.client.List(ctx)
	if err != nil {
		return nil, err
	}

	models := make([]string, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, m.Name)
	}
	return models, nil
}

func (c *Client) GetModel() string {
	return c.model
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	_, err := c.client.List(ctx)
	return err
}

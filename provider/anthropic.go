package provider

import (
	"context"
	"strings"

	"abapai/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicVersion is sent on every request, including model listing.
const anthropicVersion = "2023-06-01"

// AnthropicGateway implements model.Gateway using Anthropic's official Go SDK.
type AnthropicGateway struct {
	cfg      model.ClientConfig
	endpoint string
}

// NewAnthropicGateway creates an Anthropic gateway. It performs no I/O.
func NewAnthropicGateway(cfg model.ClientConfig, opts ...GatewayOption) (*AnthropicGateway, error) {
	o := applyOptions(opts)
	return &AnthropicGateway{
		cfg:      cfg,
		endpoint: o.endpoint,
	}, nil
}

func (g *AnthropicGateway) Provider() model.Provider {
	return model.ProviderAnthropic
}

func (g *AnthropicGateway) newClient() anthropic.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(g.cfg.APIKey),
		option.WithHeader("anthropic-version", anthropicVersion),
		option.WithMaxRetries(0),
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithBaseURL(g.endpoint))
	}
	return anthropic.NewClient(opts...)
}

// Complete implements model.Gateway via POST /v1/messages.
func (g *AnthropicGateway) Complete(ctx context.Context, prompt string) (string, error) {
	if err := requireAPIKey(g.cfg, "call Anthropic"); err != nil {
		return "", err
	}

	client := g.newClient()
	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(g.cfg.Model),
		MaxTokens: int64(g.cfg.MaxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
		Temperature: anthropic.Float(g.cfg.Temperature.OrDefault()),
	})
	if err != nil {
		return "", mapError(g.Provider(), "Completion failed", err)
	}

	var sb strings.Builder
	for _, block := range msg.Content {
		if block.Type == "text" {
			sb.WriteString(block.Text)
		}
	}

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		return "", emptyResponseError(g.Provider())
	}
	return text, nil
}

// ListModels implements model.ModelLister via GET /v1/models, following
// after_id until has_more is false. The key is checked before any request
// is built.
func (g *AnthropicGateway) ListModels(ctx context.Context) ([]string, error) {
	if err := requireAPIKey(g.cfg, "fetch models"); err != nil {
		return nil, err
	}

	client := g.newClient()
	iter := client.Models.ListAutoPaging(ctx, anthropic.ModelListParams{})

	models := []string{}
	for iter.Next() {
		models = append(models, iter.Current().ID)
	}
	if err := iter.Err(); err != nil {
		return nil, mapError(g.Provider(), "Failed to fetch models", err)
	}
	return models, nil
}

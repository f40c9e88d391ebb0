package provider

import (
	"context"
	"strings"

	"abapai/model"
	"abapai/ollama"
)

// ollamaHint is appended to every Ollama transport failure.
const ollamaHint = " - Is Ollama running?"

// OllamaGateway wraps ollama.Client to implement model.Gateway.
//
// Ollama needs no authentication. The server address comes from
// ClientConfig.BaseURL, falling back to the local default endpoint.
type OllamaGateway struct {
	cfg      model.ClientConfig
	endpoint string
}

// NewOllamaGateway creates an Ollama gateway. The base URL is validated here so
// that a malformed setting fails at construction rather than on first use.
func NewOllamaGateway(cfg model.ClientConfig, opts ...GatewayOption) (*OllamaGateway, error) {
	o := applyOptions(opts)
	g := &OllamaGateway{
		cfg:      cfg,
		endpoint: o.endpoint,
	}
	if _, err := g.client(); err != nil {
		return nil, err
	}
	return g, nil
}

func (g *OllamaGateway) Provider() model.Provider {
	return model.ProviderOllama
}

// BaseURL returns the server address this gateway will call.
func (g *OllamaGateway) BaseURL() string {
	if g.endpoint != "" {
		return ollama.ResolveBaseURL(g.endpoint)
	}
	return ollama.ResolveBaseURL(g.cfg.EffectiveBaseURL())
}

// TagsURL returns the model listing endpoint.
func (g *OllamaGateway) TagsURL() string {
	return ollama.TagsURL(g.BaseURL())
}

func (g *OllamaGateway) client() (*ollama.Client, error) {
	c, err := ollama.NewClient(g.BaseURL(), g.cfg.Model)
	if err != nil {
		return nil, withOllamaHint(model.NewProviderError(g.Provider(), model.ErrorKindConfiguration,
			"Failed to create Ollama client: "+err.Error(), err))
	}
	return c, nil
}

// Complete implements model.Gateway via a non-streaming POST /api/chat.
func (g *OllamaGateway) Complete(ctx context.Context, prompt string) (string, error) {
	c, err := g.client()
	if err != nil {
		return "", err
	}

	text, err := c.Generate(ctx, prompt, ollama.Options{
		Temperature: g.cfg.Temperature.OrDefault(),
		MaxTokens:   g.cfg.MaxTokens,
	})
	if err != nil {
		return "", withOllamaHint(mapError(g.Provider(), "Completion failed", err))
	}
	if strings.TrimSpace(text) == "" {
		return "", emptyResponseError(g.Provider())
	}
	return text, nil
}

// ListModels implements model.ModelLister via GET /api/tags.
func (g *OllamaGateway) ListModels(ctx context.Context) ([]string, error) {
	c, err := g.client()
	if err != nil {
		return nil, err
	}

	models, err := c.ListModels(ctx)
	if err != nil {
		return nil, withOllamaHint(mapError(g.Provider(), "Failed to fetch models", err))
	}
	return models, nil
}

func withOllamaHint(err error) error {
	pe, ok := err.(*model.ProviderError)
	if !ok || strings.HasSuffix(pe.Message, ollamaHint) {
		return err
	}
	pe.Message += ollamaHint
	return pe
}

// Ping checks that the Ollama server answers.
func (g *OllamaGateway) Ping(ctx context.Context) error {
	c, err := g.client()
	if err != nil {
		return err
	}
	if err := c.Ping(ctx); err != nil {
		return withOllamaHint(mapError(g.Provider(), "Server unreachable at "+g.BaseURL(), err))
	}
	return nil
}

package provider

import (
	"context"
	"strings"

	"abapai/model"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

const (
	geminiTopP        = 0.95
	geminiTopK        = 40
	geminiModelPrefix = "models/"
)

// GeminiGateway implements model.Gateway for Google AI (Gemini) using the
// generative-ai-go SDK. A client is created per call and closed before the
// call returns.
type GeminiGateway struct {
	cfg      model.ClientConfig
	endpoint string
}

// NewGeminiGateway creates a Gemini gateway. It performs no I/O.
func NewGeminiGateway(cfg model.ClientConfig, opts ...GatewayOption) (*GeminiGateway, error) {
	o := applyOptions(opts)
	return &GeminiGateway{
		cfg:      cfg,
		endpoint: o.endpoint,
	}, nil
}

func (g *GeminiGateway) Provider() model.Provider {
	return model.ProviderGoogleAI
}

// Complete implements model.Gateway via generateContent.
func (g *GeminiGateway) Complete(ctx context.Context, prompt string) (string, error) {
	if err := requireAPIKey(g.cfg, "call Google AI"); err != nil {
		return "", err
	}

	client, err := g.newClient(ctx)
	if err != nil {
		return "", err
	}
	defer client.Close()

	gm := client.GenerativeModel(g.cfg.Model)
	gm.SetTemperature(float32(g.cfg.Temperature.OrDefault()))
	gm.SetTopP(geminiTopP)
	gm.SetTopK(geminiTopK)
	gm.SetMaxOutputTokens(int32(min(g.cfg.MaxTokens, model.MaxTokensLimit)))

	resp, err := gm.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", mapError(g.Provider(), "Completion failed", err)
	}

	text := extractGeminiText(resp)
	if strings.TrimSpace(text) == "" {
		return "", emptyResponseError(g.Provider())
	}
	return text, nil
}

// ListModels implements model.ModelLister via GET /v1beta/models.
// Names come back as "models/<id>"; the prefix is stripped.
func (g *GeminiGateway) ListModels(ctx context.Context) ([]string, error) {
	if err := requireAPIKey(g.cfg, "fetch models"); err != nil {
		return nil, err
	}

	client, err := g.newClient(ctx)
	if err != nil {
		return nil, err
	}
	defer client.Close()

	models := []string{}
	it := client.ListModels(ctx)
	for {
		info, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, mapError(g.Provider(), "Failed to fetch models", err)
		}
		if info == nil || info.Name == "" {
			continue
		}
		models = append(models, NormalizeGeminiModelName(info.Name))
	}
	return models, nil
}

func (g *GeminiGateway) newClient(ctx context.Context) (*genai.Client, error) {
	opts := []option.ClientOption{option.WithAPIKey(g.cfg.APIKey)}
	if g.endpoint != "" {
		opts = append(opts, option.WithEndpoint(g.endpoint))
	}

	client, err := genai.NewClient(ctx, opts...)
	if err != nil {
		return nil, model.NewProviderError(g.Provider(), model.ErrorKindConfiguration,
			"Failed to create Google AI client: "+summarizeError(err), err)
	}
	return client, nil
}

// NormalizeGeminiModelName strips the "models/" resource prefix. Names
// without the prefix are returned unchanged.
func NormalizeGeminiModelName(name string) string {
	return strings.TrimPrefix(name, geminiModelPrefix)
}

// extractGeminiText joins the text parts of the first candidate.
func extractGeminiText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}

	candidate := resp.Candidates[0]
	if candidate.Content == nil {
		return ""
	}

	var sb strings.Builder
	for _, part := range candidate.Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}
	return sb.String()
}

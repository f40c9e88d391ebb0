package provider

import (
	"context"
	"strings"

	"abapai/model"

	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
)

// chatModelPrefix marks the model ids worth offering for chat completion.
const chatModelPrefix = "gpt-"

// OpenAIGateway implements model.Gateway using OpenAI's official Go SDK.
type OpenAIGateway struct {
	cfg      model.ClientConfig
	endpoint string
}

// NewOpenAIGateway creates an OpenAI gateway. It performs no I/O.
func NewOpenAIGateway(cfg model.ClientConfig, opts ...GatewayOption) (*OpenAIGateway, error) {
	o := applyOptions(opts)
	return &OpenAIGateway{
		cfg:      cfg,
		endpoint: o.endpoint,
	}, nil
}

func (g *OpenAIGateway) Provider() model.Provider {
	return model.ProviderOpenAI
}

func (g *OpenAIGateway) newClient() openai.Client {
	opts := []option.RequestOption{
		option.WithAPIKey(g.cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if g.endpoint != "" {
		opts = append(opts, option.WithBaseURL(g.endpoint))
	}
	return openai.NewClient(opts...)
}

// Complete implements model.Gateway via POST /v1/chat/completions.
func (g *OpenAIGateway) Complete(ctx context.Context, prompt string) (string, error) {
	if err := requireAPIKey(g.cfg, "call OpenAI"); err != nil {
		return "", err
	}

	client := g.newClient()
	resp, err := client.Chat.Completions.New(ctx, openAIParams(g.cfg, prompt))
	if err != nil {
		return "", mapError(g.Provider(), "Completion failed", err)
	}

	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", emptyResponseError(g.Provider())
	}
	return resp.Choices[0].Message.Content, nil
}

// openAIParams builds the completion request. Reasoning models reject a
// custom temperature, so it is omitted for them.
func openAIParams(cfg model.ClientConfig, prompt string) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(cfg.Model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage(prompt),
		},
		MaxCompletionTokens: openai.Int(int64(cfg.MaxTokens)),
	}
	if !IsReasoningModel(cfg.Model) {
		params.Temperature = openai.Float(cfg.Temperature.OrDefault())
	}
	return params
}

// ListModels implements model.ModelLister via GET /v1/models, keeping only
// chat models.
func (g *OpenAIGateway) ListModels(ctx context.Context) ([]string, error) {
	if err := requireAPIKey(g.cfg, "fetch models"); err != nil {
		return nil, err
	}

	client := g.newClient()
	page, err := client.Models.List(ctx)
	if err != nil {
		return nil, mapError(g.Provider(), "Failed to fetch models", err)
	}
	if page == nil {
		return []string{}, nil
	}

	ids := make([]string, 0, len(page.Data))
	for _, m := range page.Data {
		ids = append(ids, m.ID)
	}
	return FilterChatModels(ids), nil
}

// IsReasoningModel reports whether modelName belongs to the o1 family, which
// only accepts the default temperature.
func IsReasoningModel(modelName string) bool {
	lower := strings.ToLower(strings.TrimSpace(modelName))
	return lower == "o1" || strings.Contains(lower, "o1-")
}

// FilterChatModels keeps ids starting with "gpt-", preserving order.
func FilterChatModels(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if strings.HasPrefix(id, chatModelPrefix) {
			out = append(out, id)
		}
	}
	return out
}

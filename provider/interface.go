// Package provider implements the per-provider gateways and the dispatcher
// that puts them behind one completion contract.
//
// abapai supports four LLM providers (Google Gemini, OpenAI, Anthropic and
// Ollama) through model.Gateway. Each gateway owns its provider's wire
// protocol and authentication scheme. Those are a query-param or header API
// key for Gemini, a bearer token for OpenAI, x-api-key plus a version header
// for Anthropic, and nothing for Ollama. None of that leaks into the
// Dispatcher.
//
// # Error Boundary
//
// Gateways never return SDK errors directly. Every failure is converted into a
// *model.ProviderError carrying the provider, an error kind and (when known)
// the HTTP status. See conversions.go.
//
// # Architecture
//
//   - model.Gateway / model.ModelLister define the contract (model/gateway.go)
//   - GeminiGateway, OpenAIGateway, AnthropicGateway, OllamaGateway implement it
//   - NewGateway() selects an implementation from a model.ClientConfig
//   - Dispatcher validates preconditions, applies the request timeout and
//     normalizes outcomes into model.AnalysisResult
//
// # Usage
//
//	cfg := model.NewClientConfig(model.ProviderOllama, "", "llama3.1", "", model.UnsetTemperature(), 0)
//	d := provider.NewDispatcher()
//	result := d.DispatchCompletion(ctx, cfg, "Explain this dump")
//	if !result.IsSuccess() {
//	    // result.Message() is "[Ollama (Local)] ..."
//	}
package provider

// GatewayOption customizes gateway construction.
type GatewayOption func(*gatewayOptions)

type gatewayOptions struct {
	endpoint string
}

// WithEndpoint overrides the provider's API endpoint (scheme://host[:port]).
// It takes precedence over ClientConfig.BaseURL. Tests use it to point
// gateways at local fake servers.
func WithEndpoint(endpoint string) GatewayOption {
	return func(o *gatewayOptions) {
		o.endpoint = endpoint
	}
}

func applyOptions(opts []GatewayOption) gatewayOptions {
	var o gatewayOptions
	for _, opt := range opts {
		if opt != nil {
			opt(&o)
		}
	}
	return o
}

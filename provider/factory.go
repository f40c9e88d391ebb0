package provider

import (
	"fmt"

	"abapai/model"
)

// GatewayFactory builds a gateway for a config. NewGateway is the production
// implementation; tests substitute counting mocks.
type GatewayFactory func(cfg model.ClientConfig, opts ...GatewayOption) (model.Gateway, error)

// NewGateway creates the gateway for cfg.Provider.
//
// This is the single dispatch point over the closed provider set. It never
// panics: unknown providers and construction failures (including panics
// raised inside an SDK constructor) come back as *model.ProviderError tagged
// with the provider.
//
// Example:
//
//	cfg := model.NewClientConfig(model.ProviderOpenAI, "sk-...", "gpt-4o", "", model.NewTemperature(0.2), 1024)
//	gw, err := provider.NewGateway(cfg)
//	if err != nil {
//	    // err.Error() == "[OpenAI] ..."
//	}
func NewGateway(cfg model.ClientConfig, opts ...GatewayOption) (gw model.Gateway, err error) {
	defer func() {
		if r := recover(); r != nil {
			gw = nil
			err = model.NewProviderError(cfg.Provider, model.ErrorKindConfiguration,
				fmt.Sprintf("Failed to create LLM client: %v", r), nil)
		}
	}()

	switch cfg.Provider {
	case model.ProviderGoogleAI:
		gw, err = NewGeminiGateway(cfg, opts...)
	case model.ProviderOpenAI:
		gw, err = NewOpenAIGateway(cfg, opts...)
	case model.ProviderAnthropic:
		gw, err = NewAnthropicGateway(cfg, opts...)
	case model.ProviderOllama:
		gw, err = NewOllamaGateway(cfg, opts...)
	default:
		return nil, model.NewProviderError(cfg.Provider, model.ErrorKindUnsupported,
			fmt.Sprintf("Unsupported provider: %s", cfg.Provider), model.ErrUnsupported)
	}

	if err != nil {
		return nil, wrapConstructionError(cfg.Provider, err)
	}
	return gw, nil
}

func wrapConstructionError(p model.Provider, err error) error {
	if pe, ok := err.(*model.ProviderError); ok {
		return pe
	}
	return model.NewProviderError(p, model.ErrorKindConfiguration,
		"Failed to create LLM client: "+summarizeError(err), err)
}

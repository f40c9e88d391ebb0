package provider

import (
	"fmt"
	"strings"

	"abapai/model"
)

// checkAPIKey fails with a configuration error when the provider requires a
// key and none is configured. It runs before any network call.
func checkAPIKey(cfg model.ClientConfig) error {
	if !cfg.MissingAPIKey() {
		return nil
	}
	info := cfg.Provider.Info()
	return model.NewProviderError(cfg.Provider, model.ErrorKindConfiguration,
		fmt.Sprintf("API key is not configured for %s. Set it with: abapai config set-key %s <key>", info.DisplayName, info.ID),
		model.ErrMissingAPIKey)
}

// requireAPIKey is the gateway-level variant used right before a keyed call.
func requireAPIKey(cfg model.ClientConfig, action string) error {
	if cfg.HasAPIKey() {
		return nil
	}
	return model.NewProviderError(cfg.Provider, model.ErrorKindConfiguration,
		fmt.Sprintf("API key is required to %s", action), model.ErrMissingAPIKey)
}

// checkPrompt rejects blank prompts.
func checkPrompt(p model.Provider, prompt string) error {
	if strings.TrimSpace(prompt) != "" {
		return nil
	}
	return model.NewProviderError(p, model.ErrorKindConfiguration, "No content to analyze.", nil)
}

// emptyResponseError signals a syntactically successful call with no text.
func emptyResponseError(p model.Provider) error {
	return model.NewProviderError(p, model.ErrorKindEmptyResponse, "AI returned empty response.", model.ErrEmptyResponse)
}

package model

import "context"

// Gateway is the per-provider adapter behind the uniform completion contract.
//
// It lives in the model package so that the provider implementations, the
// analyzer and the drivers can share it without importing each other.
// Implementations capture their ClientConfig at construction time and must
// return only *ProviderError values.
type Gateway interface {
	// Provider returns the provider this gateway talks to.
	Provider() Provider

	// Complete sends a single-turn, non-streaming completion request for prompt.
	// A blank completion yields a ProviderError of kind ErrorKindEmptyResponse.
	Complete(ctx context.Context, prompt string) (string, error)
}

// ModelLister is implemented by gateways that can enumerate model identifiers.
type ModelLister interface {
	ListModels(ctx context.Context) ([]string, error)
}

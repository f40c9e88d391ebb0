package model

import "strings"

// Provider identifies one of the supported LLM backends.
//
// The set is closed: every value the application handles is listed in the
// catalog below, and ParseProvider never produces anything else.
type Provider string

const (
	ProviderGoogleAI  Provider = "GOOGLE_AI"
	ProviderOpenAI    Provider = "OPENAI"
	ProviderAnthropic Provider = "ANTHROPIC"
	ProviderOllama    Provider = "OLLAMA"
)

// DefaultProvider is used whenever a stored provider selector is empty or unknown.
const DefaultProvider = ProviderGoogleAI

// ProviderInfo holds the static capabilities of a provider.
type ProviderInfo struct {
	ID              string // Lowercase id used for credentials and env lookups
	DisplayName     string
	RequiresAPIKey  bool
	SupportsBaseURL bool
	DefaultModel    string
	DefaultBaseURL  string // Only set when SupportsBaseURL is true
}

var providerOrder = []Provider{
	ProviderGoogleAI,
	ProviderOpenAI,
	ProviderAnthropic,
	ProviderOllama,
}

var catalog = map[Provider]ProviderInfo{
	ProviderGoogleAI: {
		ID:             "googleai",
		DisplayName:    "Google AI (Gemini)",
		RequiresAPIKey: true,
		DefaultModel:   "gemini-1.5-flash",
	},
	ProviderOpenAI: {
		ID:             "openai",
		DisplayName:    "OpenAI",
		RequiresAPIKey: true,
		DefaultModel:   "gpt-4o-mini",
	},
	ProviderAnthropic: {
		ID:             "anthropic",
		DisplayName:    "Anthropic (Claude)",
		RequiresAPIKey: true,
		DefaultModel:   "claude-sonnet-4-5-20250929",
	},
	ProviderOllama: {
		ID:              "ollama",
		DisplayName:     "Ollama (Local)",
		SupportsBaseURL: true,
		DefaultModel:    "llama3.1:latest",
		DefaultBaseURL:  "http://localhost:11434",
	},
}

// aliases maps user-facing ids to providers (in addition to the canonical names).
var aliases = map[string]Provider{
	"googleai":  ProviderGoogleAI,
	"google":    ProviderGoogleAI,
	"gemini":    ProviderGoogleAI,
	"openai":    ProviderOpenAI,
	"anthropic": ProviderAnthropic,
	"claude":    ProviderAnthropic,
	"ollama":    ProviderOllama,
}

// Providers returns every catalog variant in display order.
func Providers() []Provider {
	out := make([]Provider, len(providerOrder))
	copy(out, providerOrder)
	return out
}

// ParseProvider converts a stored provider selector back into a Provider.
// Canonical names ("OPENAI") and lowercase ids ("openai") are accepted.
// Empty or unknown input yields DefaultProvider; this is a compatibility
// policy for old settings, not an error.
func ParseProvider(value string) Provider {
	if p, ok := LookupProvider(value); ok {
		return p
	}
	return DefaultProvider
}

// LookupProvider is the strict form of ParseProvider: ok is false for empty
// or unknown input.
func LookupProvider(value string) (Provider, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return "", false
	}
	if _, ok := catalog[Provider(value)]; ok {
		return Provider(value), true
	}
	if p, ok := aliases[strings.ToLower(value)]; ok {
		return p, true
	}
	return "", false
}

// Valid reports whether p is a catalog variant.
func (p Provider) Valid() bool {
	_, ok := catalog[p]
	return ok
}

// Info returns the catalog entry. Unknown values get a zero-capability entry
// named after the raw value so error messages stay readable.
func (p Provider) Info() ProviderInfo {
	if info, ok := catalog[p]; ok {
		return info
	}
	return ProviderInfo{ID: strings.ToLower(string(p)), DisplayName: string(p)}
}

func (p Provider) String() string {
	return string(p)
}

func (p Provider) ID() string {
	return p.Info().ID
}

func (p Provider) DisplayName() string {
	return p.Info().DisplayName
}

func (p Provider) RequiresAPIKey() bool {
	return p.Info().RequiresAPIKey
}

func (p Provider) SupportsBaseURL() bool {
	return p.Info().SupportsBaseURL
}

func (p Provider) DefaultModel() string {
	return p.Info().DefaultModel
}

func (p Provider) DefaultBaseURL() string {
	return p.Info().DefaultBaseURL
}

package model

import (
	"fmt"
	"math"
	"strings"

	"github.com/go-playground/validator/v10"
)

const (
	// DefaultTemperature applies when no temperature has been set.
	DefaultTemperature = 0.7
	// DefaultMaxTokens applies when no positive token limit has been set.
	DefaultMaxTokens = 2048
	// MaxTokensLimit is the largest token limit the vendor APIs accept (int32).
	MaxTokensLimit = math.MaxInt32
)

// Temperature is an optional sampling temperature. The zero value is unset,
// which keeps an explicit 0.0 distinguishable from "use the default".
type Temperature struct {
	value float64
	set   bool
}

// NewTemperature returns a temperature explicitly set to v.
func NewTemperature(v float64) Temperature {
	return Temperature{value: v, set: true}
}

// UnsetTemperature returns the unset temperature.
func UnsetTemperature() Temperature {
	return Temperature{}
}

// Value returns the stored temperature and whether it was set.
func (t Temperature) Value() (float64, bool) {
	return t.value, t.set
}

// IsSet reports whether an explicit value was stored.
func (t Temperature) IsSet() bool {
	return t.set
}

// OrDefault returns the explicit value, or DefaultTemperature when unset.
func (t Temperature) OrDefault() float64 {
	if !t.set {
		return DefaultTemperature
	}
	return t.value
}

func (t Temperature) String() string {
	if !t.set {
		return fmt.Sprintf("unset (%.2f)", DefaultTemperature)
	}
	return fmt.Sprintf("%.2f", t.value)
}

// ClientConfig is the immutable snapshot of provider, credentials, model and
// generation parameters used for one operation. It is passed by value; build
// a new one when settings change.
type ClientConfig struct {
	Provider    Provider `validate:"oneof=GOOGLE_AI OPENAI ANTHROPIC OLLAMA"`
	APIKey      string
	Model       string `validate:"required"`
	BaseURL     string `validate:"omitempty,url"`
	Temperature Temperature
	MaxTokens   int `validate:"gt=0,lte=2147483647"`
}

// NewClientConfig builds a config, filling the model from the provider's
// default and the token limit from DefaultMaxTokens when they are missing.
// Token limits above MaxTokensLimit are clamped.
func NewClientConfig(p Provider, apiKey, modelName, baseURL string, temp Temperature, maxTokens int) ClientConfig {
	modelName = strings.TrimSpace(modelName)
	if modelName == "" {
		modelName = p.DefaultModel()
	}
	if maxTokens <= 0 {
		maxTokens = DefaultMaxTokens
	}
	maxTokens = min(maxTokens, MaxTokensLimit)
	return ClientConfig{
		Provider:    p,
		APIKey:      strings.TrimSpace(apiKey),
		Model:       modelName,
		BaseURL:     strings.TrimSpace(baseURL),
		Temperature: temp,
		MaxTokens:   maxTokens,
	}
}

// DefaultClientConfig is the best-effort configuration used when persisted
// settings cannot be read.
func DefaultClientConfig() ClientConfig {
	return NewClientConfig(DefaultProvider, "", "", "", UnsetTemperature(), DefaultMaxTokens)
}

// HasAPIKey reports whether a non-blank API key is present.
func (c ClientConfig) HasAPIKey() bool {
	return strings.TrimSpace(c.APIKey) != ""
}

// MissingAPIKey reports whether the provider needs a key that is not configured.
func (c ClientConfig) MissingAPIKey() bool {
	return c.Provider.RequiresAPIKey() && !c.HasAPIKey()
}

// EffectiveBaseURL returns the configured base URL for providers that support
// one, falling back to the provider's well-known endpoint. Providers without
// base URL support always return "".
func (c ClientConfig) EffectiveBaseURL() string {
	if !c.Provider.SupportsBaseURL() {
		return ""
	}
	if c.BaseURL != "" {
		return strings.TrimRight(c.BaseURL, "/")
	}
	return c.Provider.DefaultBaseURL()
}

// MaskedAPIKey returns the key with everything but the last four characters hidden.
func (c ClientConfig) MaskedAPIKey() string {
	key := strings.TrimSpace(c.APIKey)
	if key == "" {
		return ""
	}
	if len(key) <= 4 {
		return "****"
	}
	return strings.Repeat("*", 8) + key[len(key)-4:]
}

var validate = validator.New()

// Validate checks structural constraints. Construction never calls it; the CLI
// uses it before persisting settings.
func (c ClientConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid client config: %w", err)
	}
	if v, ok := c.Temperature.Value(); ok && (v < 0 || v > 1) {
		return fmt.Errorf("invalid client config: temperature %.2f outside [0, 1]", v)
	}
	return nil
}

func (c ClientConfig) String() string {
	return fmt.Sprintf("ClientConfig{provider=%s, model=%q, baseURL=%q, temperature=%s, maxTokens=%d}",
		c.Provider, c.Model, c.BaseURL, c.Temperature, c.MaxTokens)
}

package model

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperatureSentinel(t *testing.T) {
	unset := UnsetTemperature()
	assert.False(t, unset.IsSet())
	assert.Equal(t, DefaultTemperature, unset.OrDefault())

	zero := NewTemperature(0)
	v, ok := zero.Value()
	assert.True(t, ok)
	assert.Equal(t, 0.0, v)
	assert.Equal(t, 0.0, zero.OrDefault())
	assert.NotEqual(t, unset, zero)
}

func TestNewClientConfigFallbacks(t *testing.T) {
	cfg := NewClientConfig(ProviderOpenAI, " sk-1 ", "", "", UnsetTemperature(), 0)

	assert.Equal(t, "sk-1", cfg.APIKey)
	assert.Equal(t, ProviderOpenAI.DefaultModel(), cfg.Model)
	assert.Equal(t, DefaultMaxTokens, cfg.MaxTokens)
	assert.Equal(t, "", cfg.EffectiveBaseURL())

	huge := NewClientConfig(ProviderGoogleAI, "k", "", "", UnsetTemperature(), int(int64(MaxTokensLimit)+1))
	assert.Equal(t, MaxTokensLimit, huge.MaxTokens)
}

func TestDefaultClientConfig(t *testing.T) {
	cfg := DefaultClientConfig()

	assert.Equal(t, ProviderGoogleAI, cfg.Provider)
	assert.Empty(t, cfg.APIKey)
	assert.Equal(t, "gemini-1.5-flash", cfg.Model)
	assert.False(t, cfg.Temperature.IsSet())
	assert.Equal(t, 2048, cfg.MaxTokens)
	assert.True(t, cfg.MissingAPIKey())
	assert.Equal(t, DefaultClientConfig(), cfg)
}

func TestEffectiveBaseURL(t *testing.T) {
	ollama := NewClientConfig(ProviderOllama, "", "", "", UnsetTemperature(), 0)
	assert.Equal(t, "http://localhost:11434", ollama.EffectiveBaseURL())
	assert.False(t, ollama.MissingAPIKey())

	custom := NewClientConfig(ProviderOllama, "", "", "http://gpu-box:11434/", UnsetTemperature(), 0)
	assert.Equal(t, "http://gpu-box:11434", custom.EffectiveBaseURL())

	ignored := NewClientConfig(ProviderAnthropic, "k", "", "http://example.com", UnsetTemperature(), 0)
	assert.Equal(t, "", ignored.EffectiveBaseURL())
}

func TestMaskedAPIKey(t *testing.T) {
	assert.Equal(t, "", ClientConfig{}.MaskedAPIKey())
	assert.Equal(t, "****", ClientConfig{APIKey: "abc"}.MaskedAPIKey())
	assert.Equal(t, "********7890", ClientConfig{APIKey: "sk-1234567890"}.MaskedAPIKey())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     ClientConfig
		wantErr bool
	}{
		{"defaults", DefaultClientConfig(), false},
		{"explicit zero temperature", NewClientConfig(ProviderOpenAI, "k", "gpt-4o", "", NewTemperature(0), 100), false},
		{"temperature too high", NewClientConfig(ProviderOpenAI, "k", "gpt-4o", "", NewTemperature(1.5), 100), true},
		{"unknown provider", ClientConfig{Provider: "X", Model: "m", MaxTokens: 1}, true},
		{"missing model", ClientConfig{Provider: ProviderOllama, MaxTokens: 1}, true},
		{"bad base url", ClientConfig{Provider: ProviderOllama, Model: "m", MaxTokens: 1, BaseURL: "not a url"}, true},
		{"zero tokens", ClientConfig{Provider: ProviderOllama, Model: "m"}, true},
		{"tokens at int32 limit", ClientConfig{Provider: ProviderOllama, Model: "m", MaxTokens: MaxTokensLimit}, false},
		{"tokens past int32 limit", ClientConfig{Provider: ProviderOllama, Model: "m", MaxTokens: int(int64(MaxTokensLimit) + 1)}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestProviderErrorFormatting(t *testing.T) {
	cause := errors.New("connection refused")
	err := NewProviderError(ProviderOllama, ErrorKindTransport, "Failed to fetch models", cause)

	assert.Equal(t, "[Ollama (Local)] Failed to fetch models", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsKind(err, ErrorKindTransport))
	assert.False(t, IsKind(err, ErrorKindProtocol))

	wrapped := fmt.Errorf("listing: %w", err)
	pe := AsProviderError(ProviderGoogleAI, wrapped)
	require.NotNil(t, pe)
	assert.Equal(t, ProviderOllama, pe.Provider)

	foreign := AsProviderError(ProviderOpenAI, errors.New("boom"))
	assert.Equal(t, "[OpenAI] boom", foreign.Error())
	assert.Nil(t, AsProviderError(ProviderOpenAI, nil))
}

func TestAnalysisResult(t *testing.T) {
	ok := Success("done")
	assert.True(t, ok.IsSuccess())
	assert.Equal(t, "done", ok.Text())
	assert.Empty(t, ok.Message())

	fail := Failure("nope")
	assert.False(t, fail.IsSuccess())
	assert.Empty(t, fail.Text())
	assert.Equal(t, "nope", fail.Message())

	mapped := ok.Map(func(s string) string { return s + "!" })
	assert.Equal(t, "done!", mapped.Text())
	assert.Equal(t, fail, fail.Map(func(s string) string { return "x" }))

	assert.Equal(t, "[OpenAI] bad", FailureFromError(NewProviderError(ProviderOpenAI, ErrorKindTransport, "bad", nil)).Message())
}

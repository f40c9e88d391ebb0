package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"abapai/model"

	"github.com/go-playground/validator/v10"
)

// apiKeyEnv maps providers to the environment variable consulted last when
// looking up an API key.
var apiKeyEnv = map[model.Provider]string{
	model.ProviderGoogleAI:  "GEMINI_API_KEY",
	model.ProviderOpenAI:    "OPENAI_API_KEY",
	model.ProviderAnthropic: "ANTHROPIC_API_KEY",
}

var validate = validator.New()

// Settings bundles the stores a request reads its configuration from. Every
// accessor reads the stores afresh, so a changed preference applies to the
// next request without a restart.
type Settings struct {
	Config      *Config
	Preferences Preferences
	Credentials *CredentialStore // optional

	getenv func(string) string
}

func NewSettings(cfg *Config, prefs Preferences, creds *CredentialStore) *Settings {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	return &Settings{
		Config:      cfg,
		Preferences: prefs,
		Credentials: creds,
		getenv:      os.Getenv,
	}
}

// WithEnv replaces the environment lookup used for API key fallbacks.
func (s *Settings) WithEnv(getenv func(string) string) *Settings {
	s.getenv = getenv
	return s
}

// ClientConfig reads the provider settings. It never fails: when the
// preference store cannot be read the default configuration is returned and
// the error is logged.
func (s *Settings) ClientConfig() model.ClientConfig {
	cfg, err := s.readClientConfig()
	if err != nil {
		Logger.Warn().Err(err).Msg("could not read provider settings; using defaults")
		return model.DefaultClientConfig()
	}
	return cfg
}

func (s *Settings) readClientConfig() (model.ClientConfig, error) {
	if s.Preferences == nil {
		return model.ClientConfig{}, fmt.Errorf("no preference store configured")
	}

	prefs, err := s.Preferences.All()
	if err != nil {
		return model.ClientConfig{}, err
	}
	get := func(key string) string {
		return strings.TrimSpace(prefs[key])
	}

	p := model.ParseProvider(get(PrefProvider))

	apiKey := s.lookupAPIKey(p, get)

	modelName := get(PrefModel)
	if modelName == "" && p == model.ProviderGoogleAI {
		modelName = get(PrefLegacyGoogleModel)
	}

	return model.NewClientConfig(
		p,
		apiKey,
		modelName,
		get(PrefBaseURL),
		parseTemperature(get(PrefTemperature)),
		parseMaxTokens(get(PrefMaxTokens)),
	), nil
}

// lookupAPIKey order: credential store, llmApiKey, legacy googleAiApiKey
// (Google AI only), provider environment variable.
func (s *Settings) lookupAPIKey(p model.Provider, get func(string) string) string {
	if s.Credentials != nil {
		if key := strings.TrimSpace(s.Credentials.Get(p.ID())); key != "" {
			return key
		}
	}
	if key := get(PrefAPIKey); key != "" {
		return key
	}
	if p == model.ProviderGoogleAI {
		if key := get(PrefLegacyGoogleKey); key != "" {
			return key
		}
	}
	if env, ok := apiKeyEnv[p]; ok && s.getenv != nil {
		return strings.TrimSpace(s.getenv(env))
	}
	return ""
}

// HasAPIKey reports whether a request for p would find an API key.
func (s *Settings) HasAPIKey(p model.Provider) bool {
	prefs := map[string]string{}
	if s.Preferences != nil {
		if all, err := s.Preferences.All(); err == nil {
			prefs = all
		}
	}
	return s.lookupAPIKey(p, func(key string) string {
		return strings.TrimSpace(prefs[key])
	}) != ""
}

func parseTemperature(raw string) model.Temperature {
	if raw == "" {
		return model.UnsetTemperature()
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v < 0 || v > 1 {
		Logger.Warn().Str("value", raw).Msg("ignoring invalid llmTemperature")
		return model.UnsetTemperature()
	}
	return model.NewTemperature(v)
}

func parseMaxTokens(raw string) int {
	if raw == "" {
		return model.DefaultMaxTokens
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v <= 0 || v > model.MaxTokensLimit {
		Logger.Warn().Str("value", raw).Msg("ignoring invalid llmMaxTokens")
		return model.DefaultMaxTokens
	}
	return v
}

// PromptTemplate returns the custom analysis prompt, or "" when none is set.
func (s *Settings) PromptTemplate() string {
	if s.Preferences == nil {
		return ""
	}
	v, _, err := s.Preferences.Get(PrefPromptTemplate)
	if err != nil {
		Logger.Warn().Err(err).Msg("could not read prompt template; using default")
		return ""
	}
	return v
}

// AppendDumpContent reports whether successful analyses get the original dump
// appended. Defaults to true.
func (s *Settings) AppendDumpContent() bool {
	if s.Preferences == nil {
		return true
	}
	v, found, err := s.Preferences.Get(PrefAppendDump)
	if err != nil || !found || strings.TrimSpace(v) == "" {
		return true
	}
	b, err := strconv.ParseBool(strings.TrimSpace(v))
	if err != nil {
		return true
	}
	return b
}

// SetPreference validates and persists a single preference. Provider values
// are stored in canonical form.
func (s *Settings) SetPreference(key, value string) error {
	if s.Preferences == nil {
		return fmt.Errorf("no preference store configured")
	}
	if !IsKnownPreferenceKey(key) {
		return fmt.Errorf("unknown preference key: %s", key)
	}

	value, err := normalizePreference(key, value)
	if err != nil {
		return err
	}
	return s.Preferences.Set(key, value)
}

func normalizePreference(key, value string) (string, error) {
	trimmed := strings.TrimSpace(value)

	switch key {
	case PrefProvider:
		p, ok := model.LookupProvider(trimmed)
		if !ok {
			return "", fmt.Errorf("unknown provider %q", trimmed)
		}
		return p.String(), nil

	case PrefTemperature:
		v, err := strconv.ParseFloat(trimmed, 64)
		if err != nil {
			return "", fmt.Errorf("invalid temperature %q: %w", trimmed, err)
		}
		if v < 0 || v > 1 {
			return "", fmt.Errorf("temperature must be between 0 and 1, got %v", v)
		}
		return strconv.FormatFloat(v, 'f', -1, 64), nil

	case PrefMaxTokens:
		v, err := strconv.Atoi(trimmed)
		if err != nil {
			return "", fmt.Errorf("invalid max tokens %q: %w", trimmed, err)
		}
		if v <= 0 {
			return "", fmt.Errorf("max tokens must be positive, got %d", v)
		}
		if v > model.MaxTokensLimit {
			return "", fmt.Errorf("max tokens must be at most %d, got %d", model.MaxTokensLimit, v)
		}
		return strconv.Itoa(v), nil

	case PrefBaseURL:
		if trimmed == "" {
			return "", nil
		}
		if err := validate.Var(trimmed, "url"); err != nil {
			return "", fmt.Errorf("invalid base URL %q", trimmed)
		}
		return trimmed, nil

	case PrefAppendDump:
		b, err := strconv.ParseBool(trimmed)
		if err != nil {
			return "", fmt.Errorf("invalid boolean %q: %w", trimmed, err)
		}
		return strconv.FormatBool(b), nil

	case PrefPromptTemplate:
		return value, nil

	default:
		return trimmed, nil
	}
}

// DeletePreference removes a preference.
func (s *Settings) DeletePreference(key string) error {
	if s.Preferences == nil {
		return fmt.Errorf("no preference store configured")
	}
	return s.Preferences.Delete(key)
}

// SaveAPIKey stores key for p in the credential store and persists it.
func (s *Settings) SaveAPIKey(p model.Provider, key string) error {
	if s.Credentials == nil {
		return fmt.Errorf("no credential store configured")
	}
	if !p.RequiresAPIKey() {
		return fmt.Errorf("%s does not use an API key", p.DisplayName())
	}

	if strings.TrimSpace(key) == "" {
		if err := s.Credentials.Delete(p.ID()); err != nil {
			return err
		}
	} else if err := s.Credentials.Set(p.ID(), key); err != nil {
		return err
	}

	if err := s.Credentials.Save(s.Config.DataDir()); err != nil {
		return fmt.Errorf("failed to save credentials: %w", err)
	}
	return nil
}

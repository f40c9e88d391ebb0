package config

import "time"

// DefaultRequestTimeout bounds a single provider call.
const DefaultRequestTimeout = 120 * time.Second

func DefaultConfig() *Config {
	return &Config{
		DataDirectory:      GetDefaultDataDir(),
		PreferencesBackend: BackendTOML,
		RequestTimeout:     DefaultRequestTimeout,
		CredentialMethod:   SecurityPlainText,
	}
}

func GenerateSettingsTemplate() string {
	return `# abapai Settings
# Location: ~/.config/abapai/settings.toml
# This file uses TOML format: https://toml.io

# Directory where preferences and credentials are stored
data_directory = "~/.local/share/abapai"

# Preference store: "toml" (preferences.toml) or "sqlite" (preferences.db)
preferences_backend = "toml"

# Upper bound for a single LLM request
request_timeout = "120s"

# API key storage: "plaintext" (credentials.toml, 0600) or "ssh_key"
# (credentials.enc, AES-256-GCM keyed from an SSH key signature)
credential_method = "plaintext"
# ssh_key_path = "~/.ssh/id_ed25519"
`
}

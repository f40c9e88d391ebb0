package config

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

func LoadSettingsFile(path string) (*SettingsFile, error) {
	sf := &SettingsFile{}
	if _, err := toml.DecodeFile(path, sf); err != nil {
		return nil, fmt.Errorf("failed to parse settings file: %w", err)
	}
	return sf, nil
}

// SettingsFileExists checks if settings.toml exists without creating it
func SettingsFileExists() bool {
	return FileExists(GetSettingsFilePath())
}

func SaveSettingsFile(sf *SettingsFile) error {
	configDir := GetConfigDir()
	if err := EnsureDir(configDir); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	f, err := os.OpenFile(settingsPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create settings file: %w", err)
	}
	defer f.Close()

	encoder := toml.NewEncoder(f)
	if err := encoder.Encode(sf); err != nil {
		return fmt.Errorf("failed to encode settings: %w", err)
	}

	return nil
}

// CreateDefaultSettingsFile writes the commented template unless a settings
// file already exists.
func CreateDefaultSettingsFile() (string, error) {
	configDir := GetConfigDir()
	if err := EnsureDir(configDir); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		return settingsPath, nil
	}

	if err := os.WriteFile(settingsPath, []byte(GenerateSettingsTemplate()), 0600); err != nil {
		return "", fmt.Errorf("failed to write settings: %w", err)
	}

	return settingsPath, nil
}

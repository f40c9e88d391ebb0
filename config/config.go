package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// PreferencesBackend selects where user preferences are persisted.
type PreferencesBackend string

const (
	BackendTOML   PreferencesBackend = "toml"
	BackendSQLite PreferencesBackend = "sqlite"
)

// SettingsFile mirrors settings.toml.
type SettingsFile struct {
	DataDirectory      string `toml:"data_directory"`
	PreferencesBackend string `toml:"preferences_backend,omitempty"`
	RequestTimeout     string `toml:"request_timeout,omitempty"`
	CredentialMethod   string `toml:"credential_method,omitempty"`
	SSHKeyPath         string `toml:"ssh_key_path,omitempty"`
}

type Config struct {
	DataDirectory      string
	PreferencesBackend PreferencesBackend
	RequestTimeout     time.Duration
	CredentialMethod   SecurityMethod
	SSHKeyPath         string
}

var Debug = false

// Logger is the process-wide logger. Warnings and errors go to stderr until
// InitDebugLog redirects everything to debug.log.
var Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	Level(zerolog.WarnLevel).
	With().Timestamp().Logger()

func (c *Config) DataDir() string {
	return ExpandPath(c.DataDirectory)
}

func (c *Config) SSHKey() string {
	return ExpandPath(c.SSHKeyPath)
}

func (c *Config) applySettingsFile(sf *SettingsFile) error {
	if sf.DataDirectory != "" {
		c.DataDirectory = sf.DataDirectory
	}
	if sf.PreferencesBackend != "" {
		c.PreferencesBackend = PreferencesBackend(strings.ToLower(sf.PreferencesBackend))
	}
	if sf.RequestTimeout != "" {
		d, err := time.ParseDuration(sf.RequestTimeout)
		if err != nil {
			return fmt.Errorf("invalid request_timeout %q: %w", sf.RequestTimeout, err)
		}
		c.RequestTimeout = d
	}
	if sf.CredentialMethod != "" {
		c.CredentialMethod = SecurityMethod(strings.ToLower(sf.CredentialMethod))
	}
	if sf.SSHKeyPath != "" {
		c.SSHKeyPath = sf.SSHKeyPath
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if dataDir := os.Getenv("ABAPAI_DATA_DIR"); dataDir != "" {
		c.DataDirectory = dataDir
	}
	if backend := os.Getenv("ABAPAI_PREFERENCES_BACKEND"); backend != "" {
		c.PreferencesBackend = PreferencesBackend(strings.ToLower(backend))
	}
	if timeout := os.Getenv("ABAPAI_REQUEST_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid ABAPAI_REQUEST_TIMEOUT %q: %w", timeout, err)
		}
		c.RequestTimeout = d
	}
	if method := os.Getenv("ABAPAI_CREDENTIAL_METHOD"); method != "" {
		c.CredentialMethod = SecurityMethod(strings.ToLower(method))
	}
	if key := os.Getenv("ABAPAI_SSH_KEY"); key != "" {
		c.SSHKeyPath = key
	}
	return nil
}

func (c *Config) validate() error {
	switch c.PreferencesBackend {
	case BackendTOML, BackendSQLite:
	default:
		return fmt.Errorf("unknown preferences backend: %s", c.PreferencesBackend)
	}

	switch c.CredentialMethod {
	case SecurityPlainText:
	case SecuritySSHKey:
		if c.SSHKeyPath == "" {
			return fmt.Errorf("credential method %s requires ssh_key_path", SecuritySSHKey)
		}
	default:
		return fmt.Errorf("unknown credential method: %s", c.CredentialMethod)
	}

	if c.RequestTimeout < 0 {
		return fmt.Errorf("request timeout must not be negative")
	}
	return nil
}

func CheckDebug() bool {
	debug := strings.ToLower(os.Getenv("ABAPAI_DEBUG"))
	return debug == "true" || debug == "1"
}

// InitDebugLog routes Logger to <dataDir>/debug.log at debug level when
// ABAPAI_DEBUG is set.
func InitDebugLog(dataDir string) {
	if !CheckDebug() {
		return
	}

	Debug = true
	logPath := filepath.Join(dataDir, "debug.log")

	// 0600: the log may contain prompts and provider error bodies
	f, err := os.OpenFile(logPath, os.O_RDWR|os.O_CREATE|os.O_APPEND, 0600)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: Could not open debug log at %s: %v\n", logPath, err)
		return
	}

	Logger = zerolog.New(f).Level(zerolog.DebugLevel).With().Timestamp().Caller().Logger()
	Logger.Debug().Str("ABAPAI_DEBUG", os.Getenv("ABAPAI_DEBUG")).Msg("=== Debug logging started ===")
	Logger.Debug().Str("path", logPath).Msg("log path")
}

// SetVerbose lowers the stderr threshold to debug so per-request lines
// (request id, provider, model, elapsed) are printed.
func SetVerbose() {
	if Debug {
		return
	}
	Logger = Logger.Level(zerolog.DebugLevel)
}

// Load builds the application config from defaults, settings.toml and
// ABAPAI_* environment variables (a .env file in the working directory is
// read first), then makes sure the data directory exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := DefaultConfig()

	settingsPath := GetSettingsFilePath()
	if FileExists(settingsPath) {
		sf, err := LoadSettingsFile(settingsPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
		if err := cfg.applySettingsFile(sf); err != nil {
			return nil, fmt.Errorf("failed to load settings: %w", err)
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	dataDir := cfg.DataDir()
	if err := os.MkdirAll(dataDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	// Ensure data directory has correct permissions (fix if needed)
	if err := EnsureDataDirPermissions(dataDir); err != nil {
		return nil, fmt.Errorf("failed to set data directory permissions: %w", err)
	}

	return cfg, nil
}

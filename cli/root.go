// Package cli implements the abapai command line.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"abapai/analyzer"
	"abapai/config"
	"abapai/provider"
	"abapai/storage"
)

const (
	Version = "v0.1.0"
	License = "Apache-2.0"
)

// app holds everything a command needs once settings are loaded.
type app struct {
	cfg        *config.Config
	settings   *config.Settings
	dispatcher *provider.Dispatcher
	history    *storage.HistoryStorage
	service    *analyzer.Service

	closers []io.Closer
}

func (a *app) Close() error {
	var errs []error
	for _, c := range a.closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openApp loads configuration and opens the stores it names.
func openApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	config.InitDebugLog(cfg.DataDir())

	a := &app{cfg: cfg}
	dataDir := cfg.DataDir()

	var prefs config.Preferences
	switch cfg.PreferencesBackend {
	case config.BackendSQLite:
		db, err := storage.NewPreferenceDB(config.PreferencesDBPath(dataDir))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db)
		prefs = db
	default:
		prefs = config.NewFilePreferences(config.PreferencesFilePath(dataDir))
	}

	creds := config.NewCredentialStore(cfg.CredentialMethod, cfg.SSHKey())
	if cfg.CredentialMethod == config.SecuritySSHKey {
		if err := unlockSSHKey(creds, cfg.SSHKey()); err != nil {
			a.Close()
			return nil, err
		}
	}
	if err := creds.Load(dataDir); err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to load credentials: %w", err)
	}

	history, err := storage.NewHistoryStorage(dataDir)
	if err != nil {
		a.Close()
		return nil, err
	}

	a.settings = config.NewSettings(cfg, prefs, creds)
	a.dispatcher = provider.NewDispatcher(provider.WithTimeout(cfg.RequestTimeout))
	a.history = history
	a.service = analyzer.NewService(a.settings, a.dispatcher, analyzer.WithHistory(history))

	config.Logger.Debug().
		Str("data_dir", dataDir).
		Str("preferences", string(cfg.PreferencesBackend)).
		Str("credentials", string(cfg.CredentialMethod)).
		Msg("settings loaded")

	return a, nil
}

// unlockSSHKey supplies ABAPAI_SSH_PASSPHRASE when the credential key is
// passphrase protected.
func unlockSSHKey(creds *config.CredentialStore, keyPath string) error {
	encrypted, err := config.IsSSHKeyEncrypted(keyPath)
	if err != nil {
		return fmt.Errorf("failed to read SSH key: %w", err)
	}
	if !encrypted {
		return nil
	}

	passphrase := os.Getenv("ABAPAI_SSH_PASSPHRASE")
	if passphrase == "" {
		return fmt.Errorf("SSH key %s is passphrase protected; set ABAPAI_SSH_PASSPHRASE", keyPath)
	}
	creds.SetPassphrase(passphrase)
	return nil
}

// withApp opens the app for the duration of fn.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()
		return fn(cmd, args, a)
	}
}

// NewRootCommand assembles the command tree.
func NewRootCommand() *cobra.Command {
	var verbose bool

	root := &cobra.Command{
		Use:   "abapai",
		Short: "Explain ABAP runtime dumps with an LLM",
		Long: "abapai sends ABAP runtime dumps (ST22 short dumps) to Google AI, OpenAI, " +
			"Anthropic or a local Ollama server and prints the analysis.",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				config.SetVerbose()
			}
		},
	}
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Log request details to stderr")

	root.AddCommand(
		newAnalyzeCmd(),
		newModelsCmd(),
		newProvidersCmd(),
		newConfigCmd(),
		newHistoryCmd(),
		newMCPCmd(),
	)
	return root
}

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := NewRootCommand()
	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %s\n", strings.TrimSpace(err.Error()))
		return 1
	}
	return 0
}

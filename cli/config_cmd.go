package cli

import (
	"bufio"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"abapai/analyzer"
	"abapai/config"
	"abapai/model"
	"abapai/ui"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and change settings",
		Long: "Inspect and change provider preferences and stored API keys.\n\n" +
			"Preference keys: " + strings.Join(config.KnownPreferenceKeys(), ", "),
	}

	cmd.AddCommand(
		newConfigShowCmd(),
		newConfigListCmd(),
		newConfigGetCmd(),
		newConfigSetCmd(),
		newConfigUnsetCmd(),
		newConfigSetKeyCmd(),
		newConfigInitCmd(),
	)
	return cmd
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the effective configuration",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			cfg := a.settings.ClientConfig()

			apiKey := cfg.MaskedAPIKey()
			switch {
			case !cfg.Provider.RequiresAPIKey():
				apiKey = "not needed"
			case apiKey == "":
				apiKey = ui.ErrorStyle.Render("missing")
			}

			baseURL := cfg.EffectiveBaseURL()
			if baseURL == "" {
				baseURL = "n/a"
			}

			prompt := "default"
			if strings.TrimSpace(a.settings.PromptTemplate()) != "" {
				prompt = "custom"
			}

			fmt.Fprint(cmd.OutOrStdout(), ui.FormatKeyValue([][2]string{
				{"Provider", fmt.Sprintf("%s (%s)", cfg.Provider.DisplayName(), cfg.Provider)},
				{"Model", cfg.Model},
				{"API key", apiKey},
				{"Base URL", baseURL},
				{"Temperature", temperatureLabel(cfg.Temperature)},
				{"Max tokens", strconv.Itoa(cfg.MaxTokens)},
				{"Prompt", prompt},
				{"Append dump", strconv.FormatBool(a.settings.AppendDumpContent())},
				{"Data directory", a.cfg.DataDir()},
				{"Preferences", string(a.cfg.PreferencesBackend)},
				{"Credentials", string(a.cfg.CredentialMethod)},
				{"Request timeout", a.cfg.RequestTimeout.String()},
				{"Settings file", config.GetSettingsFilePath()},
			}))
			return nil
		}),
	}
}

func temperatureLabel(t model.Temperature) string {
	if !t.IsSet() {
		return fmt.Sprintf("%.2f (default)", t.OrDefault())
	}
	return t.String()
}

func newConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List stored preferences",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			prefs, err := a.settings.Preferences.All()
			if err != nil {
				return err
			}
			if len(prefs) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), ui.DimStyle.Render("No preferences stored."))
				return nil
			}

			var pairs [][2]string
			for _, k := range config.SortedKeys(prefs) {
				pairs = append(pairs, [2]string{k, displayValue(k, prefs[k])})
			}
			fmt.Fprint(cmd.OutOrStdout(), ui.FormatKeyValue(pairs))
			return nil
		}),
	}
}

// displayValue masks secrets and collapses multi-line values.
func displayValue(key, value string) string {
	if key == config.PrefAPIKey || key == config.PrefLegacyGoogleKey {
		return model.ClientConfig{APIKey: value}.MaskedAPIKey()
	}
	if i := strings.IndexByte(value, '\n'); i >= 0 {
		return value[:i] + " ..."
	}
	return value
}

func newConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print a stored preference",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			key := args[0]
			if !config.IsKnownPreferenceKey(key) {
				return fmt.Errorf("unknown preference key: %s", key)
			}

			v, found, err := a.settings.Preferences.Get(key)
			if err != nil {
				return err
			}
			if !found {
				return fmt.Errorf("%s is not set", key)
			}
			if key == config.PrefAPIKey || key == config.PrefLegacyGoogleKey {
				v = displayValue(key, v)
			}
			fmt.Fprintln(cmd.OutOrStdout(), v)
			return nil
		}),
	}
}

func newConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Store a preference",
		Long: "Store a preference. Use \"-\" as the value of " + config.PrefPromptTemplate +
			" to read the template from stdin. Templates may use " +
			analyzer.PlaceholderTitle + " and " + analyzer.PlaceholderContent + ".",
		Args: cobra.ExactArgs(2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			key, value := args[0], args[1]

			if key == config.PrefPromptTemplate && value == "-" {
				data, err := readAll(cmd)
				if err != nil {
					return err
				}
				value = data
			}

			if err := a.settings.SetPreference(key, value); err != nil {
				return err
			}

			if err := a.settings.ClientConfig().Validate(); err != nil {
				fmt.Fprintln(cmd.ErrOrStderr(), ui.WarningStyle.Render("Warning: "+err.Error()))
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("Saved ")+key)
			return nil
		}),
	}
}

func readAll(cmd *cobra.Command) (string, error) {
	var b strings.Builder
	scanner := bufio.NewScanner(cmd.InOrStdin())
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	first := true
	for scanner.Scan() {
		if !first {
			b.WriteByte('\n')
		}
		b.WriteString(scanner.Text())
		first = false
	}
	if err := scanner.Err(); err != nil {
		return "", fmt.Errorf("failed to read stdin: %w", err)
	}
	return b.String(), nil
}

func newConfigUnsetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unset <key>",
		Short: "Remove a stored preference",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			key := args[0]
			if !config.IsKnownPreferenceKey(key) {
				return fmt.Errorf("unknown preference key: %s", key)
			}
			if err := a.settings.DeletePreference(key); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), ui.SuccessStyle.Render("Removed ")+key)
			return nil
		}),
	}
}

func newConfigSetKeyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set-key <provider> [key]",
		Short: "Store a provider API key in the credential store",
		Long: "Store a provider API key in the credential store. The key is read from " +
			"stdin when omitted. An empty key removes the stored one.",
		Args: cobra.RangeArgs(1, 2),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			p, ok := model.LookupProvider(args[0])
			if !ok {
				return fmt.Errorf("unknown provider %q", args[0])
			}

			var key string
			if len(args) == 2 {
				key = args[1]
			} else {
				data, err := readAll(cmd)
				if err != nil {
					return err
				}
				key = strings.TrimSpace(data)
			}

			if err := a.settings.SaveAPIKey(p, key); err != nil {
				return err
			}

			if strings.TrimSpace(key) == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Removed API key for %s\n", p.DisplayName())
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "%s API key for %s\n", ui.SuccessStyle.Render("Saved"), p.DisplayName())
			}
			return nil
		}),
	}
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a commented settings.toml if none exists",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			existed := config.SettingsFileExists()

			path, err := config.CreateDefaultSettingsFile()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if existed {
				fmt.Fprintf(out, "Settings file already exists: %s\n", path)
			} else {
				fmt.Fprintf(out, "%s %s\n", ui.SuccessStyle.Render("Created"), path)
			}

			keys, err := config.FindSSHKeys()
			if err == nil && len(keys) > 0 {
				fmt.Fprintln(out, ui.DimStyle.Render("SSH keys usable for credential_method = \"ssh_key\":"))
				for _, k := range keys {
					fmt.Fprintln(out, "  "+k)
				}
			}
			return nil
		},
	}
}

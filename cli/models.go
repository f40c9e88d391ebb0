package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"abapai/model"
	"abapai/provider"
	"abapai/ui"
)

func newModelsCmd() *cobra.Command {
	var (
		filter string
		width  int
	)

	cmd := &cobra.Command{
		Use:   "models",
		Short: "List the models offered by the configured provider",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			cfg := a.settings.ClientConfig()

			names, err := a.dispatcher.DispatchListModels(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			names = ui.FilterModels(names, filter)
			fmt.Fprint(cmd.OutOrStdout(), ui.RenderModelList(names, cfg.Model, renderWidth(width)))
			return nil
		}),
	}

	cmd.Flags().StringVarP(&filter, "filter", "f", "", "Fuzzy filter applied to model names")
	cmd.Flags().IntVarP(&width, "width", "w", 0, "Output width (defaults to $COLUMNS or 100)")
	return cmd
}

func newProvidersCmd() *cobra.Command {
	var check bool

	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List supported providers and the active one",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			active := a.settings.ClientConfig()

			var rows []ui.ProviderRow
			for _, p := range model.Providers() {
				rows = append(rows, ui.ProviderRow{
					Provider: p,
					Model:    active.Model,
					KeySet:   a.settings.HasAPIKey(p),
					Active:   p == active.Provider,
				})
			}

			out := cmd.OutOrStdout()
			fmt.Fprint(out, ui.RenderProviderTable(rows))

			if check {
				checkOllama(cmd, active)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&check, "check", false, "Check whether the Ollama server is reachable")
	return cmd
}

// checkOllama reports whether the Ollama server named by the stored base URL answers.
func checkOllama(cmd *cobra.Command, active model.ClientConfig) {
	baseURL := ""
	if active.Provider == model.ProviderOllama {
		baseURL = active.BaseURL
	}
	cfg := model.NewClientConfig(model.ProviderOllama, "", "", baseURL, model.UnsetTemperature(), 0)

	out := cmd.OutOrStdout()
	gw, err := provider.NewOllamaGateway(cfg)
	if err == nil {
		err = gw.Ping(cmd.Context())
	}
	if err != nil {
		fmt.Fprintln(out, ui.FormatFailure(err.Error()))
		return
	}
	fmt.Fprintf(out, "%s Ollama server at %s is reachable\n", ui.SuccessStyle.Render("ok"), gw.BaseURL())
}

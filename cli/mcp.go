package cli

import (
	"github.com/spf13/cobra"

	"abapai/mcp"
)

func newMCPCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mcp",
		Short: "Serve dump analysis as MCP tools over stdio",
		Long: "Run a Model Context Protocol server on stdin/stdout exposing the " +
			"analyze_dump, list_models and list_providers tools.",
		Args: cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			srv := mcp.NewServer(Version, a.service, a.dispatcher, a.settings)
			return srv.ServeStdio(cmd.Context(), cmd.InOrStdin(), cmd.OutOrStdout())
		}),
	}
}

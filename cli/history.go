package cli

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"abapai/model"
	"abapai/storage"
	"abapai/ui"
)

func newHistoryCmd() *cobra.Command {
	var (
		search string
		limit  int
	)

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past analyses",
		Args:  cobra.NoArgs,
		RunE: withApp(func(cmd *cobra.Command, _ []string, a *app) error {
			out := cmd.OutOrStdout()

			if strings.TrimSpace(search) != "" {
				matches, err := a.history.Search(search)
				if err != nil {
					return err
				}
				if len(matches) == 0 {
					fmt.Fprintln(out, ui.DimStyle.Render("No matching analyses."))
					return nil
				}
				for i, m := range matches {
					if limit > 0 && i >= limit {
						break
					}
					writeHistoryLine(out, m.AnalysisMetadata)
					fmt.Fprintln(out, "    "+ui.DimStyle.Render(m.Preview))
				}
				return nil
			}

			list, err := a.history.List()
			if err != nil {
				return err
			}
			if len(list) == 0 {
				fmt.Fprintln(out, ui.DimStyle.Render("No analyses recorded yet."))
				return nil
			}
			for i, m := range list {
				if limit > 0 && i >= limit {
					break
				}
				writeHistoryLine(out, m)
			}
			return nil
		}),
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only show analyses whose title, dump or result contain this text")
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of entries (0 for all)")

	cmd.AddCommand(newHistoryShowCmd(), newHistoryDeleteCmd())
	return cmd
}

func writeHistoryLine(w io.Writer, m storage.AnalysisMetadata) {
	status := ui.SuccessStyle.Render("ok  ")
	if !m.Success {
		status = ui.ErrorStyle.Render("fail")
	}
	fmt.Fprintf(w, "%s %s  %s  %s %s\n",
		status,
		ui.DimStyle.Render(m.CreatedAt.Local().Format("2006-01-02 15:04")),
		ui.HighlightStyle.Render(m.ID[:min(8, len(m.ID))]),
		displayTitle(m.Title),
		ui.DimStyle.Render("("+model.ParseProvider(m.Provider).DisplayName()+", "+m.Model+")"),
	)
}

// resolveHistoryID expands a unique id prefix to the full id.
func resolveHistoryID(h *storage.HistoryStorage, prefix string) (string, error) {
	list, err := h.List()
	if err != nil {
		return "", err
	}

	var found []string
	for _, m := range list {
		if strings.HasPrefix(m.ID, prefix) {
			found = append(found, m.ID)
		}
	}
	switch len(found) {
	case 0:
		return "", fmt.Errorf("no analysis with id %s", prefix)
	case 1:
		return found[0], nil
	default:
		return "", fmt.Errorf("id prefix %s is ambiguous", prefix)
	}
}

func newHistoryShowCmd() *cobra.Command {
	var (
		plain    bool
		withDump bool
	)

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Print a past analysis",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := resolveHistoryID(a.history, args[0])
			if err != nil {
				return err
			}
			entry, err := a.history.Load(id)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if !entry.Success {
				fmt.Fprintln(out, ui.FormatFailure(entry.Message))
			} else if plain || !ui.IsTerminal(out) {
				fmt.Fprintln(out, entry.Result)
			} else {
				fmt.Fprintln(out, ui.FormatHeader(entry.Title, model.ParseProvider(entry.Provider).DisplayName(), entry.Model))
				fmt.Fprintln(out, ui.RenderTerminal(entry.Result, renderWidth(0)))
			}

			if withDump {
				fmt.Fprintln(out, "\n"+entry.Dump)
			}
			return nil
		}),
	}

	cmd.Flags().BoolVar(&plain, "plain", false, "Print raw text without markdown rendering")
	cmd.Flags().BoolVar(&withDump, "dump", false, "Also print the analyzed dump")
	return cmd
}

func newHistoryDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a past analysis",
		Args:  cobra.ExactArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			id, err := resolveHistoryID(a.history, args[0])
			if err != nil {
				return err
			}
			if err := a.history.Delete(id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted %s\n", id)
			return nil
		}),
	}
}

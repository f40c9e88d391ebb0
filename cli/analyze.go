package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"abapai/analyzer"
	"abapai/config"
	"abapai/model"
	"abapai/ui"
)

const defaultWidth = 100

type analyzeOptions struct {
	title string
	html  string
	copy  bool
	plain bool
	width int
}

func newAnalyzeCmd() *cobra.Command {
	var opts analyzeOptions

	cmd := &cobra.Command{
		Use:   "analyze [file|-]",
		Short: "Analyze an ABAP dump",
		Long: "Analyze an ABAP runtime dump read from a file, or from stdin when the file is " +
			"omitted or \"-\". The title defaults to the file name.",
		Args: cobra.MaximumNArgs(1),
		RunE: withApp(func(cmd *cobra.Command, args []string, a *app) error {
			return runAnalyze(cmd, args, a, opts)
		}),
	}

	cmd.Flags().StringVarP(&opts.title, "title", "t", "", "Dump title (e.g. the runtime error name)")
	cmd.Flags().StringVar(&opts.html, "html", "", "Also write the analysis as an HTML report to this path")
	cmd.Flags().BoolVarP(&opts.copy, "copy", "c", false, "Copy the analysis to the clipboard")
	cmd.Flags().BoolVar(&opts.plain, "plain", false, "Print raw text without markdown rendering")
	cmd.Flags().IntVarP(&opts.width, "width", "w", 0, "Render width (defaults to $COLUMNS or 100)")
	return cmd
}

func runAnalyze(cmd *cobra.Command, args []string, a *app, opts analyzeOptions) error {
	path := "-"
	if len(args) == 1 {
		path = args[0]
	}
	src := analyzer.FileSource{Path: path, Name: opts.title, Stdin: cmd.InOrStdin()}

	content, err := src.Content()
	if err != nil {
		return err
	}

	cfg := a.settings.ClientConfig()
	label := fmt.Sprintf("Analyzing %s with %s (%s)...", displayTitle(src.Title()), cfg.Provider.DisplayName(), cfg.Model)

	result := ui.RunAnalysis(cmd.Context(), cmd.ErrOrStderr(), label, func(ctx context.Context) model.AnalysisResult {
		return a.service.Analyze(ctx, src.Title(), content)
	})

	if opts.html != "" {
		if err := writeHTMLReport(opts.html, src.Title(), cfg, result); err != nil {
			return err
		}
	}

	if !result.IsSuccess() {
		return errors.New(result.Message())
	}

	if opts.copy {
		if err := clipboard.WriteAll(result.Text()); err != nil {
			config.Logger.Warn().Err(err).Msg("failed to copy analysis to clipboard")
		} else {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.DimStyle.Render("Analysis copied to clipboard."))
		}
	}

	out := cmd.OutOrStdout()
	if opts.plain || !ui.IsTerminal(out) {
		fmt.Fprintln(out, result.Text())
		return nil
	}

	fmt.Fprintln(out, ui.FormatHeader(src.Title(), cfg.Provider.DisplayName(), cfg.Model))
	fmt.Fprintln(out, ui.RenderTerminal(result.Text(), renderWidth(opts.width)))
	return nil
}

func writeHTMLReport(path, title string, cfg model.ClientConfig, result model.AnalysisResult) error {
	var page string
	if result.IsSuccess() {
		page = ui.RenderHTML(ui.Report{
			Title:    title,
			Provider: cfg.Provider.DisplayName(),
			Model:    cfg.Model,
			Text:     result.Text(),
			Time:     time.Now(),
		})
	} else {
		page = ui.RenderErrorHTML(result.Message())
	}

	if err := os.WriteFile(config.ExpandPath(path), []byte(page), 0644); err != nil {
		return fmt.Errorf("failed to write HTML report: %w", err)
	}
	return nil
}

func displayTitle(title string) string {
	if title == "" {
		return analyzer.UnknownTitle
	}
	return title
}

func renderWidth(flag int) int {
	if flag > 0 {
		return flag
	}
	if cols, err := strconv.Atoi(os.Getenv("COLUMNS")); err == nil && cols > 0 {
		return cols
	}
	return defaultWidth
}

package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/sahilm/fuzzy"

	"abapai/model"
)

// FilterModels returns the names matching filter, best match first.
// An empty filter returns names unchanged.
func FilterModels(names []string, filter string) []string {
	filter = strings.TrimSpace(filter)
	if filter == "" {
		return names
	}

	matches := fuzzy.Find(filter, names)
	out := make([]string, len(matches))
	for i, match := range matches {
		out[i] = names[match.Index]
	}
	return out
}

// RenderModelList lists model names one per line, marking current.
// Names wider than width are truncated.
func RenderModelList(names []string, current string, width int) string {
	if len(names) == 0 {
		return DimStyle.Render("No models found.") + "\n"
	}

	var b strings.Builder
	for _, name := range names {
		line := runewidth.Truncate(name, max(width-2, 10), "…")
		if name == current {
			b.WriteString(SelectedStyle.Render("* " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

// ProviderRow is one line of the provider table.
type ProviderRow struct {
	Provider model.Provider
	Model    string // configured model when this is the active provider
	KeySet   bool
	Active   bool
}

// RenderProviderTable lays out the provider catalog with aligned columns.
func RenderProviderTable(rows []ProviderRow) string {
	headers := []string{"PROVIDER", "NAME", "DEFAULT MODEL", "API KEY"}
	cells := make([][]string, 0, len(rows))
	for _, r := range rows {
		info := r.Provider.Info()
		key := "not needed"
		if info.RequiresAPIKey {
			key = "missing"
			if r.KeySet {
				key = "set"
			}
		}
		modelName := info.DefaultModel
		if r.Active && r.Model != "" {
			modelName = r.Model
		}
		cells = append(cells, []string{r.Provider.String(), info.DisplayName, modelName, key})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = runewidth.StringWidth(h)
	}
	for _, row := range cells {
		for i, c := range row {
			widths[i] = max(widths[i], runewidth.StringWidth(c))
		}
	}

	var b strings.Builder
	b.WriteString("  " + DimStyle.Render(formatRow(headers, widths)) + "\n")
	for i, row := range cells {
		line := formatRow(row, widths)
		if rows[i].Active {
			b.WriteString(SelectedStyle.Render("* " + line))
		} else {
			b.WriteString("  " + line)
		}
		b.WriteString("\n")
	}
	return b.String()
}

func formatRow(cols []string, widths []int) string {
	parts := make([]string, len(cols))
	for i, c := range cols {
		if i == len(cols)-1 {
			parts[i] = c
			continue
		}
		parts[i] = runewidth.FillRight(c, widths[i])
	}
	return strings.Join(parts, "  ")
}

// FormatKeyValue renders aligned "key  value" lines for settings output.
func FormatKeyValue(pairs [][2]string) string {
	width := 0
	for _, p := range pairs {
		width = max(width, runewidth.StringWidth(p[0]))
	}
	var b strings.Builder
	for _, p := range pairs {
		fmt.Fprintf(&b, "%s  %s\n", AccentStyle.Render(runewidth.FillRight(p[0], width)), p[1])
	}
	return b.String()
}

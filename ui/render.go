package ui

import (
	"fmt"
	stdhtml "html"
	"regexp"
	"strings"
	"time"

	markdown "github.com/MichaelMure/go-term-markdown"
	gomarkdown "github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"
)

const (
	codeBar    = "┃"
	codeBorder = "━"

	darkGray = "\x1b[90m"
	red      = "\x1b[31m"
	reset    = "\x1b[0m"
)

var (
	inlineCodeRegex = regexp.MustCompile(`(?s)\x1b\[44;3m(.*?)\x1b\[0m`)
	mdLinkRegex     = regexp.MustCompile(`\[([^\]]+)\]\((https?://[^\)]+)\)`)
	urlRegex        = regexp.MustCompile(`(https?://[^\s]+)`)
	bodyTagRegex    = regexp.MustCompile(`(?i)<body[^>]*>`)
)

// MinRenderWidth is the narrowest width RenderTerminal lays out for.
const MinRenderWidth = 40

// RenderTerminal renders markdown analysis text for an ANSI terminal of the
// given width. Links become plain red URLs and code blocks are framed.
func RenderTerminal(content string, width int) string {
	if width < MinRenderWidth {
		width = MinRenderWidth
	}

	content = preprocessLinks(content)

	// Autolink stays off so terminals do their own URL detection.
	p := parser.NewWithExtensions(markdown.Extensions() &^ parser.Autolink)
	r := markdown.NewRenderer(width-4, 0)
	rendered := gomarkdown.Render(p.Parse([]byte(content)), r)

	return postProcessMarkdown(string(rendered), width)
}

func postProcessMarkdown(rendered string, width int) string {
	rendered = fixInlineCode(rendered)
	rendered = colorURLs(rendered)
	return frameCodeBlocks(rendered, width)
}

// preprocessLinks reduces [text](url) to the bare url.
func preprocessLinks(content string) string {
	return mdLinkRegex.ReplaceAllString(content, "$2")
}

// fixInlineCode swaps the blue italic inline code style for red text.
func fixInlineCode(s string) string {
	return inlineCodeRegex.ReplaceAllString(s, red+"$1"+reset)
}

func colorURLs(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if !strings.Contains(line, codeBar) {
			lines[i] = urlRegex.ReplaceAllString(line, red+"$1"+reset)
		}
	}
	return strings.Join(lines, "\n")
}

func frameCodeBlocks(s string, width int) string {
	lines := strings.Split(s, "\n")
	var result []string
	inCode := false

	closeBlock := func() {
		result = append(result, "", darkGray+strings.Repeat(codeBorder, width-4)+reset, "")
	}

	for _, line := range lines {
		if strings.Contains(line, codeBar) {
			if !inCode {
				inCode = true
				result = append(result, "", codeTopBorder(width), "")
			}
			result = append(result, stripCodeBlockPrefix(line))
			continue
		}
		if inCode {
			closeBlock()
			inCode = false
		}
		result = append(result, line)
	}
	if inCode {
		closeBlock()
	}

	return strings.Join(result, "\n")
}

func codeTopBorder(width int) string {
	const label = "[code]"
	lineLen := width - 4
	left := (lineLen - len(label)) / 2
	right := lineLen - len(label) - left
	return darkGray + strings.Repeat(codeBorder, left) + reset + label +
		darkGray + strings.Repeat(codeBorder, right) + reset
}

// stripCodeBlockPrefix drops everything up to and including the code bar
// and one following space.
func stripCodeBlockPrefix(line string) string {
	idx := strings.Index(line, codeBar)
	if idx < 0 {
		return line
	}
	after := idx + len(codeBar)
	if after < len(line) && line[after] == ' ' {
		after++
	}
	return line[after:]
}

// Report is one analysis rendered as a standalone HTML page.
type Report struct {
	Title    string
	Provider string
	Model    string
	Text     string
	Time     time.Time
}

const reportStyle = `body { font-family: sans-serif; padding: 10px; }
.header { color: #555; font-size: 0.9em; margin-bottom: 15px; }
.title { font-size: 1.2em; font-weight: bold; margin-bottom: 20px; }
.content { border: 1px solid #ccc; padding: 15px; background-color: #f9f9f9; border-radius: 5px; }
pre { background-color: #f0f0f0; padding: 8px; overflow-x: auto; }`

// IsHTMLDocument reports whether text is already a complete HTML document.
func IsHTMLDocument(text string) bool {
	t := strings.ToLower(strings.TrimSpace(text))
	return strings.HasPrefix(t, "<!doctype") || strings.HasPrefix(t, "<html")
}

// RenderHTML produces an HTML page for the report. Markdown text is converted
// and wrapped; a model reply that is already a full HTML document only gets
// the date header injected after its body tag.
func RenderHTML(r Report) string {
	date := r.Time.Format("2006-01-02")
	clock := r.Time.Format("15:04:05")

	if IsHTMLDocument(r.Text) {
		header := fmt.Sprintf("<div style='font-family: sans-serif; color: #555; font-size: 0.9em; "+
			"padding: 10px; border-bottom: 1px solid #eee; background-color: #fcfcfc;'>"+
			"Analysis Date: %s, Time: %s</div>", date, clock)
		loc := bodyTagRegex.FindStringIndex(r.Text)
		if loc == nil {
			return r.Text
		}
		return r.Text[:loc[1]] + header + r.Text[loc[1]:]
	}

	p := parser.NewWithExtensions(parser.CommonExtensions)
	renderer := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags | mdhtml.HrefTargetBlank})
	body := gomarkdown.ToHTML([]byte(r.Text), p, renderer)

	title := r.Title
	if strings.TrimSpace(title) == "" {
		title = "Unknown"
	}

	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\">")
	fmt.Fprintf(&b, "<title>%s</title>", stdhtml.EscapeString(title))
	fmt.Fprintf(&b, "<style>%s</style></head><body>\n", reportStyle)
	fmt.Fprintf(&b, "<div class='header'>Date: %s, Time: %s", date, clock)
	if r.Provider != "" {
		fmt.Fprintf(&b, " &middot; %s", stdhtml.EscapeString(r.Provider))
		if r.Model != "" {
			fmt.Fprintf(&b, " (%s)", stdhtml.EscapeString(r.Model))
		}
	}
	b.WriteString("</div>\n")
	fmt.Fprintf(&b, "<div class='title'>Dump: %s</div>\n", stdhtml.EscapeString(title))
	b.WriteString("<div class='content'>\n")
	b.Write(body)
	b.WriteString("</div>\n</body></html>\n")
	return b.String()
}

// RenderErrorHTML produces the page shown when an analysis fails.
func RenderErrorHTML(message string) string {
	return "<html><body><h3>Error</h3><p>" + stdhtml.EscapeString(message) + "</p></body></html>\n"
}

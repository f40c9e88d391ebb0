package analyzer

import "strings"

// Placeholders recognized in prompt templates.
const (
	PlaceholderTitle   = "{title}"
	PlaceholderContent = "{dump_content}"
)

// UnknownTitle replaces an absent dump title.
const UnknownTitle = "Unknown"

// DefaultPromptTemplate asks for the four-part dump analysis.
const DefaultPromptTemplate = `You are an expert ABAP developer analyzing a runtime dump/error.

Dump: {title}

Please analyze the following ABAP dump and provide:
1. Root cause analysis
2. Possible solutions or fixes
3. Best practices to prevent this error
4. Any relevant SAP notes or documentation references if applicable

ABAP Dump Content:
---
{dump_content}
---

Provide a clear, concise analysis that would help a developer resolve this issue.`

// BuildPrompt fills template with title and content. A blank template selects
// DefaultPromptTemplate. Substitution is a single pass, so placeholders that
// occur inside the dump itself are left alone.
func BuildPrompt(template, title, content string) string {
	if strings.TrimSpace(template) == "" {
		template = DefaultPromptTemplate
	}
	if strings.TrimSpace(title) == "" {
		title = UnknownTitle
	}

	r := strings.NewReplacer(
		PlaceholderTitle, title,
		PlaceholderContent, content,
	)
	return r.Replace(template)
}

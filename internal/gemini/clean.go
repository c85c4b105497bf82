package gemini

import "strings"

// CleanMarkdown strips a surrounding markdown code fence from a model
// response. Models frequently wrap whole-document answers in ```markdown
// fences even when asked not to.
func CleanMarkdown(text string) string {
	text = strings.TrimSpace(text)
	if text == "" {
		return ""
	}

	if strings.HasPrefix(text, "```markdown") {
		text = text[len("```markdown"):]
	} else if strings.HasPrefix(text, "```") {
		text = text[len("```"):]
	}

	if strings.HasSuffix(text, "```") {
		text = text[:len(text)-len("```")]
	}

	return strings.TrimSpace(text)
}

package intake

import (
	"regexp"
	"strings"
)

var (
	multiSpace  = regexp.MustCompile(`[ \t]+`)
	multiBlank  = regexp.MustCompile(`\n\n\n+`)
	bulletRunes = strings.NewReplacer("•", "-", "·", "-", "•", "-")
)

// CleanText normalizes resume text: unifies line endings and bullets,
// collapses runs of spaces, and caps consecutive blank lines at one.
// Section structure (headings, bullet lists) is kept intact since the
// question generator reads the resume as plain text.
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")
	content = bulletRunes.Replace(content)

	lines := strings.Split(content, "\n")
	cleaned := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		trimmed := strings.TrimLeft(line, " \t")
		if trimmed == "" {
			cleaned = append(cleaned, "")
			continue
		}
		indent := len(line) - len(trimmed)
		body := multiSpace.ReplaceAllString(trimmed, " ")
		if indent > 0 {
			body = strings.Repeat(" ", indent) + body
		}
		cleaned = append(cleaned, body)
	}

	out := strings.Join(cleaned, "\n")
	out = multiBlank.ReplaceAllString(out, "\n\n")
	return strings.TrimSpace(out)
}

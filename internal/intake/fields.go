package intake

import (
	"regexp"
	"strings"
)

var (
	emailPattern = regexp.MustCompile(`[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}`)
	phonePattern = regexp.MustCompile(`(\+?\d{1,3}[-.\s]?)?\(?\d{3}\)?[-.\s]?\d{3}[-.\s]?\d{4}`)
)

// Fields are contact details lifted from resume text to pre-fill the
// candidate form. Any of them may be empty; the form asks for what is
// missing.
type Fields struct {
	Name  string
	Email string
	Phone string
}

// maxNameLines bounds how deep the name heuristic looks; past the opening
// lines a short line is more likely a section heading than a name.
const maxNameLines = 5

// ExtractFields pulls name, email, and phone from resume text. The name
// heuristic takes the first of the opening lines that is short and not a
// contact detail or a section heading; resumes lead with the name, maybe
// after a "RESUME" banner.
func ExtractFields(text string) Fields {
	f := Fields{
		Email: emailPattern.FindString(text),
		Phone: strings.TrimSpace(phonePattern.FindString(text)),
	}

	seen := 0
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if looksLikeName(line) {
			f.Name = line
			break
		}
		seen++
		if seen >= maxNameLines {
			break
		}
	}
	return f
}

func looksLikeName(line string) bool {
	if len(line) > 60 {
		return false
	}
	if strings.ContainsAny(line, "@#/\\") {
		return false
	}
	if phonePattern.MatchString(line) {
		return false
	}
	words := strings.Fields(line)
	if len(words) < 1 || len(words) > 5 {
		return false
	}
	// All-caps single tokens like "RESUME" or "CURRICULUM VITAE" are
	// headings, not names.
	upper := strings.ToUpper(line)
	if line == upper && !strings.Contains(line, " ") {
		return false
	}
	if upper == "CURRICULUM VITAE" || upper == "RESUME" || upper == "CV" {
		return false
	}
	return true
}

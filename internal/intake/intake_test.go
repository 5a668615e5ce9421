package intake

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleResume = `Jordan Blake
jordan.blake@example.com | (555) 123-4567

EXPERIENCE

Senior Full-Stack Developer, Acme Corp
- Built React dashboards   backed by Node.js services
- Designed PostgreSQL schemas

SKILLS
React, TypeScript, Node.js, PostgreSQL
`

func writeTemp(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestFromFile_PlainText(t *testing.T) {
	path := writeTemp(t, "resume.txt", sampleResume)

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jordan Blake")
	assert.Contains(t, text, "Built React dashboards backed by Node.js services",
		"runs of spaces collapse")
}

func TestFromFile_Markdown(t *testing.T) {
	path := writeTemp(t, "resume.md", "# Jordan Blake\n\n\n\n- React\n- Node.js\n")

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "# Jordan Blake")
	assert.NotContains(t, text, "\n\n\n", "blank runs are capped")
}

func TestFromFile_HTML(t *testing.T) {
	html := `<html><head><script>track()</script></head><body>
		<nav>Home</nav>
		<main><h1>Jordan Blake</h1><p>Full-stack developer.</p>
		<ul><li>React</li><li>PostgreSQL</li></ul></main>
		<footer>contact</footer></body></html>`
	path := writeTemp(t, "resume.html", html)

	text, err := FromFile(path)
	require.NoError(t, err)
	assert.Contains(t, text, "Jordan Blake")
	assert.Contains(t, text, "PostgreSQL")
	assert.NotContains(t, text, "track()")
	assert.NotContains(t, text, "Home", "nav chrome is stripped")
}

func TestFromFile_UnsupportedFormats(t *testing.T) {
	for _, name := range []string{"resume.pdf", "resume.docx", "resume.doc", "resume.exe"} {
		path := writeTemp(t, name, "binary-ish content")
		_, err := FromFile(path)
		require.Error(t, err, name)
		assert.True(t, errors.Is(err, ErrUnsupportedFormat), name)

		var intakeErr *Error
		require.ErrorAs(t, err, &intakeErr)
		assert.Equal(t, path, intakeErr.Source)
	}
}

func TestFromFile_Missing(t *testing.T) {
	_, err := FromFile(filepath.Join(t.TempDir(), "nope.txt"))
	assert.Error(t, err)
}

func TestFromFile_EmptyAfterCleaning(t *testing.T) {
	path := writeTemp(t, "resume.txt", "   \n\t\n  ")
	_, err := FromFile(path)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrEmptyResume))
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf", "a\r\nb\r\nc", "a\nb\nc"},
		{"unicode bullets", "• React\n· Node", "- React\n- Node"},
		{"space runs", "one   two\t\tthree", "one two three"},
		{"blank cap", "a\n\n\n\n\nb", "a\n\nb"},
		{"surrounding space", "  \n hello \n  ", "hello"},
		{"empty", "", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, CleanText(tc.in))
		})
	}
}

func TestExtractFields(t *testing.T) {
	f := ExtractFields(sampleResume)
	assert.Equal(t, "Jordan Blake", f.Name)
	assert.Equal(t, "jordan.blake@example.com", f.Email)
	assert.Equal(t, "(555) 123-4567", f.Phone)
}

func TestExtractFields_NameAfterHeadingBanner(t *testing.T) {
	f := ExtractFields("RESUME\nJordan Blake\njordan@example.com")
	assert.Equal(t, "Jordan Blake", f.Name, "banner is skipped, not taken for the name")
	assert.Equal(t, "jordan@example.com", f.Email)

	f = ExtractFields("CURRICULUM VITAE\n\nJordan Blake\njordan@example.com")
	assert.Equal(t, "Jordan Blake", f.Name)
}

func TestExtractFields_NameSearchStopsAfterOpeningLines(t *testing.T) {
	text := "RESUME\n#1\n#2\n#3\n#4\nJordan Blake\njordan@example.com"
	f := ExtractFields(text)
	assert.Empty(t, f.Name, "a name buried past the opening lines is not trusted")
	assert.Equal(t, "jordan@example.com", f.Email)
}

func TestExtractFields_MissingEverything(t *testing.T) {
	f := ExtractFields("a very long opening sentence that could not possibly be anyone's name because it just keeps going")
	assert.Empty(t, f.Name)
	assert.Empty(t, f.Email)
	assert.Empty(t, f.Phone)
}

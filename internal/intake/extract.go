// Package intake turns an uploaded resume into clean text plus the
// candidate contact fields the interview form pre-fills.
package intake

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Plain-text formats read directly. PDF and Word documents are rejected
// with ErrUnsupportedFormat rather than half-parsed: garbled text would
// poison question generation silently.
var textExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
}

var htmlExtensions = map[string]bool{
	".html": true,
	".htm":  true,
}

// FromFile reads a resume file and returns its cleaned text.
func FromFile(path string) (string, error) {
	ext := strings.ToLower(filepath.Ext(path))

	switch {
	case textExtensions[ext], htmlExtensions[ext]:
	case ext == ".pdf", ext == ".doc", ext == ".docx":
		return "", &Error{Source: path, Message: fmt.Sprintf("%s files are not supported, convert to .txt or .md", ext), Cause: ErrUnsupportedFormat}
	default:
		return "", &Error{Source: path, Message: fmt.Sprintf("unrecognized extension %q", ext), Cause: ErrUnsupportedFormat}
	}

	content, err := os.ReadFile(path)
	if err != nil {
		return "", &Error{Source: path, Message: "failed to read file", Cause: err}
	}

	text := string(content)
	if htmlExtensions[ext] {
		text, err = FromHTML(text)
		if err != nil {
			return "", &Error{Source: path, Message: "failed to parse HTML", Cause: err}
		}
	}

	text = CleanText(text)
	if text == "" {
		return "", &Error{Source: path, Message: "no text after cleaning", Cause: ErrEmptyResume}
	}
	return text, nil
}

// FromHTML strips an HTML document down to its readable text.
func FromHTML(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", err
	}

	doc.Find("nav, footer, header, script, style, noscript, .sidebar, .cookie-banner").Remove()

	root := doc.Find("main, article, .resume, #resume").First()
	if root.Length() == 0 {
		root = doc.Find("body")
	}

	var sb strings.Builder
	root.Find("h1, h2, h3, h4, p, li, td, div, span").Each(func(_ int, sel *goquery.Selection) {
		if sel.Children().Length() > 0 {
			return
		}
		if text := strings.TrimSpace(sel.Text()); text != "" {
			sb.WriteString(text)
			sb.WriteString("\n")
		}
	})

	text := sb.String()
	if strings.TrimSpace(text) == "" {
		// Markup-free fallback for fragments without block elements.
		text = root.Text()
	}
	return text, nil
}

package intake

import (
	"context"
	"log"

	"github.com/jonathan/interview-agent/internal/intake/fetch"
)

// FromURL fetches a resume or profile page and returns its cleaned text.
// Pages that come back as JavaScript shells are retried through the
// headless browser when the options allow it.
func FromURL(ctx context.Context, rawURL string, opts *fetch.Options) (string, error) {
	if opts == nil {
		opts = fetch.DefaultOptions()
	}

	page, err := fetch.Page(ctx, rawURL, opts)
	if err != nil {
		return "", err
	}

	text, err := FromHTML(page.HTML)
	if err != nil {
		return "", &Error{Source: rawURL, Message: "failed to parse HTML", Cause: err}
	}
	text = CleanText(text)

	if fetch.NeedsBrowser(text) && opts.AllowBrowser {
		log.Printf("[INTAKE] %s looks client-rendered (%d chars); retrying with browser", rawURL, len(text))
		html, renderErr := fetch.Rendered(ctx, rawURL, opts.Timeout, opts.Verbose)
		if renderErr != nil {
			log.Printf("[INTAKE] browser fallback failed, keeping plain fetch: %v", renderErr)
		} else if rendered, parseErr := FromHTML(html); parseErr == nil {
			if cleaned := CleanText(rendered); len(cleaned) > len(text) {
				text = cleaned
			}
		}
	}

	if text == "" {
		return "", &Error{Source: rawURL, Message: "no text after cleaning", Cause: ErrEmptyResume}
	}
	return text, nil
}

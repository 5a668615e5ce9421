// Package fetch retrieves resume or profile pages over HTTP, with a
// headless-browser fallback for pages that render their content in
// JavaScript.
package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// DefaultTimeout bounds a plain HTTP fetch.
const DefaultTimeout = 30 * time.Second

// DefaultUserAgent identifies the agent to remote servers.
const DefaultUserAgent = "Mozilla/5.0 (compatible; InterviewAgent/1.0)"

// Result holds the raw page from a fetch.
type Result struct {
	URL         string
	HTML        string
	ContentType string
	StatusCode  int
	// Rendered is true when the HTML came from the headless browser.
	Rendered bool
}

// Error wraps a fetch failure with its URL.
type Error struct {
	URL     string
	Message string
	Cause   error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("fetch error for %s: %s: %v", e.URL, e.Message, e.Cause)
	}
	return fmt.Sprintf("fetch error for %s: %s", e.URL, e.Message)
}

func (e *Error) Unwrap() error { return e.Cause }

// Options configures fetching.
type Options struct {
	Timeout   time.Duration
	UserAgent string
	// AllowBrowser permits the headless-browser fallback for pages whose
	// plain HTML carries too little text. Requires Chrome on the host.
	AllowBrowser bool
	Verbose      bool
}

// DefaultOptions returns the defaults used by the CLI.
func DefaultOptions() *Options {
	return &Options{
		Timeout:      DefaultTimeout,
		UserAgent:    DefaultUserAgent,
		AllowBrowser: true,
	}
}

// Page fetches a URL's HTML over plain HTTP.
func Page(ctx context.Context, rawURL string, opts *Options) (*Result, error) {
	if opts == nil {
		opts = DefaultOptions()
	}

	parsed, err := url.Parse(rawURL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return nil, &Error{URL: rawURL, Message: "invalid URL", Cause: err}
	}

	client := &http.Client{Timeout: opts.Timeout}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to create request", Cause: err}
	}
	req.Header.Set("User-Agent", opts.UserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "HTTP request failed", Cause: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{URL: rawURL, Message: "failed to read response body", Cause: err}
	}

	result := &Result{
		URL:         rawURL,
		HTML:        string(body),
		ContentType: resp.Header.Get("Content-Type"),
		StatusCode:  resp.StatusCode,
	}
	if resp.StatusCode != http.StatusOK {
		return result, &Error{URL: rawURL, Message: fmt.Sprintf("HTTP status %d", resp.StatusCode)}
	}
	return result, nil
}

// NeedsBrowser reports whether extracted text is too thin to trust,
// meaning the page most likely renders its content client-side.
func NeedsBrowser(extractedText string) bool {
	return len(strings.TrimSpace(extractedText)) < minContentLength
}

const minContentLength = 400

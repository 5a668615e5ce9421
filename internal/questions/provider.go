package questions

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/schemas"
)

// Result is the outcome of one question-set request.
type Result struct {
	Questions []Question
	// SessionID is the chat session handle opened during AI generation.
	// Empty when the fallback set was used.
	SessionID string
	// Fallback reports whether the built-in standard set was returned.
	Fallback bool
}

// Provider produces the question set for an interview. When a resume is
// available and an LLM client is configured it asks the model for tailored
// questions; in every failure mode it degrades to the standard set.
type Provider struct {
	client  llm.Client
	timeout time.Duration
	notify  notify.Func
}

// NewProvider creates a question provider. A nil client means AI generation
// is unavailable and every request returns the fallback set.
func NewProvider(client llm.Client, timeout time.Duration, notifyFn notify.Func) *Provider {
	if notifyFn == nil {
		notifyFn = notify.Log()
	}
	return &Provider{client: client, timeout: timeout, notify: notifyFn}
}

// Generate returns the question set for a candidate. The AI path is taken
// only when resumeText is non-empty and a client is configured; any timeout,
// provider error, parse failure, or schema violation falls back to the
// standard set. Falling back is never an error for the caller.
//
// The question set this returns is bound to the candidate once; resuming an
// interview must reuse the stored set, not call Generate again.
func (p *Provider) Generate(ctx context.Context, resumeText string) Result {
	if resumeText == "" {
		return Result{Questions: FallbackQuestions(), Fallback: true}
	}
	if p.client == nil {
		p.notify(notify.LevelWarning, "AI question generation is not configured; using standard questions")
		return Result{Questions: FallbackQuestions(), Fallback: true}
	}

	prompt := buildGenerationPrompt(resumeText)

	var sessionID string
	text, status, err := llm.Call(ctx, p.timeout, func(callCtx context.Context) (string, error) {
		id, response, callErr := p.client.StartSession(callCtx, prompt, llm.TierStandard)
		if callErr != nil {
			return "", callErr
		}
		sessionID = id
		return response, nil
	})

	switch status {
	case llm.CallTimedOut:
		log.Printf("[QUESTIONS] generation timed out after %s: %v", p.timeout, err)
		p.notify(notify.LevelError, "AI question generation timed out; using standard questions")
		return Result{Questions: FallbackQuestions(), Fallback: true}
	case llm.CallFailed:
		log.Printf("[QUESTIONS] generation failed: %v", err)
		p.notify(notify.LevelError, "AI question generation failed; using standard questions")
		return Result{Questions: FallbackQuestions(), Fallback: true}
	}

	qs, parseErr := parseGeneration(text)
	if parseErr != nil {
		log.Printf("[QUESTIONS] rejected generation response: %v", parseErr)
		p.notify(notify.LevelError, "AI returned an invalid question set; using standard questions")
		return Result{Questions: FallbackQuestions(), Fallback: true}
	}

	return Result{Questions: qs, SessionID: sessionID}
}

// parseGeneration extracts, schema-checks, and decodes a generation response.
func parseGeneration(text string) ([]Question, error) {
	document := llm.ExtractJSONObject(text)
	if document == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	if err := schemas.ValidateGeneration(document); err != nil {
		return nil, err
	}

	var payload struct {
		Questions []Question `json:"questions"`
	}
	if err := json.Unmarshal([]byte(document), &payload); err != nil {
		return nil, fmt.Errorf("failed to decode questions: %w", err)
	}

	for i := range payload.Questions {
		if payload.Questions[i].ID == "" {
			payload.Questions[i].ID = fmt.Sprintf("ai-%d", i+1)
		}
		if payload.Questions[i].Category == "" {
			payload.Questions[i].Category = "General"
		}
	}

	if err := Validate(payload.Questions); err != nil {
		return nil, err
	}
	return payload.Questions, nil
}

func buildGenerationPrompt(resumeText string) string {
	template := prompts.MustGet("interview.json", "generate-questions")
	return prompts.Format(template, map[string]string{"Resume": resumeText})
}

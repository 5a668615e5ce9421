package scoring

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/prompts"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/registry"
	"github.com/jonathan/interview-agent/internal/schemas"
)

// Outcome is the result of evaluating a completed interview.
type Outcome struct {
	Score   int
	Summary string
	// Evaluation is the structured AI breakdown; nil when the deterministic
	// fallback produced the score.
	Evaluation *registry.Evaluation
}

// Engine evaluates completed interviews. The AI path continues the
// candidate's generation session when its handle is still open, or
// reconstructs equivalent context standalone (the path resumed sessions
// take after a reload). Every failure mode degrades to the deterministic
// fallback; evaluation never fails.
type Engine struct {
	client  llm.Client
	timeout time.Duration
	notify  notify.Func
}

// NewEngine creates a scoring engine. A nil client means AI evaluation is
// unavailable and every interview is scored by the fallback heuristics.
func NewEngine(client llm.Client, timeout time.Duration, notifyFn notify.Func) *Engine {
	if notifyFn == nil {
		notifyFn = notify.Log()
	}
	return &Engine{client: client, timeout: timeout, notify: notifyFn}
}

// Evaluate scores a candidate's interview against its question set.
func (e *Engine) Evaluate(ctx context.Context, cand registry.Candidate, qs []questions.Question) Outcome {
	answers := prepareAnswers(cand.Answers, qs)

	if e.client == nil || cand.ResumeText == "" {
		if e.client == nil {
			e.notify(notify.LevelWarning, "AI evaluation is not configured; using heuristic scoring")
		}
		score, summary := FallbackEvaluate(answers, qs)
		return Outcome{Score: score, Summary: summary}
	}

	prompt := buildEvaluationPrompt(cand.ResumeText, qs, answers)

	text, status, err := llm.Call(ctx, e.timeout, func(callCtx context.Context) (string, error) {
		if cand.AISessionID != "" && e.client.HasSession(cand.AISessionID) {
			return e.client.ContinueSession(callCtx, cand.AISessionID, prompt)
		}
		return e.client.GenerateJSON(callCtx, prompt, llm.TierAdvanced)
	})

	switch status {
	case llm.CallTimedOut:
		log.Printf("[SCORING] evaluation timed out after %s: %v", e.timeout, err)
		e.notify(notify.LevelError, "AI evaluation timed out; using heuristic scoring")
	case llm.CallFailed:
		log.Printf("[SCORING] evaluation failed: %v", err)
		e.notify(notify.LevelError, "AI evaluation failed; using heuristic scoring")
	default:
		eval, parseErr := parseEvaluation(text)
		if parseErr == nil {
			return Outcome{Score: eval.Score, Summary: eval.Summary, Evaluation: eval}
		}
		log.Printf("[SCORING] rejected evaluation response: %v", parseErr)
		e.notify(notify.LevelError, "AI returned an invalid evaluation; using heuristic scoring")
	}

	score, summary := FallbackEvaluate(answers, qs)
	return Outcome{Score: score, Summary: summary}
}

// prepareAnswers deduplicates by question id (most recent wins) and orders
// the answers by the canonical question order, dropping answers to unknown
// questions. At most one answer per question survives.
func prepareAnswers(answers []registry.Answer, qs []questions.Question) []registry.Answer {
	latest := make(map[string]registry.Answer, len(answers))
	for _, a := range answers {
		latest[a.QuestionID] = a
	}

	out := make([]registry.Answer, 0, len(qs))
	for _, q := range qs {
		if a, ok := latest[q.ID]; ok {
			out = append(out, a)
		}
	}
	return out
}

// parseEvaluation extracts, schema-checks, and decodes an evaluation
// response. Any shape deviation is a failure, not partial acceptance.
func parseEvaluation(text string) (*registry.Evaluation, error) {
	document := llm.ExtractJSONObject(text)
	if document == "" {
		return nil, fmt.Errorf("no JSON object in response")
	}

	if err := schemas.ValidateEvaluation(document); err != nil {
		return nil, err
	}

	var eval registry.Evaluation
	if err := json.Unmarshal([]byte(document), &eval); err != nil {
		return nil, fmt.Errorf("failed to decode evaluation: %w", err)
	}

	return &eval, nil
}

func buildEvaluationPrompt(resumeText string, qs []questions.Question, answers []registry.Answer) string {
	template := prompts.MustGet("interview.json", "evaluate-interview")
	return prompts.Format(template, map[string]string{
		"Resume":     resumeText,
		"Transcript": buildTranscript(qs, answers),
	})
}

func buildTranscript(qs []questions.Question, answers []registry.Answer) string {
	var sb strings.Builder
	byID := make(map[string]registry.Answer, len(answers))
	for _, a := range answers {
		byID[a.QuestionID] = a
	}
	for i, q := range qs {
		sb.WriteString(fmt.Sprintf("\nQ%d [%s, %ds limit]: %s\n", i+1, q.Difficulty, q.TimeLimit, q.Text))
		if a, ok := byID[q.ID]; ok {
			if strings.TrimSpace(a.Answer) == "" {
				sb.WriteString(fmt.Sprintf("A%d: (no answer, %ds used)\n", i+1, a.TimeSpent))
			} else {
				sb.WriteString(fmt.Sprintf("A%d (%ds used): %s\n", i+1, a.TimeSpent, a.Answer))
			}
		} else {
			sb.WriteString(fmt.Sprintf("A%d: (not answered)\n", i+1))
		}
	}
	return sb.String()
}

// Package observability provides formatted output utilities for the
// terminal interview flow.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/registry"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for the terminal interviewer
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintQuestion outputs one interview question with its position, difficulty,
// and time budget. The question text itself is printed unboxed so it never
// gets truncated.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintQuestion(index, total int, q questions.Question) {
	title := fmt.Sprintf("QUESTION %d/%d  [%s · %ds]", index+1, total, q.Difficulty, q.TimeLimit)

	var sb strings.Builder
	if q.Category != "" {
		sb.WriteString(fmt.Sprintf("Category: %s", q.Category))
	}
	p.printBox(title, sb.String())
	fmt.Fprintf(p.out, "\n%s\n", q.Text)
}

// PrintQuestionSet outputs a generated question set, one line per question.
func (p *Printer) PrintQuestionSet(source string, fallback bool, qs []questions.Question) {
	title := "GENERATED QUESTIONS"
	if fallback {
		title = "STANDARD QUESTIONS"
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Source: %s\n\n", source))
	for i, q := range qs {
		text := q.Text
		if len(text) > 40 {
			text = text[:37] + "..."
		}
		sb.WriteString(fmt.Sprintf("%d. [%s %ds] %s\n", i+1, q.Difficulty, q.TimeLimit, text))
	}

	p.printBox(title, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintResult outputs the final score and AI evaluation breakdown for a
// completed interview.
func (p *Printer) PrintResult(cand registry.Candidate) {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Candidate: %s\n", cand.Name))
	if cand.FinalScore != nil {
		sb.WriteString(fmt.Sprintf("Score:     %d/100\n", *cand.FinalScore))
	}
	if cand.TotalTime > 0 {
		sb.WriteString(fmt.Sprintf("Duration:  %s\n", cand.TotalTime.Round(1e9)))
	}
	sb.WriteString("\n")
	sb.WriteString(cand.AISummary)

	if eval := cand.AIEvaluation; eval != nil {
		writeSection(&sb, "Strengths", eval.Strengths)
		writeSection(&sb, "Weaknesses", eval.Weaknesses)
		writeSection(&sb, "Recommendations", eval.Recommendations)
	}

	p.printBox("INTERVIEW COMPLETE", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintAnswers outputs the recorded transcript of a completed interview.
func (p *Printer) PrintAnswers(answers []registry.Answer) {
	if len(answers) == 0 {
		return
	}

	var sb strings.Builder
	for i, a := range answers {
		text := a.Answer
		if text == "" {
			text = "(no answer)"
		}
		if len(text) > 45 {
			text = text[:42] + "..."
		}
		sb.WriteString(fmt.Sprintf("Q%d [%s, %ds used]\n", i+1, a.Difficulty, a.TimeSpent))
		sb.WriteString(fmt.Sprintf("  %s\n", text))
		if i < len(answers)-1 {
			sb.WriteString("\n")
		}
	}

	p.printBox("TRANSCRIPT", strings.TrimSuffix(sb.String(), "\n"))
}

func writeSection(sb *strings.Builder, title string, items []string) {
	if len(items) == 0 {
		return
	}
	sb.WriteString(fmt.Sprintf("\n%s:\n", title))
	count := min(len(items), maxItemsToShow)
	for i := 0; i < count; i++ {
		item := items[i]
		if len(item) > 50 {
			item = item[:47] + "..."
		}
		sb.WriteString(fmt.Sprintf("  • %s\n", item))
	}
	if len(items) > maxItemsToShow {
		sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(items)-maxItemsToShow))
	}
}

// Package questions provides the interview question model and the question
// provider: AI-generated question sets with a canonical built-in fallback.
package questions

import "fmt"

// Difficulty is the difficulty level of an interview question.
type Difficulty string

// Difficulty levels in ascending order.
const (
	Easy   Difficulty = "Easy"
	Medium Difficulty = "Medium"
	Hard   Difficulty = "Hard"
)

// Per-difficulty answer time limits in seconds, fixed by contract.
const (
	EasyTimeLimit   = 20
	MediumTimeLimit = 60
	HardTimeLimit   = 120
)

// PerInterview is the number of questions in a complete interview:
// two Easy, two Medium, two Hard, in that order.
const PerInterview = 6

// Question is one interview question.
type Question struct {
	ID         string     `json:"id"`
	Text       string     `json:"text"`
	Difficulty Difficulty `json:"difficulty"`
	TimeLimit  int        `json:"timeLimit"`
	Category   string     `json:"category"`
}

// TimeLimitFor returns the canonical time limit for a difficulty.
func TimeLimitFor(d Difficulty) int {
	switch d {
	case Easy:
		return EasyTimeLimit
	case Medium:
		return MediumTimeLimit
	case Hard:
		return HardTimeLimit
	default:
		return MediumTimeLimit
	}
}

// ValidDifficulty reports whether d is a known difficulty level.
func ValidDifficulty(d Difficulty) bool {
	return d == Easy || d == Medium || d == Hard
}

// InterviewOrder returns the fixed difficulty sequence of an interview.
func InterviewOrder() []Difficulty {
	return []Difficulty{Easy, Easy, Medium, Medium, Hard, Hard}
}

// FallbackQuestions returns the built-in standard question set used whenever
// AI generation is unavailable or fails. Six questions, two per difficulty,
// covering generic full-stack topics.
func FallbackQuestions() []Question {
	return []Question{
		{
			ID:         "std-1",
			Text:       "What is the difference between state and props in React?",
			Difficulty: Easy,
			TimeLimit:  EasyTimeLimit,
			Category:   "React",
		},
		{
			ID:         "std-2",
			Text:       "Explain the difference between let, const, and var in JavaScript.",
			Difficulty: Easy,
			TimeLimit:  EasyTimeLimit,
			Category:   "JavaScript",
		},
		{
			ID:         "std-3",
			Text:       "How does the Node.js event loop handle asynchronous operations? Explain with an example.",
			Difficulty: Medium,
			TimeLimit:  MediumTimeLimit,
			Category:   "Node.js",
		},
		{
			ID:         "std-4",
			Text:       "Describe how you would design a REST API for a blog platform, including authentication and pagination.",
			Difficulty: Medium,
			TimeLimit:  MediumTimeLimit,
			Category:   "API Design",
		},
		{
			ID:         "std-5",
			Text:       "Compare SQL and NoSQL databases. When would you choose one over the other for a full-stack application?",
			Difficulty: Hard,
			TimeLimit:  HardTimeLimit,
			Category:   "Databases",
		},
		{
			ID:         "std-6",
			Text:       "Design a scalable architecture for a real-time chat application supporting millions of users. Discuss trade-offs.",
			Difficulty: Hard,
			TimeLimit:  HardTimeLimit,
			Category:   "System Design",
		},
	}
}

// Validate checks that a question set satisfies the interview contract:
// exactly six questions, each with non-empty text, a known difficulty, and a
// positive time limit.
func Validate(qs []Question) error {
	if len(qs) != PerInterview {
		return fmt.Errorf("expected %d questions, got %d", PerInterview, len(qs))
	}
	for i, q := range qs {
		if q.Text == "" {
			return fmt.Errorf("question %d has empty text", i+1)
		}
		if !ValidDifficulty(q.Difficulty) {
			return fmt.Errorf("question %d has unknown difficulty %q", i+1, q.Difficulty)
		}
		if q.TimeLimit <= 0 {
			return fmt.Errorf("question %d has non-positive time limit %d", i+1, q.TimeLimit)
		}
	}
	return nil
}

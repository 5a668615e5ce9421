// Package registry provides the durable collection of interview candidates.
// All candidate state flows through the registry's add/update/remove
// operations; nothing else mutates a candidate.
package registry

import (
	"time"

	"github.com/jonathan/interview-agent/internal/questions"
)

// Status is the interview lifecycle state of a candidate. Transitions are
// forward-only: not_started -> in_progress -> completed.
type Status string

// Candidate lifecycle states.
const (
	StatusNotStarted Status = "not_started"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// rank orders statuses for the forward-only transition check.
func (s Status) rank() int {
	switch s {
	case StatusNotStarted:
		return 0
	case StatusInProgress:
		return 1
	case StatusCompleted:
		return 2
	default:
		return -1
	}
}

// Answer is one candidate response to one question. The question text is
// captured verbatim at answer time; it is never re-looked-up later, since
// the AI and fallback question sets differ.
type Answer struct {
	QuestionID string               `json:"questionId"`
	Question   string               `json:"question"`
	Answer     string               `json:"answer"`
	TimeSpent  int                  `json:"timeSpent"`
	Difficulty questions.Difficulty `json:"difficulty"`
	Timestamp  time.Time            `json:"timestamp"`
}

// Evaluation is the structured AI evaluation of a completed interview.
// The deterministic fallback scorer produces only a score and summary;
// candidates scored that way carry no Evaluation.
type Evaluation struct {
	Score           int      `json:"score"`
	Summary         string   `json:"summary"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations"`
}

// Candidate is one interview subject.
type Candidate struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	ResumeText string `json:"resumeText,omitempty"`

	InterviewStatus      Status               `json:"interviewStatus"`
	CurrentQuestionIndex int                  `json:"currentQuestionIndex"`
	Answers              []Answer             `json:"answers"`
	AIQuestions          []questions.Question `json:"aiQuestions,omitempty"`
	AISessionID          string               `json:"aiSessionId,omitempty"`

	FinalScore   *int        `json:"finalScore,omitempty"`
	AISummary    string      `json:"aiSummary,omitempty"`
	AIEvaluation *Evaluation `json:"aiEvaluation,omitempty"`

	StartTime *time.Time    `json:"startTime,omitempty"`
	EndTime   *time.Time    `json:"endTime,omitempty"`
	TotalTime time.Duration `json:"totalTime,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
}

// AnswerFor returns the candidate's answer to a question id, if any.
func (c *Candidate) AnswerFor(questionID string) (Answer, bool) {
	for _, a := range c.Answers {
		if a.QuestionID == questionID {
			return a, true
		}
	}
	return Answer{}, false
}

// clone returns a deep copy so callers can never mutate registry state
// through a returned candidate.
func (c *Candidate) clone() Candidate {
	out := *c
	if c.Answers != nil {
		out.Answers = make([]Answer, len(c.Answers))
		copy(out.Answers, c.Answers)
	}
	if c.AIQuestions != nil {
		out.AIQuestions = make([]questions.Question, len(c.AIQuestions))
		copy(out.AIQuestions, c.AIQuestions)
	}
	if c.FinalScore != nil {
		score := *c.FinalScore
		out.FinalScore = &score
	}
	if c.AIEvaluation != nil {
		eval := *c.AIEvaluation
		eval.Strengths = append([]string(nil), c.AIEvaluation.Strengths...)
		eval.Weaknesses = append([]string(nil), c.AIEvaluation.Weaknesses...)
		eval.Recommendations = append([]string(nil), c.AIEvaluation.Recommendations...)
		out.AIEvaluation = &eval
	}
	if c.StartTime != nil {
		t := *c.StartTime
		out.StartTime = &t
	}
	if c.EndTime != nil {
		t := *c.EndTime
		out.EndTime = &t
	}
	return out
}

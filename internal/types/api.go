// Package types defines the request and response shapes of the interview
// agent's HTTP API.
package types

import (
	"github.com/go-playground/validator/v10"
)

// LoginRequest is the operator login request.
type LoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// LoginResponse carries the session token after a successful login.
type LoginResponse struct {
	Token string `json:"token"`
}

// CreateCandidateRequest registers a new candidate. Resume text is
// optional; without it the interview runs on the standard question set.
type CreateCandidateRequest struct {
	Name       string `json:"name" validate:"required,min=1"`
	Email      string `json:"email" validate:"omitempty,email"`
	Phone      string `json:"phone,omitempty"`
	ResumeText string `json:"resumeText,omitempty"`
	// ResumeURL fetches the resume from a public page instead.
	ResumeURL string `json:"resumeUrl,omitempty" validate:"omitempty,url"`
}

// CreateCandidateResponse returns the new candidate id.
type CreateCandidateResponse struct {
	ID string `json:"id"`
}

// StartInterviewRequest begins or resumes an interview.
type StartInterviewRequest struct {
	CandidateID string `json:"candidateId" validate:"required"`
	Resume      bool   `json:"resume,omitempty"`
}

// AbandonInterviewRequest force-completes an unfinished interview the
// operator chose not to resume.
type AbandonInterviewRequest struct {
	CandidateID string `json:"candidateId" validate:"required"`
}

// AnswerRequest submits the current question's answer.
type AnswerRequest struct {
	Text string `json:"text"`
}

// DraftRequest updates the in-flight answer text.
type DraftRequest struct {
	Text string `json:"text"`
}

// SessionResponse is the live session state.
type SessionResponse struct {
	State         string        `json:"state"`
	CandidateID   string        `json:"candidateId,omitempty"`
	QuestionIndex int           `json:"questionIndex"`
	QuestionTotal int           `json:"questionTotal"`
	Question      *QuestionView `json:"question,omitempty"`
	TimeRemaining int           `json:"timeRemaining"`
	TimerRunning  bool          `json:"timerRunning"`
	WelcomeBack   []string      `json:"welcomeBack,omitempty"`
}

// QuestionView is a question as shown to the interviewer. Difficulty and
// limit are shown; the candidate-facing text is the question itself.
type QuestionView struct {
	ID         string `json:"id"`
	Text       string `json:"text"`
	Difficulty string `json:"difficulty"`
	TimeLimit  int    `json:"timeLimit"`
	Category   string `json:"category,omitempty"`
}

var validate = validator.New()

// Validate checks the login request.
func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the candidate creation request.
func (r *CreateCandidateRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the interview start request.
func (r *StartInterviewRequest) Validate() error {
	return validate.Struct(r)
}

// Validate checks the abandon request.
func (r *AbandonInterviewRequest) Validate() error {
	return validate.Struct(r)
}

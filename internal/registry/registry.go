package registry

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jonathan/interview-agent/internal/questions"
)

// Profile is the candidate profile supplied at creation.
type Profile struct {
	Name       string
	Email      string
	Phone      string
	ResumeText string
}

// Patch is a merge-patch applied by Update. Nil fields are left untouched,
// so concurrent partial updates from different stages of the pipeline
// compose instead of clobbering each other.
type Patch struct {
	Name       *string
	Email      *string
	Phone      *string
	ResumeText *string

	Status               *Status
	CurrentQuestionIndex *int

	// UpsertAnswers are merged into the answer list keyed by question id:
	// an existing answer for the same question is replaced, never duplicated.
	UpsertAnswers []Answer

	// Questions binds the interview question set. It is set-once: an attempt
	// to overwrite an already-bound set is ignored, since changing question
	// content mid-interview would invalidate recorded answers.
	Questions []questions.Question

	AISessionID *string

	FinalScore   *int
	AISummary    *string
	AIEvaluation *Evaluation

	StartTime *time.Time
	EndTime   *time.Time
	TotalTime *time.Duration
}

// Registry is the in-memory ordered collection of candidates, keyed by id.
type Registry struct {
	mu    sync.RWMutex
	order []string
	byID  map[string]*Candidate
}

// New creates an empty registry.
func New() *Registry {
	return &Registry{byID: make(map[string]*Candidate)}
}

// Add creates a candidate from a profile and returns its fresh id
// synchronously, so the caller can immediately start an interview for it
// without looking the candidate back up.
func (r *Registry) Add(profile Profile) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	id := uuid.NewString()
	r.byID[id] = &Candidate{
		ID:              id,
		Name:            profile.Name,
		Email:           profile.Email,
		Phone:           profile.Phone,
		ResumeText:      profile.ResumeText,
		InterviewStatus: StatusNotStarted,
		Answers:         []Answer{},
		CreatedAt:       time.Now(),
	}
	r.order = append(r.order, id)
	return id
}

// Update applies a merge-patch to a candidate. Updating a non-existent id is
// a logged no-op, never an error: the pipeline issues speculative updates
// across async boundaries and must tolerate a concurrently deleted
// candidate. Returns whether the candidate existed.
func (r *Registry) Update(id string, patch Patch) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	c, ok := r.byID[id]
	if !ok {
		log.Printf("[REGISTRY] update for unknown candidate %s ignored", id)
		return false
	}

	if patch.Name != nil {
		c.Name = *patch.Name
	}
	if patch.Email != nil {
		c.Email = *patch.Email
	}
	if patch.Phone != nil {
		c.Phone = *patch.Phone
	}
	if patch.ResumeText != nil {
		c.ResumeText = *patch.ResumeText
	}

	if patch.Status != nil {
		if patch.Status.rank() < c.InterviewStatus.rank() {
			log.Printf("[REGISTRY] status regression %s -> %s for candidate %s ignored",
				c.InterviewStatus, *patch.Status, id)
		} else {
			c.InterviewStatus = *patch.Status
		}
	}

	if patch.CurrentQuestionIndex != nil {
		c.CurrentQuestionIndex = *patch.CurrentQuestionIndex
	}

	for _, answer := range patch.UpsertAnswers {
		upsertAnswer(c, answer)
	}

	if patch.Questions != nil {
		if len(c.AIQuestions) > 0 {
			log.Printf("[REGISTRY] question set already bound for candidate %s; overwrite ignored", id)
		} else {
			c.AIQuestions = make([]questions.Question, len(patch.Questions))
			copy(c.AIQuestions, patch.Questions)
		}
	}

	if patch.AISessionID != nil {
		c.AISessionID = *patch.AISessionID
	}
	if patch.FinalScore != nil {
		score := *patch.FinalScore
		c.FinalScore = &score
	}
	if patch.AISummary != nil {
		c.AISummary = *patch.AISummary
	}
	if patch.AIEvaluation != nil {
		eval := *patch.AIEvaluation
		c.AIEvaluation = &eval
	}
	if patch.StartTime != nil {
		t := *patch.StartTime
		c.StartTime = &t
	}
	if patch.EndTime != nil {
		t := *patch.EndTime
		c.EndTime = &t
	}
	if patch.TotalTime != nil {
		c.TotalTime = *patch.TotalTime
	}

	return true
}

// upsertAnswer replaces an existing answer for the same question id or
// appends a new one. The later-applied value wins.
func upsertAnswer(c *Candidate, answer Answer) {
	for i := range c.Answers {
		if c.Answers[i].QuestionID == answer.QuestionID {
			c.Answers[i] = answer
			return
		}
	}
	c.Answers = append(c.Answers, answer)
}

// Remove deletes a candidate. Removing an unknown id is a no-op.
func (r *Registry) Remove(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.byID[id]; !ok {
		return false
	}
	delete(r.byID, id)
	for i, existing := range r.order {
		if existing == id {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	return true
}

// Find returns a copy of a candidate by id.
func (r *Registry) Find(id string) (Candidate, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.byID[id]
	if !ok {
		return Candidate{}, false
	}
	return c.clone(), true
}

// All returns copies of all candidates in insertion order.
func (r *Registry) All() []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Candidate, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.byID[id].clone())
	}
	return out
}

// InProgress returns copies of all candidates whose interview is in
// progress, in insertion order. Used by the reload-recovery scan.
func (r *Registry) InProgress() []Candidate {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Candidate
	for _, id := range r.order {
		if r.byID[id].InterviewStatus == StatusInProgress {
			out = append(out, r.byID[id].clone())
		}
	}
	return out
}

// Load replaces the registry contents with a persisted candidate list,
// preserving its order. Used once at startup.
func (r *Registry) Load(candidates []Candidate) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.order = r.order[:0]
	r.byID = make(map[string]*Candidate, len(candidates))
	for i := range candidates {
		c := candidates[i].clone()
		if c.Answers == nil {
			c.Answers = []Answer{}
		}
		r.byID[c.ID] = &c
		r.order = append(r.order, c.ID)
	}
}

// Package session implements the interview session state machine: one
// interviewer-facing session that walks a candidate through a fixed
// six-question sequence with per-question countdowns, auto-submitting on
// expiry and surviving restarts through snapshot persistence.
package session

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/jonathan/interview-agent/internal/clock"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/registry"
	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/store"
)

// State is the interview session lifecycle state.
type State string

// Session lifecycle states. WelcomeBack is entered only from startup
// recovery, when an unfinished interview is found in the snapshot.
const (
	StateIdle          State = "idle"
	StateStarting      State = "starting"
	StateActive        State = "active"
	StateTransitioning State = "transitioning"
	StateCompleted     State = "completed"
	StateWelcomeBack   State = "welcome_back"
)

// QuestionSource produces an interview question set from a resume.
type QuestionSource interface {
	Generate(ctx context.Context, resumeText string) questions.Result
}

// Evaluator scores a completed interview.
type Evaluator interface {
	Evaluate(ctx context.Context, cand registry.Candidate, qs []questions.Question) scoring.Outcome
}

// Controller owns the single live interview session. All methods are safe
// for concurrent use; slow work (question generation, final evaluation)
// runs outside the lock so ticks and reads stay responsive.
type Controller struct {
	registry  *registry.Registry
	source    QuestionSource
	evaluator Evaluator
	store     store.Store

	nowFn func() time.Time

	mu sync.Mutex

	state       State
	candidateID string
	index       int
	set         []questions.Question

	questionStart time.Time
	timerRunning  bool
	timeRemaining int
	// resumeRemaining is the remaining time carried over from a snapshot or
	// an interrupted question; the next timer start consumes it.
	resumeRemaining int
	// expiryFired guards the expiry transition so one question expiring can
	// only ever produce one auto-submit, however many ticks observe it.
	expiryFired bool
	// draft is the in-flight answer text, captured on auto-submit.
	draft string
	// finalizing is set while evaluation runs outside the lock, so a
	// concurrent tick cannot start a second completion.
	finalizing bool

	welcomeBack []string
}

// Option configures a Controller.
type Option func(*Controller)

// WithNow overrides the time source; tests use it to drive the countdown
// deterministically.
func WithNow(nowFn func() time.Time) Option {
	return func(c *Controller) { c.nowFn = nowFn }
}

// NewController creates a session controller. The store may be nil, in
// which case snapshots are skipped and nothing survives a restart.
func NewController(reg *registry.Registry, source QuestionSource, evaluator Evaluator, st store.Store, opts ...Option) *Controller {
	c := &Controller{
		registry:  reg,
		source:    source,
		evaluator: evaluator,
		store:     st,
		nowFn:     time.Now,
		state:     StateIdle,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Bootstrap restores session state from the snapshot store. A snapshot
// whose current candidate no longer exists resets session fields to idle
// defaults; any candidate left in progress surfaces as a welcome-back
// offer instead of silently losing the interview.
func (c *Controller) Bootstrap(ctx context.Context) error {
	if c.store == nil {
		return nil
	}
	snap, err := c.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load session snapshot: %w", err)
	}
	if snap == nil {
		return nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.registry.Load(snap.Candidates)

	c.state = StateIdle
	c.candidateID = ""
	c.index = 0
	c.set = nil
	c.timerRunning = false
	c.resumeRemaining = 0

	current, currentOK := c.registry.Find(snap.CurrentCandidateID)
	completedView := currentOK && snap.State == string(StateCompleted) &&
		current.InterviewStatus == registry.StatusCompleted
	if snap.CurrentCandidateID != "" && !completedView &&
		(!currentOK || current.InterviewStatus != registry.StatusInProgress) {
		log.Printf("[SESSION] snapshot references candidate %s with no unfinished interview; resetting to idle", snap.CurrentCandidateID)
	}

	for _, cand := range c.registry.InProgress() {
		c.welcomeBack = append(c.welcomeBack, cand.ID)
	}
	switch {
	case len(c.welcomeBack) > 0:
		c.state = StateWelcomeBack
		if currentOK && current.InterviewStatus == registry.StatusInProgress {
			// Only the interrupted candidate gets its partial countdown back;
			// anyone else restarts their current question with a full clock.
			c.candidateID = current.ID
			c.resumeRemaining = snap.TimeRemaining
		}
		log.Printf("[SESSION] found %d unfinished interview(s); offering welcome back", len(c.welcomeBack))
	case completedView:
		// Reload straight after a completion: keep the results view up
		// until it is dismissed.
		c.state = StateCompleted
		c.candidateID = current.ID
		c.set = current.AIQuestions
		c.index = len(current.AIQuestions)
		if c.index > 0 {
			c.index--
		}
	}
	return nil
}

// WelcomeBackCandidates returns candidates with an interrupted interview
// awaiting a resume decision.
func (c *Controller) WelcomeBackCandidates() []registry.Candidate {
	c.mu.Lock()
	ids := append([]string(nil), c.welcomeBack...)
	c.mu.Unlock()

	out := make([]registry.Candidate, 0, len(ids))
	for _, id := range ids {
		if cand, ok := c.registry.Find(id); ok {
			out = append(out, cand)
		}
	}
	return out
}

// AddCandidate registers a candidate and returns its id immediately.
func (c *Controller) AddCandidate(profile registry.Profile) string {
	id := c.registry.Add(profile)
	c.checkpoint()
	return id
}

// Candidate returns a candidate by id.
func (c *Controller) Candidate(id string) (registry.Candidate, bool) {
	return c.registry.Find(id)
}

// Candidates returns all candidates in insertion order.
func (c *Controller) Candidates() []registry.Candidate {
	return c.registry.All()
}

// DeleteCandidate removes a candidate. Deleting the candidate of the live
// interview discards the session back to idle.
func (c *Controller) DeleteCandidate(id string) bool {
	c.mu.Lock()
	if c.candidateID == id {
		c.resetLocked()
	}
	c.welcomeBack = removeID(c.welcomeBack, id)
	if len(c.welcomeBack) == 0 && c.state == StateWelcomeBack {
		c.state = StateIdle
	}
	c.mu.Unlock()

	removed := c.registry.Remove(id)
	if removed {
		c.checkpoint()
	}
	return removed
}

// StartInterview begins an interview for a candidate, or resumes an
// interrupted one. A resume never regenerates questions: the bound set is
// reused verbatim and the interview continues at the recorded question with
// the recorded remaining time. A non-resume call for a candidate whose set
// is already bound is treated as a resume.
func (c *Controller) StartInterview(ctx context.Context, candidateID string, resuming bool) error {
	cand, ok := c.registry.Find(candidateID)
	if !ok {
		return fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}

	// A bound question set is fixed for the candidate's lifetime; a fresh
	// start request for them continues the interrupted interview rather
	// than consulting the question source a second time.
	if !resuming && cand.InterviewStatus == registry.StatusInProgress && len(cand.AIQuestions) == questions.PerInterview {
		log.Printf("[SESSION] %s already has a bound question set; resuming instead of restarting", candidateID)
		resuming = true
	}

	c.mu.Lock()
	if c.state == StateActive || c.state == StateStarting || c.state == StateTransitioning {
		c.mu.Unlock()
		return fmt.Errorf("an interview is already running: %w", ErrConflict)
	}

	if resuming {
		if cand.InterviewStatus != registry.StatusInProgress {
			c.mu.Unlock()
			return fmt.Errorf("candidate %s has no interview to resume: %w", candidateID, ErrConflict)
		}
		if len(cand.AIQuestions) != questions.PerInterview {
			c.mu.Unlock()
			return fmt.Errorf("candidate %s has no bound question set: %w", candidateID, ErrConflict)
		}

		carried := 0
		if c.candidateID == candidateID {
			carried = c.resumeRemaining
		}
		c.state = StateActive
		c.candidateID = candidateID
		c.index = cand.CurrentQuestionIndex
		if c.index >= questions.PerInterview {
			c.index = questions.PerInterview - 1
		}
		c.set = cand.AIQuestions
		c.resumeRemaining = carried
		c.timeRemaining = carried
		c.timerRunning = false
		c.draft = ""
		c.welcomeBack = removeID(c.welcomeBack, candidateID)
		idx := c.index
		c.mu.Unlock()

		log.Printf("[SESSION] resuming interview for %s at question %d", candidateID, idx+1)
		c.checkpoint()
		return nil
	}

	if cand.InterviewStatus == registry.StatusCompleted {
		c.mu.Unlock()
		return fmt.Errorf("candidate %s already completed the interview: %w", candidateID, ErrConflict)
	}

	c.state = StateStarting
	c.candidateID = candidateID
	c.index = 0
	c.set = nil
	c.resumeRemaining = 0
	c.timerRunning = false
	c.draft = ""
	c.mu.Unlock()

	// Question generation can take seconds; run it unlocked.
	result := c.source.Generate(ctx, cand.ResumeText)

	c.mu.Lock()
	if c.state != StateStarting || c.candidateID != candidateID {
		c.mu.Unlock()
		return fmt.Errorf("interview start was cancelled: %w", ErrConflict)
	}
	c.set = result.Questions
	c.state = StateActive
	c.mu.Unlock()

	now := c.nowFn()
	status := registry.StatusInProgress
	idx := 0
	patch := registry.Patch{
		Status:               &status,
		CurrentQuestionIndex: &idx,
		Questions:            result.Questions,
		AISessionID:          &result.SessionID,
	}
	if cand.StartTime == nil {
		patch.StartTime = &now
	}
	c.registry.Update(candidateID, patch)

	c.checkpoint()
	return nil
}

// StartQuestionTimer starts (or restarts after a resume) the countdown for
// the current question. Call it when the question is actually shown, not
// when the state machine advances to it.
func (c *Controller) StartQuestionTimer() error {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return fmt.Errorf("no active question: %w", ErrConflict)
	}
	if c.timerRunning {
		c.mu.Unlock()
		return nil
	}

	q := c.set[c.index]
	c.questionStart = clock.StartQuestionTimer(c.nowFn(), q.TimeLimit, c.resumeRemaining)
	c.resumeRemaining = 0
	c.timerRunning = true
	c.expiryFired = false
	c.timeRemaining, _ = clock.Tick(c.nowFn(), c.questionStart, q.TimeLimit)
	c.mu.Unlock()

	c.checkpoint()
	return nil
}

// SetDraft records the in-flight answer text so an expiry auto-submit
// captures whatever was typed.
func (c *Controller) SetDraft(text string) {
	c.mu.Lock()
	if c.state == StateActive {
		c.draft = text
	}
	c.mu.Unlock()
}

// SubmitAnswer records the answer to the current question and advances.
// On the final question it completes the interview, which blocks until
// evaluation settles.
func (c *Controller) SubmitAnswer(ctx context.Context, text string) error {
	c.mu.Lock()
	if c.state != StateActive || !c.timerRunning {
		c.mu.Unlock()
		return fmt.Errorf("no question is awaiting an answer: %w", ErrConflict)
	}
	c.recordAnswerLocked(text)
	return c.advanceLocked(ctx)
}

// Tick advances the countdown. When the current question's time expires it
// auto-submits the draft (possibly empty) exactly once and advances, even
// if many ticks observe the same expiry.
func (c *Controller) Tick(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateActive || !c.timerRunning {
		c.mu.Unlock()
		return
	}

	q := c.set[c.index]
	remaining, expired := clock.Tick(c.nowFn(), c.questionStart, q.TimeLimit)
	changed := remaining != c.timeRemaining
	c.timeRemaining = remaining

	if !expired || c.expiryFired {
		c.mu.Unlock()
		if changed {
			// Keep the persisted countdown fresh so a reload resumes from
			// the time actually left, not the last answer boundary.
			c.checkpoint()
		}
		return
	}
	c.expiryFired = true

	log.Printf("[SESSION] question %d expired; auto-submitting", c.index+1)
	c.recordAnswerLocked(c.draft)
	if err := c.advanceLocked(ctx); err != nil {
		log.Printf("[SESSION] auto-advance failed: %v", err)
	}
}

// recordAnswerLocked upserts the current question's answer. Time spent is
// the full limit minus what the clock says is left, clamped to the limit
// when the countdown already ran out.
func (c *Controller) recordAnswerLocked(text string) {
	q := c.set[c.index]
	remaining, _ := clock.Tick(c.nowFn(), c.questionStart, q.TimeLimit)
	spent := q.TimeLimit - remaining
	if spent > q.TimeLimit {
		spent = q.TimeLimit
	}

	c.registry.Update(c.candidateID, registry.Patch{
		UpsertAnswers: []registry.Answer{{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     text,
			TimeSpent:  spent,
			Difficulty: q.Difficulty,
			Timestamp:  c.nowFn(),
		}},
	})
	c.draft = ""
}

// advanceLocked moves to the next question or completes the interview.
// It is entered holding the lock and releases it before returning.
func (c *Controller) advanceLocked(ctx context.Context) error {
	c.timerRunning = false
	c.timeRemaining = 0

	if c.index+1 < len(c.set) {
		c.index++
		idx := c.index
		candidateID := c.candidateID
		c.mu.Unlock()

		c.registry.Update(candidateID, registry.Patch{CurrentQuestionIndex: &idx})
		c.checkpoint()
		return nil
	}

	return c.completeLocked(ctx)
}

// completeLocked finalizes the interview: marks the candidate completed,
// runs evaluation outside the lock, and records the outcome. Entered
// holding the lock; releases it before returning.
func (c *Controller) completeLocked(ctx context.Context) error {
	if c.finalizing {
		c.mu.Unlock()
		return nil
	}
	c.finalizing = true
	c.state = StateTransitioning
	candidateID := c.candidateID
	set := c.set
	c.mu.Unlock()

	err := c.finalizeCandidate(ctx, candidateID, set)
	c.settleCompletion(candidateID)
	return err
}

// finalizeCandidate marks a candidate completed, runs evaluation, and
// records the outcome. Callers must not hold the mutex.
func (c *Controller) finalizeCandidate(ctx context.Context, candidateID string, set []questions.Question) error {
	now := c.nowFn()
	status := registry.StatusCompleted
	patch := registry.Patch{Status: &status, EndTime: &now}
	if cand, ok := c.registry.Find(candidateID); ok && cand.StartTime != nil {
		total := now.Sub(*cand.StartTime)
		patch.TotalTime = &total
	}
	c.registry.Update(candidateID, patch)

	cand, ok := c.registry.Find(candidateID)
	if !ok {
		return fmt.Errorf("candidate %s vanished during completion: %w", candidateID, ErrNotFound)
	}

	outcome := c.evaluator.Evaluate(ctx, cand, set)

	score := outcome.Score
	summary := outcome.Summary
	c.registry.Update(candidateID, registry.Patch{
		FinalScore:   &score,
		AISummary:    &summary,
		AIEvaluation: outcome.Evaluation,
	})
	log.Printf("[SESSION] interview for %s completed with score %d", candidateID, score)
	return nil
}

func (c *Controller) settleCompletion(candidateID string) {
	c.mu.Lock()
	c.finalizing = false
	if c.candidateID == candidateID {
		c.state = StateCompleted
	}
	c.mu.Unlock()
	c.checkpoint()
}

// FinishEarly synthesizes empty answers for every unanswered question and
// completes the interview. Questions already answered keep their answers.
func (c *Controller) FinishEarly(ctx context.Context) error {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return fmt.Errorf("no interview is running: %w", ErrConflict)
	}

	cand, ok := c.registry.Find(c.candidateID)
	if !ok {
		c.resetLocked()
		c.mu.Unlock()
		return fmt.Errorf("candidate %s: %w", c.candidateID, ErrNotFound)
	}

	now := c.nowFn()
	var synthesized []registry.Answer
	for _, q := range c.set {
		if _, answered := cand.AnswerFor(q.ID); answered {
			continue
		}
		synthesized = append(synthesized, registry.Answer{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     "",
			TimeSpent:  0,
			Difficulty: q.Difficulty,
			Timestamp:  now,
		})
	}
	if len(synthesized) > 0 {
		c.registry.Update(c.candidateID, registry.Patch{UpsertAnswers: synthesized})
	}

	c.index = len(c.set) - 1
	c.timerRunning = false
	return c.completeLocked(ctx)
}

// FinishAbandoned force-completes an in-progress candidate who is not
// being resumed (the "start new" choice after a restart): every unanswered
// question gets an empty answer and the normal scoring pipeline runs, so
// the candidate keeps an auditable scored record instead of being dropped.
func (c *Controller) FinishAbandoned(ctx context.Context, candidateID string) error {
	cand, ok := c.registry.Find(candidateID)
	if !ok {
		return fmt.Errorf("candidate %s: %w", candidateID, ErrNotFound)
	}
	if cand.InterviewStatus != registry.StatusInProgress {
		return fmt.Errorf("candidate %s has no unfinished interview: %w", candidateID, ErrConflict)
	}

	c.mu.Lock()
	if c.candidateID == candidateID && c.state != StateWelcomeBack && c.state != StateIdle {
		c.mu.Unlock()
		return fmt.Errorf("candidate %s is in a live session: %w", candidateID, ErrConflict)
	}
	c.welcomeBack = removeID(c.welcomeBack, candidateID)
	if c.candidateID == candidateID {
		c.candidateID = ""
		c.resumeRemaining = 0
	}
	if c.state == StateWelcomeBack && len(c.welcomeBack) == 0 {
		c.state = StateIdle
	}
	c.mu.Unlock()

	set := cand.AIQuestions
	if len(set) != questions.PerInterview {
		set = questions.FallbackQuestions()
	}

	now := c.nowFn()
	var synthesized []registry.Answer
	for _, q := range set {
		if _, answered := cand.AnswerFor(q.ID); answered {
			continue
		}
		synthesized = append(synthesized, registry.Answer{
			QuestionID: q.ID,
			Question:   q.Text,
			Answer:     "",
			TimeSpent:  0,
			Difficulty: q.Difficulty,
			Timestamp:  now,
		})
	}
	if len(synthesized) > 0 {
		c.registry.Update(candidateID, registry.Patch{UpsertAnswers: synthesized})
	}

	log.Printf("[SESSION] force-completing abandoned interview for %s", candidateID)
	err := c.finalizeCandidate(ctx, candidateID, set)
	c.checkpoint()
	return err
}

// Reset hard-abandons the live interview without scoring it. The
// candidate keeps their in_progress record and any answers already
// given, so the interview can later be resumed or force-completed.
func (c *Controller) Reset() error {
	c.mu.Lock()
	if c.state != StateActive {
		c.mu.Unlock()
		return fmt.Errorf("no interview is running: %w", ErrConflict)
	}
	candidateID := c.candidateID
	c.resetLocked()
	c.mu.Unlock()

	log.Printf("[SESSION] discarded live interview for %s without scoring", candidateID)
	c.checkpoint()
	return nil
}

// Dismiss returns a completed or welcome-back session to idle without
// touching candidate records.
func (c *Controller) Dismiss() {
	c.mu.Lock()
	if c.state == StateCompleted || c.state == StateWelcomeBack || c.state == StateIdle {
		c.welcomeBack = nil
		c.resetLocked()
	}
	c.mu.Unlock()
	c.checkpoint()
}

func (c *Controller) resetLocked() {
	c.state = StateIdle
	c.candidateID = ""
	c.index = 0
	c.set = nil
	c.timerRunning = false
	c.timeRemaining = 0
	c.resumeRemaining = 0
	c.expiryFired = false
	c.draft = ""
}

// View is a read-only snapshot of the live session for rendering.
type View struct {
	State         State
	CandidateID   string
	QuestionIndex int
	QuestionTotal int
	Question      *questions.Question
	TimeRemaining int
	TimerRunning  bool
}

// View returns the current session state for display.
func (c *Controller) View() View {
	c.mu.Lock()
	defer c.mu.Unlock()

	v := View{
		State:         c.state,
		CandidateID:   c.candidateID,
		QuestionIndex: c.index,
		QuestionTotal: len(c.set),
		TimeRemaining: c.timeRemaining,
		TimerRunning:  c.timerRunning,
	}
	if c.state == StateActive && c.index < len(c.set) {
		q := c.set[c.index]
		v.Question = &q
	}
	return v
}

// checkpoint persists the session snapshot. Persistence failures are
// logged, never propagated: a broken store must not break the interview.
func (c *Controller) checkpoint() {
	if c.store == nil {
		return
	}

	c.mu.Lock()
	snap := store.Snapshot{
		Candidates:           c.registry.All(),
		CurrentCandidateID:   c.candidateID,
		State:                string(c.state),
		CurrentQuestionIndex: c.index,
		TimeRemaining:        c.timeRemaining,
		SavedAt:              c.nowFn(),
	}
	if c.timerRunning {
		start := c.questionStart
		snap.QuestionStartTime = &start
	}
	c.mu.Unlock()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := c.store.Save(ctx, snap); err != nil {
		log.Printf("[SESSION] failed to persist snapshot: %v", err)
	}
}

func removeID(ids []string, id string) []string {
	for i, existing := range ids {
		if existing == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}

package questions

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/llm"
	"github.com/jonathan/interview-agent/internal/notify"
)

// stubClient is a canned llm.Client for provider tests.
type stubClient struct {
	response string
	err      error
	delay    time.Duration
	sessions map[string]bool
	calls    int
}

func (s *stubClient) GenerateJSON(ctx context.Context, prompt string, tier llm.ModelTier) (string, error) {
	return s.response, s.err
}

func (s *stubClient) StartSession(ctx context.Context, prompt string, tier llm.ModelTier) (string, string, error) {
	s.calls++
	if s.delay > 0 {
		select {
		case <-time.After(s.delay):
		case <-ctx.Done():
			return "", "", ctx.Err()
		}
	}
	if s.err != nil {
		return "", "", s.err
	}
	if s.sessions == nil {
		s.sessions = make(map[string]bool)
	}
	id := fmt.Sprintf("session-%d", s.calls)
	s.sessions[id] = true
	return id, s.response, nil
}

func (s *stubClient) ContinueSession(ctx context.Context, sessionID, prompt string) (string, error) {
	if !s.sessions[sessionID] {
		return "", fmt.Errorf("unknown session: %s", sessionID)
	}
	return s.response, s.err
}

func (s *stubClient) HasSession(sessionID string) bool { return s.sessions[sessionID] }
func (s *stubClient) GetModel(tier llm.ModelTier) string { return "stub" }
func (s *stubClient) Close() error                       { return nil }

// recorder captures notifications for assertions.
type recorder struct {
	levels   []notify.Level
	messages []string
}

func (r *recorder) fn() notify.Func {
	return func(level notify.Level, message string) {
		r.levels = append(r.levels, level)
		r.messages = append(r.messages, message)
	}
}

func aiGenerationResponse() string {
	doc := `{"questions": [`
	specs := []struct {
		difficulty string
		limit      int
	}{
		{"Easy", 20}, {"Easy", 20}, {"Medium", 60}, {"Medium", 60}, {"Hard", 120}, {"Hard", 120},
	}
	for i, s := range specs {
		if i > 0 {
			doc += ","
		}
		doc += fmt.Sprintf(`{"id": "ai-q%d", "text": "Tailored question %d", "difficulty": %q, "timeLimit": %d, "category": "React"}`, i+1, i+1, s.difficulty, s.limit)
	}
	return doc + `]}`
}

func TestFallbackQuestions_Contract(t *testing.T) {
	qs := FallbackQuestions()
	require.NoError(t, Validate(qs))

	order := InterviewOrder()
	for i, q := range qs {
		assert.Equal(t, order[i], q.Difficulty)
		assert.Equal(t, TimeLimitFor(q.Difficulty), q.TimeLimit)
	}

	// First standard question is the Easy 20-second React question.
	assert.Equal(t, Easy, qs[0].Difficulty)
	assert.Equal(t, 20, qs[0].TimeLimit)
	assert.Equal(t, "React", qs[0].Category)
}

func TestGenerate_NoResumeUsesFallback(t *testing.T) {
	stub := &stubClient{response: aiGenerationResponse()}
	p := NewProvider(stub, time.Second, notify.Discard())

	res := p.Generate(context.Background(), "")
	assert.True(t, res.Fallback)
	assert.Equal(t, FallbackQuestions(), res.Questions)
	assert.Zero(t, stub.calls, "provider must not be called without resume text")
}

func TestGenerate_UnconfiguredWarns(t *testing.T) {
	rec := &recorder{}
	p := NewProvider(nil, time.Second, rec.fn())

	res := p.Generate(context.Background(), "resume text")
	assert.True(t, res.Fallback)
	assert.Equal(t, FallbackQuestions(), res.Questions)
	require.Len(t, rec.levels, 1)
	assert.Equal(t, notify.LevelWarning, rec.levels[0])
}

func TestGenerate_AISuccess(t *testing.T) {
	stub := &stubClient{response: aiGenerationResponse()}
	p := NewProvider(stub, time.Second, notify.Discard())

	res := p.Generate(context.Background(), "resume text")
	require.False(t, res.Fallback)
	require.Len(t, res.Questions, PerInterview)
	assert.Equal(t, "Tailored question 1", res.Questions[0].Text)
	assert.NotEmpty(t, res.SessionID)
	assert.True(t, stub.HasSession(res.SessionID))
}

func TestGenerate_FencedResponseAccepted(t *testing.T) {
	stub := &stubClient{response: "```json\n" + aiGenerationResponse() + "\n```"}
	p := NewProvider(stub, time.Second, notify.Discard())

	res := p.Generate(context.Background(), "resume text")
	assert.False(t, res.Fallback)
}

func TestGenerate_MalformedResponsesFallBack(t *testing.T) {
	fiveQuestions := `{"questions": [
		{"text": "a", "difficulty": "Easy", "timeLimit": 20},
		{"text": "b", "difficulty": "Easy", "timeLimit": 20},
		{"text": "c", "difficulty": "Medium", "timeLimit": 60},
		{"text": "d", "difficulty": "Medium", "timeLimit": 60},
		{"text": "e", "difficulty": "Hard", "timeLimit": 120}]}`

	tests := []struct {
		name     string
		response string
	}{
		{"wrong count", fiveQuestions},
		{"non-json", "here are some questions for you"},
		{"empty", ""},
		{"wrong shape", `{"items": []}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recorder{}
			stub := &stubClient{response: tt.response}
			p := NewProvider(stub, time.Second, rec.fn())

			res := p.Generate(context.Background(), "resume text")
			assert.True(t, res.Fallback)
			assert.Equal(t, FallbackQuestions(), res.Questions)
			require.Len(t, rec.levels, 1)
			assert.Equal(t, notify.LevelError, rec.levels[0])
		})
	}
}

func TestGenerate_ProviderErrorFallsBack(t *testing.T) {
	rec := &recorder{}
	stub := &stubClient{err: fmt.Errorf("network down")}
	p := NewProvider(stub, time.Second, rec.fn())

	res := p.Generate(context.Background(), "resume text")
	assert.True(t, res.Fallback)
	require.Len(t, rec.levels, 1)
	assert.Equal(t, notify.LevelError, rec.levels[0])
}

func TestGenerate_TimeoutFallsBack(t *testing.T) {
	rec := &recorder{}
	stub := &stubClient{response: aiGenerationResponse(), delay: 5 * time.Second}
	p := NewProvider(stub, 30*time.Millisecond, rec.fn())

	start := time.Now()
	res := p.Generate(context.Background(), "resume text")
	assert.True(t, res.Fallback)
	assert.Less(t, time.Since(start), time.Second)
	require.Len(t, rec.levels, 1)
	assert.Equal(t, notify.LevelError, rec.levels[0])
}

package server

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/config"
	"github.com/jonathan/interview-agent/internal/notify"
	"github.com/jonathan/interview-agent/internal/questions"
	"github.com/jonathan/interview-agent/internal/registry"
	"github.com/jonathan/interview-agent/internal/scoring"
	"github.com/jonathan/interview-agent/internal/session"
	"github.com/jonathan/interview-agent/internal/store"
	"github.com/jonathan/interview-agent/internal/types"
)

const testPassword = "interview-room-4"

type testServer struct {
	*httptest.Server
	token string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	return newTestServerWithStore(t, store.NewMemoryStore())
}

func newTestServerWithStore(t *testing.T, st store.Store) *testServer {
	t.Helper()
	t.Setenv("RATE_LIMIT_ENABLED", "false")

	auth := &config.AuthConfig{BcryptCost: 10}
	hash, err := auth.HashPassword(testPassword)
	require.NoError(t, err)
	auth.PasswordHash = hash

	ctrl := session.NewController(
		registry.New(),
		questions.NewProvider(nil, time.Second, notify.Discard()),
		scoring.NewEngine(nil, time.Second, notify.Discard()),
		st,
	)
	require.NoError(t, ctrl.Bootstrap(context.Background()))

	srv, err := New(Config{
		Port: 0,
		Auth: auth,
		JWT:  &config.JWTConfig{Secret: "test-secret", ExpirationHours: 1},
	}, ctrl)
	require.NoError(t, err)

	ts := &testServer{Server: httptest.NewServer(srv.httpServer.Handler)}
	t.Cleanup(ts.Close)

	ts.token = ts.login(t, testPassword)
	return ts
}

func (ts *testServer) login(t *testing.T, password string) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/login", "", types.LoginRequest{Password: password})
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var login types.LoginResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&login))
	require.NotEmpty(t, login.Token)
	return login.Token
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, ts.URL+path, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	defer resp.Body.Close()
	var out T
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func (ts *testServer) createCandidate(t *testing.T) string {
	t.Helper()
	resp := ts.do(t, http.MethodPost, "/candidates", ts.token, types.CreateCandidateRequest{
		Name:       "Alex Rivera",
		Email:      "alex@example.com",
		ResumeText: "Full-stack developer. React, Node.js, PostgreSQL.",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	return decodeBody[types.CreateCandidateResponse](t, resp).ID
}

func TestLogin(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/login", "", types.LoginRequest{Password: "wrong"})
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/login", "", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestHealthIsOpen(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodGet, "/health", "", nil)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestProtectedRoutesRequireToken(t *testing.T) {
	ts := newTestServer(t)

	for _, path := range []string{"/candidates", "/session"} {
		resp := ts.do(t, http.MethodGet, path, "", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()

		resp = ts.do(t, http.MethodGet, path, "not-a-jwt", nil)
		assert.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
		resp.Body.Close()
	}
}

func TestCandidateLifecycle(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCandidate(t)

	resp := ts.do(t, http.MethodGet, "/candidates/"+id, ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cand := decodeBody[registry.Candidate](t, resp)
	assert.Equal(t, "Alex Rivera", cand.Name)
	assert.Equal(t, registry.StatusNotStarted, cand.InterviewStatus)

	resp = ts.do(t, http.MethodGet, "/candidates", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[[]registry.Candidate](t, resp)
	require.Len(t, list, 1)

	resp = ts.do(t, http.MethodDelete, "/candidates/"+id, ts.token, nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodGet, "/candidates/"+id, ts.token, nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestCreateCandidateValidation(t *testing.T) {
	ts := newTestServer(t)

	resp := ts.do(t, http.MethodPost, "/candidates", ts.token, types.CreateCandidateRequest{Email: "x@example.com"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "name is required")
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/candidates", ts.token,
		types.CreateCandidateRequest{Name: "A", Email: "not-an-email"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	resp.Body.Close()
}

func TestInterviewFlowOverAPI(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCandidate(t)

	resp := ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "active", state.State)
	assert.Equal(t, 6, state.QuestionTotal)

	for i := 0; i < 6; i++ {
		resp = ts.do(t, http.MethodPost, "/interview/question/start", ts.token, nil)
		require.Equal(t, http.StatusOK, resp.StatusCode)
		state = decodeBody[types.SessionResponse](t, resp)
		require.NotNil(t, state.Question)
		assert.Equal(t, i, state.QuestionIndex)
		assert.True(t, state.TimerRunning)
		assert.Equal(t, state.Question.TimeLimit, state.TimeRemaining)

		resp = ts.do(t, http.MethodPost, "/interview/answer", ts.token,
			types.AnswerRequest{Text: fmt.Sprintf("answer %d", i+1)})
		require.Equal(t, http.StatusOK, resp.StatusCode)
		state = decodeBody[types.SessionResponse](t, resp)
	}

	assert.Equal(t, "completed", state.State)

	resp = ts.do(t, http.MethodGet, "/candidates/"+id, ts.token, nil)
	cand := decodeBody[registry.Candidate](t, resp)
	assert.Equal(t, registry.StatusCompleted, cand.InterviewStatus)
	require.NotNil(t, cand.FinalScore)
	assert.GreaterOrEqual(t, *cand.FinalScore, 0)
	assert.LessOrEqual(t, *cand.FinalScore, 100)
	assert.Len(t, cand.Answers, 6)
}

func TestStartInterviewConflicts(t *testing.T) {
	ts := newTestServer(t)
	first := ts.createCandidate(t)
	second := ts.createCandidate(t)

	resp := ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: first})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: second})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()

}

func TestStartInterviewUnknownCandidate(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: "nope"})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	resp.Body.Close()
}

func TestAnswerWithoutActiveQuestion(t *testing.T) {
	ts := newTestServer(t)
	resp := ts.do(t, http.MethodPost, "/interview/answer", ts.token, types.AnswerRequest{Text: "?"})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)
	resp.Body.Close()
}

func TestFinishEarly(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCandidate(t)

	resp := ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/interview/finish", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "completed", state.State)

	resp = ts.do(t, http.MethodGet, "/candidates/"+id, ts.token, nil)
	cand := decodeBody[registry.Candidate](t, resp)
	require.NotNil(t, cand.FinalScore)
	assert.Equal(t, 0, *cand.FinalScore, "no answers means zero")

	resp = ts.do(t, http.MethodPost, "/interview/dismiss", ts.token, nil)
	state = decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "idle", state.State)
}

func TestAbandonAfterRestartOverAPI(t *testing.T) {
	st := store.NewMemoryStore()

	first := newTestServerWithStore(t, st)
	id := first.createCandidate(t)
	resp := first.do(t, http.MethodPost, "/interview/start", first.token,
		types.StartInterviewRequest{CandidateID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = first.do(t, http.MethodPost, "/interview/question/start", first.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = first.do(t, http.MethodPost, "/interview/answer", first.token,
		types.AnswerRequest{Text: "components and props"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	first.Close()

	// New server over the persisted snapshot: the candidate is surfaced
	// for an explicit resume-or-abandon choice.
	second := newTestServerWithStore(t, st)
	resp = second.do(t, http.MethodGet, "/session", second.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "welcome_back", state.State)
	require.Contains(t, state.WelcomeBack, id)

	resp = second.do(t, http.MethodPost, "/interview/abandon", second.token,
		types.AbandonInterviewRequest{CandidateID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "idle", state.State)
	assert.Empty(t, state.WelcomeBack)

	resp = second.do(t, http.MethodGet, "/candidates/"+id, second.token, nil)
	cand := decodeBody[registry.Candidate](t, resp)
	assert.Equal(t, registry.StatusCompleted, cand.InterviewStatus)
	assert.Len(t, cand.Answers, 6)
	require.NotNil(t, cand.FinalScore)

	resp = second.do(t, http.MethodPost, "/interview/abandon", second.token,
		types.AbandonInterviewRequest{CandidateID: id})
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "already completed")
	resp.Body.Close()
}

func TestBadJSONBodies(t *testing.T) {
	ts := newTestServer(t)

	req, err := http.NewRequest(http.MethodPost, ts.URL+"/candidates", bytes.NewReader([]byte("{nope")))
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer "+ts.token)
	resp, err := ts.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestResetOverAPI(t *testing.T) {
	ts := newTestServer(t)
	id := ts.createCandidate(t)

	resp := ts.do(t, http.MethodPost, "/interview/reset", ts.token, nil)
	assert.Equal(t, http.StatusConflict, resp.StatusCode, "nothing to discard")
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: id})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()
	resp = ts.do(t, http.MethodPost, "/interview/question/start", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	resp.Body.Close()

	resp = ts.do(t, http.MethodPost, "/interview/reset", ts.token, nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state := decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "idle", state.State)

	// The record survives unscored and the interview stays resumable.
	resp = ts.do(t, http.MethodGet, "/candidates/"+id, ts.token, nil)
	cand := decodeBody[registry.Candidate](t, resp)
	assert.Equal(t, registry.StatusInProgress, cand.InterviewStatus)
	assert.Nil(t, cand.FinalScore)

	resp = ts.do(t, http.MethodPost, "/interview/start", ts.token,
		types.StartInterviewRequest{CandidateID: id, Resume: true})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	state = decodeBody[types.SessionResponse](t, resp)
	assert.Equal(t, "active", state.State)
}

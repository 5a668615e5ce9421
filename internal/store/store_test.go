package store

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/interview-agent/internal/registry"
)

func sampleSnapshot() Snapshot {
	start := time.Date(2026, 3, 14, 10, 30, 0, 0, time.UTC)
	return Snapshot{
		Candidates: []registry.Candidate{
			{
				ID:              "c-1",
				Name:            "Alex Rivera",
				Email:           "alex@example.com",
				InterviewStatus: registry.StatusInProgress,
				Answers: []registry.Answer{
					{QuestionID: "std-1", Answer: "props flow down", TimeSpent: 15},
				},
			},
			{ID: "c-2", Name: "Sam Chen", InterviewStatus: registry.StatusNotStarted},
		},
		CurrentCandidateID:   "c-1",
		State:                "active",
		CurrentQuestionIndex: 1,
		QuestionStartTime:    &start,
		TimeRemaining:        42,
		SavedAt:              start.Add(18 * time.Second),
	}
}

func TestMemoryStore_RoundTrip(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "empty store loads nil")

	want := sampleSnapshot()
	require.NoError(t, s.Save(ctx, want))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, want.CurrentCandidateID, got.CurrentCandidateID)
	assert.Equal(t, want.State, got.State)
	assert.Equal(t, want.TimeRemaining, got.TimeRemaining)
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, "Alex Rivera", got.Candidates[0].Name)
	require.NotNil(t, got.QuestionStartTime)
	assert.True(t, want.QuestionStartTime.Equal(*got.QuestionStartTime))
}

func TestMemoryStore_SaveIsolatesLaterMutation(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	snap := sampleSnapshot()
	require.NoError(t, s.Save(ctx, snap))
	snap.Candidates[0].Name = "mutated"

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Alex Rivera", got.Candidates[0].Name)
}

func TestFileStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, got, "missing file loads nil")

	want := sampleSnapshot()
	require.NoError(t, s.Save(ctx, want))

	got, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "c-1", got.CurrentCandidateID)
	assert.Equal(t, 1, got.CurrentQuestionIndex)
	require.Len(t, got.Candidates, 2)
	assert.Equal(t, registry.StatusInProgress, got.Candidates[0].InterviewStatus)
}

func TestFileStore_OverwriteReplacesSnapshot(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s, err := NewFileStore(path)
	require.NoError(t, err)
	ctx := context.Background()

	first := sampleSnapshot()
	require.NoError(t, s.Save(ctx, first))

	second := first
	second.State = "completed"
	second.CurrentCandidateID = ""
	require.NoError(t, s.Save(ctx, second))

	got, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "completed", got.State)
	assert.Empty(t, got.CurrentCandidateID)

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not linger")
}

func TestFileStore_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	s, err := NewFileStore(path)
	require.NoError(t, err)

	got, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewFileStore_RequiresPath(t *testing.T) {
	_, err := NewFileStore("")
	assert.Error(t, err)
}

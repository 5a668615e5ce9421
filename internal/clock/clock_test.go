package clock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestTick_RemainingMatchesElapsed(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name          string
		timeLimit     int
		elapsedSec    int
		wantRemaining int
		wantExpired   bool
	}{
		{"fresh start", 20, 0, 20, false},
		{"mid countdown", 20, 7, 13, false},
		{"one second left", 20, 19, 1, false},
		{"exactly expired", 20, 20, 0, true},
		{"past expiry", 20, 45, 0, true},
		{"hard question mid", 120, 60, 60, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			now := start.Add(time.Duration(tt.elapsedSec) * time.Second)
			remaining, expired := Tick(now, start, tt.timeLimit)
			assert.Equal(t, tt.wantRemaining, remaining)
			assert.Equal(t, tt.wantExpired, expired)
		})
	}
}

func TestTick_Idempotent(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	now := start.Add(11 * time.Second)

	first, firstExpired := Tick(now, start, 60)
	for i := 0; i < 50; i++ {
		remaining, expired := Tick(now, start, 60)
		assert.Equal(t, first, remaining)
		assert.Equal(t, firstExpired, expired)
	}
	assert.Equal(t, 49, first)
}

func TestTick_SubSecondElapsedFloors(t *testing.T) {
	start := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// 4.9 seconds elapsed floors to 4, so 16 remain.
	remaining, expired := Tick(start.Add(4900*time.Millisecond), start, 20)
	assert.Equal(t, 16, remaining)
	assert.False(t, expired)
}

func TestStartQuestionTimer_FreshStart(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	start := StartQuestionTimer(now, 20, 20)
	assert.Equal(t, now, start)

	remaining, expired := Tick(now, start, 20)
	assert.Equal(t, 20, remaining)
	assert.False(t, expired)
}

func TestStartQuestionTimer_ResumeBackdatesStart(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	// 13 of 60 seconds remain: the start must be back-dated by 47s so the
	// very next tick still reports 13.
	start := StartQuestionTimer(now, 60, 13)
	assert.Equal(t, now.Add(-47*time.Second), start)

	remaining, _ := Tick(now, start, 60)
	assert.Equal(t, 13, remaining)
}

func TestStartQuestionTimer_InvalidRemainingClamps(t *testing.T) {
	now := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)

	for _, prev := range []int{0, -5, 61, 10000} {
		start := StartQuestionTimer(now, 60, prev)
		remaining, _ := Tick(now, start, 60)
		assert.Equal(t, 60, remaining, "previousRemaining=%d must start a fresh countdown", prev)
	}
}

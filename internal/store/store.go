// Package store persists interview session snapshots so an interview can
// survive a process restart or page reload. Implementations are
// interchangeable: in-memory for tests, a JSON file for single-host runs,
// and PostgreSQL for shared deployments.
package store

import (
	"context"
	"time"

	"github.com/jonathan/interview-agent/internal/registry"
)

// Snapshot is the full persisted session state: the candidate roster plus
// the live interview bookkeeping needed to resume mid-question.
type Snapshot struct {
	Candidates []registry.Candidate `json:"candidates"`

	CurrentCandidateID   string     `json:"currentCandidateId,omitempty"`
	State                string     `json:"state"`
	CurrentQuestionIndex int        `json:"currentQuestionIndex"`
	QuestionStartTime    *time.Time `json:"questionStartTime,omitempty"`
	TimeRemaining        int        `json:"timeRemaining"`

	SavedAt time.Time `json:"savedAt"`
}

// Store loads and saves session snapshots.
type Store interface {
	// Load returns the most recent snapshot, or nil when none exists.
	Load(ctx context.Context) (*Snapshot, error)
	// Save replaces the persisted snapshot.
	Save(ctx context.Context, snap Snapshot) error
	// Close releases any resources held by the store.
	Close() error
}

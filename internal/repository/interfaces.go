package repository

import (
	"context"

	"github.com/vytor/revplan/internal/models"
)

// Document keys of the persisted planner state.
const (
	KeySubjects   = "revision_subjects"
	KeySettings   = "revision_settings"
	KeyPlan       = "revision_plan"
	KeyDeadlines  = "revision_tests"
	KeySessions   = "revision_sessions"
	KeyPastPapers = "revision_pastpapers"
)

// AllKeys lists every state document key.
var AllKeys = []string{KeySubjects, KeySettings, KeyPlan, KeyDeadlines, KeySessions, KeyPastPapers}

// KVStore persists opaque JSON documents by key
type KVStore interface {
	// Load returns the stored value and whether the key exists.
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	// SaveBatch writes every document atomically.
	SaveBatch(ctx context.Context, docs map[string][]byte) error
	Delete(ctx context.Context, key string) error
	Keys(ctx context.Context) ([]string, error)
}

// State is the full planner state as loaded from storage.
type State struct {
	Subjects   []models.Subject
	Settings   models.Settings
	Plan       *models.Plan
	Deadlines  []models.Deadline
	Sessions   []models.SessionRecord
	PastPapers []models.PastPaper
}

// StateRepository loads and saves typed planner state
type StateRepository interface {
	// Load never fails on malformed documents; those fall back to defaults.
	Load(ctx context.Context) (*State, error)
	// Save writes the documents named by keys, or all of them when none are given.
	Save(ctx context.Context, state *State, keys ...string) error
	// Reset deletes every document.
	Reset(ctx context.Context) error
}

package models

import "time"

// Deadline is a test or exam that raises the urgency of its linked topics.
type Deadline struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Date      string    `json:"date"`
	SubjectID string    `json:"subject_id"`
	Topics    []string  `json:"topics"`
	CreatedAt time.Time `json:"created_at"`
}

// References reports whether the deadline covers topicID.
func (d Deadline) References(topicID string) bool {
	for _, id := range d.Topics {
		if id == topicID {
			return true
		}
	}
	return false
}

// SessionRecord is an append-only log entry for a completed study session.
type SessionRecord struct {
	ID          string    `json:"id"`
	ItemID      string    `json:"item_id"`
	PlanEntryID string    `json:"plan_entry_id,omitempty"`
	Duration    int       `json:"duration"`
	Methods     []Method  `json:"methods"`
	CompletedAt time.Time `json:"completed_at"`
}

type PastPaper struct {
	ID        string    `json:"id"`
	SubjectID string    `json:"subject_id"`
	Name      string    `json:"name"`
	Score     *float64  `json:"score"`
	Completed bool      `json:"completed"`
	AddedAt   time.Time `json:"added_at"`
}

package models

import (
	"encoding/json"
	"time"
)

// Default mastery values for items missing them in persisted state.
const (
	DefaultConfidence  = 0.6
	DefaultPerformance = 0.6
)

type Subject struct {
	ID     string  `json:"id"`
	Name   string  `json:"name"`
	Topics []Topic `json:"topics"`
}

// Topic groups subtopics and carries its own mastery fields. A topic without
// subtopics is scheduled directly and then uses Completed itself.
type Topic struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Difficulty        Difficulty  `json:"difficulty"`
	Confidence        float64     `json:"confidence"`
	RecentPerformance float64     `json:"recent_performance"`
	LastStudiedAt     *time.Time  `json:"last_studied_at"`
	MissedSessions    float64     `json:"missed_sessions"`
	Completed         bool        `json:"completed"`
	Subtopics         []StudyItem `json:"subtopics"`
}

// StudyItem is a subtopic: the leaf unit the planner schedules.
type StudyItem struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	ParentTopicID     string     `json:"parent_topic_id"`
	Difficulty        Difficulty `json:"difficulty"`
	Confidence        float64    `json:"confidence"`
	RecentPerformance float64    `json:"recent_performance"`
	Completed         bool       `json:"completed"`
	CompletionDate    string     `json:"completion_date"`
	LastStudiedAt     *time.Time `json:"last_studied_at"`
	MissedSessions    float64    `json:"missed_sessions"`
}

// UnmarshalJSON fills fields absent from the document with their defaults.
func (t *Topic) UnmarshalJSON(data []byte) error {
	type alias Topic
	out := alias{
		Difficulty:        DifficultyOK,
		Confidence:        DefaultConfidence,
		RecentPerformance: DefaultPerformance,
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if !out.Difficulty.Valid() {
		out.Difficulty = DifficultyOK
	}
	*t = Topic(out)
	t.Confidence = Clamp01(t.Confidence)
	t.RecentPerformance = Clamp01(t.RecentPerformance)
	if t.MissedSessions < 0 {
		t.MissedSessions = 0
	}
	for i := range t.Subtopics {
		if t.Subtopics[i].ParentTopicID == "" {
			t.Subtopics[i].ParentTopicID = t.ID
		}
	}
	return nil
}

// UnmarshalJSON fills fields absent from the document with their defaults.
func (s *StudyItem) UnmarshalJSON(data []byte) error {
	type alias StudyItem
	out := alias{
		Difficulty:        DifficultyOK,
		Confidence:        DefaultConfidence,
		RecentPerformance: DefaultPerformance,
	}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	if !out.Difficulty.Valid() {
		out.Difficulty = DifficultyOK
	}
	*s = StudyItem(out)
	s.Confidence = Clamp01(s.Confidence)
	s.RecentPerformance = Clamp01(s.RecentPerformance)
	if s.MissedSessions < 0 {
		s.MissedSessions = 0
	}
	return nil
}

// CompletionFraction is completed subtopics over total subtopics, 0 when the
// topic has none.
func (t *Topic) CompletionFraction() float64 {
	if len(t.Subtopics) == 0 {
		return 0
	}
	done := 0
	for _, s := range t.Subtopics {
		if s.Completed {
			done++
		}
	}
	return float64(done) / float64(len(t.Subtopics))
}

// Clamp01 clamps v into [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

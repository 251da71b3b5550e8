// Package mastery holds the mutable per-item study state and the mutators
// that keep every value inside its valid range.
package mastery

import (
	"errors"
	"fmt"
	"time"

	"github.com/vytor/revplan/internal/models"
)

// ErrUnknownItem is returned when an id matches neither a topic nor a subtopic.
var ErrUnknownItem = errors.New("unknown study item")

// Kind distinguishes topic-level entries from subtopic entries.
type Kind int

const (
	KindTopic Kind = iota
	KindSubtopic
)

func (k Kind) String() string {
	if k == KindSubtopic {
		return "subtopic"
	}
	return "topic"
}

// Entry is a resolved reference into the store. Sub is nil for topic entries.
type Entry struct {
	Kind        Kind
	SubjectID   string
	SubjectName string
	Topic       *models.Topic
	Sub         *models.StudyItem
}

func (e Entry) ID() string {
	if e.Sub != nil {
		return e.Sub.ID
	}
	return e.Topic.ID
}

func (e Entry) Name() string {
	if e.Sub != nil {
		return e.Topic.Name + " - " + e.Sub.Name
	}
	return e.Topic.Name
}

func (e Entry) Difficulty() models.Difficulty {
	if e.Sub != nil {
		return e.Sub.Difficulty
	}
	return e.Topic.Difficulty
}

func (e Entry) Confidence() float64 {
	if e.Sub != nil {
		return e.Sub.Confidence
	}
	return e.Topic.Confidence
}

func (e Entry) RecentPerformance() float64 {
	if e.Sub != nil {
		return e.Sub.RecentPerformance
	}
	return e.Topic.RecentPerformance
}

func (e Entry) Completed() bool {
	if e.Sub != nil {
		return e.Sub.Completed
	}
	return e.Topic.Completed
}

func (e Entry) LastStudiedAt() *time.Time {
	if e.Sub != nil {
		return e.Sub.LastStudiedAt
	}
	return e.Topic.LastStudiedAt
}

func (e Entry) MissedSessions() float64 {
	if e.Sub != nil {
		return e.Sub.MissedSessions
	}
	return e.Topic.MissedSessions
}

// ParentTopicID is the owning topic for subtopics and empty for topics.
func (e Entry) ParentTopicID() string {
	if e.Sub != nil {
		return e.Topic.ID
	}
	return ""
}

type location struct {
	subject, topic, sub int
}

// Store owns the subject tree. It is not safe for concurrent use; callers
// sequence access.
type Store struct {
	subjects []models.Subject
	index    map[string]location
}

// NewStore takes ownership of subjects and indexes every topic and subtopic.
// Later duplicates of an id are ignored by lookups.
func NewStore(subjects []models.Subject) *Store {
	s := &Store{subjects: subjects}
	s.reindex()
	return s
}

func (s *Store) reindex() {
	s.index = make(map[string]location)
	for si := range s.subjects {
		for ti := range s.subjects[si].Topics {
			topic := &s.subjects[si].Topics[ti]
			if _, dup := s.index[topic.ID]; !dup {
				s.index[topic.ID] = location{si, ti, -1}
			}
			for ui := range topic.Subtopics {
				sub := &topic.Subtopics[ui]
				sub.ParentTopicID = topic.ID
				if _, dup := s.index[sub.ID]; !dup {
					s.index[sub.ID] = location{si, ti, ui}
				}
			}
		}
	}
}

// Subjects exposes the underlying tree for persistence and display.
func (s *Store) Subjects() []models.Subject {
	return s.subjects
}

// Subject returns the subject with the given id.
func (s *Store) Subject(id string) (*models.Subject, bool) {
	for i := range s.subjects {
		if s.subjects[i].ID == id {
			return &s.subjects[i], true
		}
	}
	return nil, false
}

// Resolve finds a topic or subtopic by id.
func (s *Store) Resolve(id string) (Entry, bool) {
	loc, ok := s.index[id]
	if !ok {
		return Entry{}, false
	}
	subject := &s.subjects[loc.subject]
	e := Entry{
		Kind:        KindTopic,
		SubjectID:   subject.ID,
		SubjectName: subject.Name,
		Topic:       &subject.Topics[loc.topic],
	}
	if loc.sub >= 0 {
		e.Kind = KindSubtopic
		e.Sub = &e.Topic.Subtopics[loc.sub]
	}
	return e, true
}

// Topic returns the topic with the given id.
func (s *Store) Topic(id string) (*models.Topic, bool) {
	e, ok := s.Resolve(id)
	if !ok || e.Kind != KindTopic {
		return nil, false
	}
	return e.Topic, true
}

// Items lists every schedulable leaf in catalogue order: subtopics, plus
// topics that have no subtopics.
func (s *Store) Items() []Entry {
	var out []Entry
	for si := range s.subjects {
		subject := &s.subjects[si]
		for ti := range subject.Topics {
			out = append(out, leaves(subject, &subject.Topics[ti])...)
		}
	}
	return out
}

// TopicItems lists the schedulable leaves of one topic.
func (s *Store) TopicItems(topicID string) []Entry {
	e, ok := s.Resolve(topicID)
	if !ok || e.Kind != KindTopic {
		return nil
	}
	subject, _ := s.Subject(e.SubjectID)
	return leaves(subject, e.Topic)
}

func leaves(subject *models.Subject, topic *models.Topic) []Entry {
	if len(topic.Subtopics) == 0 {
		return []Entry{{Kind: KindTopic, SubjectID: subject.ID, SubjectName: subject.Name, Topic: topic}}
	}
	out := make([]Entry, 0, len(topic.Subtopics))
	for ui := range topic.Subtopics {
		out = append(out, Entry{
			Kind:        KindSubtopic,
			SubjectID:   subject.ID,
			SubjectName: subject.Name,
			Topic:       topic,
			Sub:         &topic.Subtopics[ui],
		})
	}
	return out
}

func (s *Store) resolve(id string) (Entry, error) {
	e, ok := s.Resolve(id)
	if !ok {
		return Entry{}, fmt.Errorf("%w: %s", ErrUnknownItem, id)
	}
	return e, nil
}

// MarkStudied stamps the last-studied time of a topic or subtopic.
func (s *Store) MarkStudied(id string, at time.Time) error {
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	t := at
	if e.Sub != nil {
		e.Sub.LastStudiedAt = &t
	} else {
		e.Topic.LastStudiedAt = &t
	}
	return nil
}

// AdjustPerformance adds delta to recent performance, clamped to [0,1].
func (s *Store) AdjustPerformance(id string, delta float64) error {
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	if e.Sub != nil {
		e.Sub.RecentPerformance = models.Clamp01(e.Sub.RecentPerformance + delta)
	} else {
		e.Topic.RecentPerformance = models.Clamp01(e.Topic.RecentPerformance + delta)
	}
	return nil
}

// AdjustConfidence adds delta to confidence, clamped to [0,1].
func (s *Store) AdjustConfidence(id string, delta float64) error {
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	if e.Sub != nil {
		e.Sub.Confidence = models.Clamp01(e.Sub.Confidence + delta)
	} else {
		e.Topic.Confidence = models.Clamp01(e.Topic.Confidence + delta)
	}
	return nil
}

// AdjustMissed adds delta to the miss counter, floored at zero.
func (s *Store) AdjustMissed(id string, delta float64) error {
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	target := &e.Topic.MissedSessions
	if e.Sub != nil {
		target = &e.Sub.MissedSessions
	}
	*target += delta
	if *target < 0 {
		*target = 0
	}
	return nil
}

// SetConfidence overwrites confidence with v clamped to [0,1].
func (s *Store) SetConfidence(id string, v float64) error {
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	if e.Sub != nil {
		e.Sub.Confidence = models.Clamp01(v)
	} else {
		e.Topic.Confidence = models.Clamp01(v)
	}
	return nil
}

// SetDifficulty changes the self-rated difficulty.
func (s *Store) SetDifficulty(id string, d models.Difficulty) error {
	if !d.Valid() {
		return fmt.Errorf("invalid difficulty %q", d)
	}
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	if e.Sub != nil {
		e.Sub.Difficulty = d
	} else {
		e.Topic.Difficulty = d
	}
	return nil
}

// SetCompleted marks a leaf done or not done. Completing a subtopic stamps
// its completion date with on when none is set; un-completing clears it.
func (s *Store) SetCompleted(id string, done bool, on time.Time) error {
	e, err := s.resolve(id)
	if err != nil {
		return err
	}
	if e.Sub == nil {
		if len(e.Topic.Subtopics) > 0 {
			return fmt.Errorf("topic %s is completed through its subtopics", id)
		}
		e.Topic.Completed = done
		return nil
	}
	e.Sub.Completed = done
	switch {
	case !done:
		e.Sub.CompletionDate = ""
	case e.Sub.CompletionDate == "":
		e.Sub.CompletionDate = on.Format("2006-01-02")
	}
	return nil
}

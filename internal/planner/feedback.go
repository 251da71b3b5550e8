package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/models"
)

// Boosts applied after a completed session. The parent topic of a subtopic
// receives half of each.
const (
	PerformanceBoost       = 0.06
	PerformanceBoostActive = 0.12
	ConfidenceBoost        = 0.05
	ConfidenceBoostActive  = 0.07

	// ParentMissPenalty is added to a topic when one of its subtopics is missed.
	ParentMissPenalty = 0.5
)

// Completion describes a finished study session.
type Completion struct {
	SessionID string
	ItemID    string
	// EntryID is the plan entry the session fulfils. When empty the first
	// open entry for the item on the completion day is used.
	EntryID  string
	Methods  []models.Method
	Duration int
	At       time.Time
}

// Boosts returns the performance and confidence increments earned by methods.
func Boosts(methods []models.Method) (performance, confidence float64) {
	performance, confidence = PerformanceBoost, ConfidenceBoost
	if models.HasMethod(methods, models.MethodExamQuestions) {
		performance = PerformanceBoostActive
	}
	if models.HasMethod(methods, models.MethodTeachingSomeone) {
		confidence = ConfidenceBoostActive
	}
	return performance, confidence
}

// ApplyCompletion updates mastery state for a finished session, marks the
// matching plan entry completed and returns the session record to append.
// The plan may be nil.
func ApplyCompletion(store *mastery.Store, plan *models.Plan, c Completion) (models.SessionRecord, error) {
	e, ok := store.Resolve(c.ItemID)
	if !ok {
		return models.SessionRecord{}, fmt.Errorf("%w: %s", mastery.ErrUnknownItem, c.ItemID)
	}

	perf, conf := Boosts(c.Methods)
	id := e.ID()
	if err := applyBoost(store, id, c.At, perf, conf); err != nil {
		return models.SessionRecord{}, err
	}
	if e.Kind == mastery.KindSubtopic {
		if err := applyBoost(store, e.Topic.ID, c.At, perf/2, conf/2); err != nil {
			return models.SessionRecord{}, err
		}
	}

	entryID := ""
	if entry := matchEntry(plan, c); entry != nil {
		entry.Completed = true
		entryID = entry.ID
	}

	methods := append([]models.Method(nil), c.Methods...)
	return models.SessionRecord{
		ID:          c.SessionID,
		ItemID:      id,
		PlanEntryID: entryID,
		Duration:    c.Duration,
		Methods:     methods,
		CompletedAt: c.At,
	}, nil
}

func applyBoost(store *mastery.Store, id string, at time.Time, perf, conf float64) error {
	if err := store.MarkStudied(id, at); err != nil {
		return err
	}
	if err := store.AdjustPerformance(id, perf); err != nil {
		return err
	}
	if err := store.AdjustConfidence(id, conf); err != nil {
		return err
	}
	return store.AdjustMissed(id, -1)
}

func matchEntry(plan *models.Plan, c Completion) *models.PlanEntry {
	if plan == nil {
		return nil
	}
	if c.EntryID != "" {
		entry := plan.Entry(c.EntryID)
		if entry != nil && entry.ItemID == c.ItemID {
			return entry
		}
		return nil
	}
	entries := plan.Days[clock.DayKey(c.At)]
	for i := range entries {
		if entries[i].ItemID == c.ItemID && !entries[i].Completed {
			return &entries[i]
		}
	}
	return nil
}

// Miss is a penalty owed for a planned entry whose day passed uncompleted.
type Miss struct {
	Day          string  `json:"day"`
	EntryID      string  `json:"entry_id"`
	ItemID       string  `json:"item_id"`
	TopicID      string  `json:"topic_id,omitempty"`
	ItemPenalty  float64 `json:"item_penalty"`
	TopicPenalty float64 `json:"topic_penalty,omitempty"`
}

// DetectMisses lists the penalties owed by entries dated before today that
// are neither completed nor already logged. Entries naming unknown items are
// skipped. The plan and store are not modified.
func DetectMisses(store *mastery.Store, plan *models.Plan, today time.Time) []Miss {
	if plan == nil {
		return nil
	}
	todayKey := clock.DayKey(today)
	keys := make([]string, 0, len(plan.Days))
	for key := range plan.Days {
		if key < todayKey {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)

	var misses []Miss
	for _, key := range keys {
		for _, entry := range plan.Days[key] {
			if entry.Completed || entry.MissedLogged {
				continue
			}
			e, ok := store.Resolve(entry.ItemID)
			if !ok {
				continue
			}
			m := Miss{Day: key, EntryID: entry.ID, ItemID: e.ID(), ItemPenalty: 1}
			if e.Kind == mastery.KindSubtopic {
				m.TopicID = e.Topic.ID
				m.TopicPenalty = ParentMissPenalty
			}
			misses = append(misses, m)
		}
	}
	return misses
}

// ApplyMisses charges each miss to the store and flags its entry as logged.
// Misses whose entry is already logged are ignored, so applying the same
// list twice charges once. A parent topic that can no longer be charged is
// cleared from its miss so the slice reports only what was applied.
func ApplyMisses(store *mastery.Store, plan *models.Plan, misses []Miss) {
	for i := range misses {
		m := &misses[i]
		entry := findEntry(plan, m.Day, m.EntryID)
		if entry == nil || entry.MissedLogged || entry.Completed {
			continue
		}
		if store.AdjustMissed(m.ItemID, m.ItemPenalty) != nil {
			continue
		}
		if m.TopicID != "" {
			if err := store.AdjustMissed(m.TopicID, m.TopicPenalty); err != nil {
				m.TopicID = ""
				m.TopicPenalty = 0
			}
		}
		entry.MissedLogged = true
	}
}

// SweepMisses detects and applies misses in one step.
func SweepMisses(store *mastery.Store, plan *models.Plan, today time.Time) []Miss {
	misses := DetectMisses(store, plan, today)
	ApplyMisses(store, plan, misses)
	return misses
}

func findEntry(plan *models.Plan, day, id string) *models.PlanEntry {
	if plan == nil {
		return nil
	}
	entries := plan.Days[day]
	for i := range entries {
		if entries[i].ID == id {
			return &entries[i]
		}
	}
	return nil
}

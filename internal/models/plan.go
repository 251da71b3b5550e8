package models

import (
	"sort"
	"time"
)

// PlanEntry is one scheduled study slot.
type PlanEntry struct {
	ID             string `json:"id"`
	ItemID         string `json:"item_id"`
	ParentTopicID  string `json:"parent_topic_id,omitempty"`
	Date           string `json:"date"`
	Duration       int    `json:"duration"`
	IsDeadlinePrep bool   `json:"is_deadline_prep"`
	Completed      bool   `json:"completed"`
	MissedLogged   bool   `json:"missed_logged"`
}

// Plan maps a day key (YYYY-MM-DD) to the ordered entries for that day.
type Plan struct {
	GeneratedAt time.Time              `json:"generated_at"`
	Days        map[string][]PlanEntry `json:"days"`
}

// NewPlan returns an empty plan stamped with generatedAt.
func NewPlan(generatedAt time.Time) *Plan {
	return &Plan{GeneratedAt: generatedAt, Days: make(map[string][]PlanEntry)}
}

// Entry returns a pointer to the entry with the given id, or nil. Days are
// searched in date order so a duplicated id always resolves the same way.
func (p *Plan) Entry(id string) *PlanEntry {
	if p == nil {
		return nil
	}
	keys := make([]string, 0, len(p.Days))
	for key := range p.Days {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		entries := p.Days[key]
		for i := range entries {
			if entries[i].ID == id {
				return &entries[i]
			}
		}
	}
	return nil
}

// Day returns the entries planned for dayKey.
func (p *Plan) Day(dayKey string) []PlanEntry {
	if p == nil || p.Days == nil {
		return nil
	}
	return p.Days[dayKey]
}

package planner

import (
	"math"

	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/models"
)

// DefaultRetention is the factor a working score keeps after being picked.
const DefaultRetention = 0.6

// Candidate is an item with its urgency score.
type Candidate struct {
	Entry mastery.Entry
	Score float64
}

// Slot is one selected session.
type Slot struct {
	Entry    mastery.Entry
	Duration int
}

// SlotCount converts a budget into a number of sessions. A non-positive
// budget yields zero slots; a positive one always yields at least one.
func SlotCount(budgetMinutes, sessionLength int) int {
	if budgetMinutes <= 0 {
		return 0
	}
	if sessionLength <= 0 {
		sessionLength = models.DefaultSettings().SessionLength
	}
	n := int(math.Round(float64(budgetMinutes) / float64(sessionLength)))
	return max(1, n)
}

// Selector hands out items in decreasing working-score order, decaying the
// score of each pick so that other items get their turn.
type Selector struct {
	retention float64
	items     []Candidate
}

// NewSelector copies candidates into a fresh working-score table. Input order
// breaks ties.
func NewSelector(candidates []Candidate, retention float64) *Selector {
	if retention <= 0 || retention >= 1 {
		retention = DefaultRetention
	}
	items := make([]Candidate, len(candidates))
	copy(items, candidates)
	return &Selector{retention: retention, items: items}
}

// Pick returns the best candidate satisfying every filter. When no candidate
// passes, the last filter is dropped and the search repeats, down to the
// unfiltered pool. It reports false when the pool is empty or the best
// working score is not positive.
func (s *Selector) Pick(filters ...func(Candidate) bool) (Candidate, bool) {
	for n := len(filters); n >= 0; n-- {
		idx := s.best(filters[:n])
		if idx < 0 {
			continue
		}
		if s.items[idx].Score <= 0 {
			return Candidate{}, false
		}
		picked := s.items[idx]
		s.items[idx].Score *= s.retention
		return picked, true
	}
	return Candidate{}, false
}

func (s *Selector) best(filters []func(Candidate) bool) int {
	idx := -1
	for i, c := range s.items {
		if !passes(c, filters) {
			continue
		}
		if idx < 0 || c.Score > s.items[idx].Score {
			idx = i
		}
	}
	return idx
}

func passes(c Candidate, filters []func(Candidate) bool) bool {
	for _, f := range filters {
		if f != nil && !f(c) {
			return false
		}
	}
	return true
}

// Select fills a single budget from candidates.
func Select(budgetMinutes, sessionLength int, candidates []Candidate, filters ...func(Candidate) bool) []Slot {
	n := SlotCount(budgetMinutes, sessionLength)
	if sessionLength <= 0 {
		sessionLength = models.DefaultSettings().SessionLength
	}
	sel := NewSelector(candidates, DefaultRetention)
	slots := make([]Slot, 0, n)
	for i := 0; i < n; i++ {
		c, ok := sel.Pick(filters...)
		if !ok {
			break
		}
		slots = append(slots, Slot{Entry: c.Entry, Duration: sessionLength})
	}
	return slots
}

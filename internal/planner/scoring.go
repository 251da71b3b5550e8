// Package planner ranks study items by urgency and turns a daily time budget
// into a plan of study sessions.
package planner

import (
	"time"

	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/models"
)

// Weights are the coefficients of the urgency score. Every term is
// non-negative for clamped inputs.
type Weights struct {
	Recency          float64
	Difficulty       float64
	Confidence       float64
	Completion       float64
	MissedItem       float64
	MissedTopic      float64
	Performance      float64
	ParentCompletion float64

	DeadlineMultiplier         float64
	DeadlineMultiplierPriority float64

	// NeverStudiedDays stands in for the recency of items never studied.
	NeverStudiedDays float64
	// TopicFallbackPenalty is added when only the parent topic was studied.
	TopicFallbackPenalty float64
}

// DefaultWeights returns the tuned default coefficients.
func DefaultWeights() Weights {
	return Weights{
		Recency:                    0.35,
		Difficulty:                 2,
		Confidence:                 1.3,
		Completion:                 1,
		MissedItem:                 0.4,
		MissedTopic:                0.2,
		Performance:                1.1,
		ParentCompletion:           0.5,
		DeadlineMultiplier:         1.5,
		DeadlineMultiplierPriority: 3,
		NeverStudiedDays:           14,
		TopicFallbackPenalty:       2,
	}
}

// Context is the global state a score depends on besides the item itself.
type Context struct {
	Today               time.Time
	Deadlines           []models.Deadline
	ExamDate            string
	PrioritizeDeadlines bool
	LookAheadDays       int
}

// NewContext derives a scoring context from settings.
func NewContext(today time.Time, settings models.Settings, deadlines []models.Deadline) Context {
	return Context{
		Today:               clock.StartOfDay(today),
		Deadlines:           deadlines,
		ExamDate:            settings.ExamDate,
		PrioritizeDeadlines: settings.PrioritizeDeadlines,
		LookAheadDays:       settings.LookAheadDays,
	}
}

// Breakdown is a score split into its weighted terms.
type Breakdown struct {
	Recency          float64 `json:"recency"`
	Difficulty       float64 `json:"difficulty"`
	Deadline         float64 `json:"deadline"`
	Confidence       float64 `json:"confidence"`
	Completion       float64 `json:"completion"`
	Missed           float64 `json:"missed"`
	Performance      float64 `json:"performance"`
	ParentCompletion float64 `json:"parent_completion"`
}

// Total sums the terms.
func (b Breakdown) Total() float64 {
	return b.Recency + b.Difficulty + b.Deadline + b.Confidence +
		b.Completion + b.Missed + b.Performance + b.ParentCompletion
}

// Score is the urgency of e on ctx.Today. Deterministic for equal inputs.
func (w Weights) Score(e mastery.Entry, ctx Context) float64 {
	return w.Breakdown(e, ctx).Total()
}

// Breakdown computes each weighted term of the urgency score.
func (w Weights) Breakdown(e mastery.Entry, ctx Context) Breakdown {
	completion := 0.0
	if e.Completed() {
		completion = 1
	}
	missed := e.MissedSessions() * w.MissedItem
	if e.Kind == mastery.KindSubtopic {
		missed += e.Topic.MissedSessions * w.MissedTopic
	}
	return Breakdown{
		Recency:          w.daysSince(e, ctx.Today) * w.Recency,
		Difficulty:       e.Difficulty().Weight() * w.Difficulty,
		Deadline:         w.deadlineWeight(e.Topic.ID, ctx),
		Confidence:       (1 - e.Confidence()) * w.Confidence,
		Completion:       (1 - completion) * w.Completion,
		Missed:           missed,
		Performance:      (1 - e.RecentPerformance()) * w.Performance,
		ParentCompletion: (1 - e.Topic.CompletionFraction()) * w.ParentCompletion,
	}
}

func (w Weights) daysSince(e mastery.Entry, today time.Time) float64 {
	if last := e.LastStudiedAt(); last != nil {
		return float64(max(0, clock.DaysBetween(today, last.In(today.Location()))))
	}
	if e.Kind == mastery.KindSubtopic && e.Topic.LastStudiedAt != nil {
		days := max(0, clock.DaysBetween(today, e.Topic.LastStudiedAt.In(today.Location())))
		return float64(days) + w.TopicFallbackPenalty
	}
	return w.NeverStudiedDays
}

func (w Weights) deadlineWeight(topicID string, ctx Context) float64 {
	window := ctx.LookAheadDays
	if window <= 0 {
		return 0
	}
	multiplier := w.DeadlineMultiplier
	if ctx.PrioritizeDeadlines {
		multiplier = w.DeadlineMultiplierPriority
	}
	proximity := func(dateKey string) float64 {
		date, err := clock.ParseDayKey(dateKey, ctx.Today.Location())
		if err != nil {
			return 0
		}
		diff := clock.DaysBetween(date, ctx.Today)
		if diff < 0 {
			return 0
		}
		return max(0, float64(window-diff)/float64(window))
	}

	total := 0.0
	for _, d := range ctx.Deadlines {
		if !d.References(topicID) {
			continue
		}
		total += proximity(d.Date) * multiplier
	}
	if ctx.ExamDate != "" {
		total += proximity(ctx.ExamDate) * multiplier
	}
	return total
}

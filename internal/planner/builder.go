package planner

import (
	"fmt"
	"sort"
	"time"

	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/models"
)

// CompletedPrepPenalty lowers the deadline-prep score of completed items.
const CompletedPrepPenalty = 0.2

// Builder assembles plans from the mastery store.
type Builder struct {
	Weights   Weights
	Retention float64
	// Strategy optionally narrows the pool per slot, e.g. by subject quota.
	Strategy PoolStrategy
}

// NewBuilder returns a Builder with default weights and retention.
func NewBuilder() *Builder {
	return &Builder{Weights: DefaultWeights(), Retention: DefaultRetention}
}

// BuildInput is everything a plan depends on besides the store.
type BuildInput struct {
	Now       time.Time
	Settings  models.Settings
	Deadlines []models.Deadline
	// Previous is the plan being replaced. Days before today are kept as
	// they are until they are settled and older than LookAheadDays. Completed
	// entries inside the new range are carried over.
	Previous *models.Plan
}

// Build regenerates the plan for Settings.PlanDays days starting today.
// Inside the range the previous plan is overwritten except for completed
// entries; days after the range are dropped.
func (b *Builder) Build(store *mastery.Store, in BuildInput) *models.Plan {
	today := clock.StartOfDay(in.Now)
	todayKey := clock.DayKey(today)
	days := max(1, in.Settings.PlanDays)
	plan := models.NewPlan(in.Now)

	var carried map[string][]models.PlanEntry
	if in.Previous != nil {
		carried = make(map[string][]models.PlanEntry)
		horizon := clock.DayKey(clock.AddDays(today, -max(1, in.Settings.LookAheadDays)))
		for key, entries := range in.Previous.Days {
			if key < todayKey {
				if key < horizon && settled(store, entries) {
					continue
				}
				plan.Days[key] = append([]models.PlanEntry(nil), entries...)
				continue
			}
			for _, e := range entries {
				if !e.Completed {
					continue
				}
				// The item may have been removed from the catalog since.
				if _, ok := store.Resolve(e.ItemID); !ok {
					continue
				}
				carried[key] = append(carried[key], e)
			}
		}
	}

	ctx := NewContext(today, in.Settings, in.Deadlines)
	sel := NewSelector(b.Candidates(store, ctx), b.Retention)

	for i := 0; i < days; i++ {
		date := clock.AddDays(today, i)
		key := clock.DayKey(date)
		entries := append([]models.PlanEntry{}, carried[key]...)
		used := make(map[string]bool, len(entries))
		regular := 0
		for _, e := range entries {
			used[e.ID] = true
			if !e.IsDeadlinePrep {
				regular++
			}
		}

		slots := SlotCount(in.Settings.BudgetFor(date), in.Settings.SessionLength) - regular
		gate := func(c Candidate) bool { return CanSchedule(c.Entry, date, in.Settings.SpacedRepetition) }
		seq := 0
		for slot := 0; slot < slots; slot++ {
			var restrict func(Candidate) bool
			if b.Strategy != nil {
				restrict = b.Strategy.Restrict(date, slot)
			}
			c, ok := sel.Pick(gate, restrict)
			if !ok {
				break
			}
			var id string
			for {
				id = fmt.Sprintf("plan-%s-%d", key, seq)
				seq++
				if !used[id] {
					break
				}
			}
			used[id] = true
			entries = append(entries, models.PlanEntry{
				ID:            id,
				ItemID:        c.Entry.ID(),
				ParentTopicID: c.Entry.ParentTopicID(),
				Date:          key,
				Duration:      in.Settings.SessionLength,
			})
		}
		plan.Days[key] = entries
	}

	if in.Settings.PrioritizeDeadlines {
		b.injectDeadlinePrep(store, plan, ctx, in.Settings, today, days)
	}
	return plan
}

// settled reports whether every entry of a past day is done or charged as a
// miss. Entries whose item was removed are ignored.
func settled(store *mastery.Store, entries []models.PlanEntry) bool {
	for _, e := range entries {
		if e.Completed || e.MissedLogged {
			continue
		}
		if _, ok := store.Resolve(e.ItemID); ok {
			return false
		}
	}
	return true
}

func (b *Builder) injectDeadlinePrep(store *mastery.Store, plan *models.Plan, ctx Context, settings models.Settings, today time.Time, days int) {
	for _, d := range ctx.Deadlines {
		date, err := clock.ParseDayKey(d.Date, today.Location())
		if err != nil {
			continue
		}
		diff := clock.DaysBetween(date, today)
		if diff < 0 || diff > settings.LookAheadDays {
			continue
		}
		target := min(max(0, diff-1), days-1)
		key := clock.DayKey(clock.AddDays(today, target))

		existing := make(map[string]bool, len(plan.Days[key]))
		for _, e := range plan.Days[key] {
			existing[e.ID] = true
		}
		for idx, topicID := range d.Topics {
			for subIdx, c := range b.TopForTopic(store, topicID, ctx, settings.DeadlinePrepCount) {
				id := fmt.Sprintf("prep-%s-%s-%d-%d", d.ID, key, idx, subIdx)
				if existing[id] {
					continue
				}
				plan.Days[key] = append(plan.Days[key], models.PlanEntry{
					ID:             id,
					ItemID:         c.Entry.ID(),
					ParentTopicID:  c.Entry.ParentTopicID(),
					Date:           key,
					Duration:       settings.DeadlinePrepLength,
					IsDeadlinePrep: true,
				})
			}
		}
	}
}

// Candidates scores every schedulable item in catalogue order.
func (b *Builder) Candidates(store *mastery.Store, ctx Context) []Candidate {
	items := store.Items()
	out := make([]Candidate, len(items))
	for i, e := range items {
		out[i] = Candidate{Entry: e, Score: b.Weights.Score(e, ctx)}
	}
	return out
}

// TopForTopic returns up to n of the topic's items by deadline-prep score,
// which is the urgency score less CompletedPrepPenalty for completed items.
// Unknown topics yield nothing.
func (b *Builder) TopForTopic(store *mastery.Store, topicID string, ctx Context, n int) []Candidate {
	items := store.TopicItems(topicID)
	if len(items) == 0 || n <= 0 {
		return nil
	}
	scored := make([]Candidate, len(items))
	for i, e := range items {
		score := b.Weights.Score(e, ctx)
		if e.Completed() {
			score -= CompletedPrepPenalty
		}
		scored[i] = Candidate{Entry: e, Score: score}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	return scored[:min(n, len(scored))]
}

// PriorityItem is the item to study first when a whole topic is chosen.
func (b *Builder) PriorityItem(store *mastery.Store, topicID string, ctx Context) (mastery.Entry, bool) {
	top := b.TopForTopic(store, topicID, ctx, 1)
	if len(top) == 0 {
		return mastery.Entry{}, false
	}
	return top[0].Entry, true
}

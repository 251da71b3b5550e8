package planner

import (
	"hash/fnv"
	"math/rand/v2"
	"sort"
	"time"

	"github.com/vytor/revplan/internal/clock"
)

// PoolStrategy narrows the candidate pool for one slot before selection.
// A nil predicate leaves the pool unrestricted.
type PoolStrategy interface {
	Restrict(day time.Time, slot int) func(Candidate) bool
}

// SubjectQuota draws a subject per slot with probability proportional to its
// weight and restricts the slot to that subject's items. The draw is seeded
// from the day and slot so rebuilding the same plan gives the same subjects.
type SubjectQuota struct {
	subjects []string
	weights  []float64
	total    float64
}

// NewSubjectQuota returns nil when no subject has a positive weight.
func NewSubjectQuota(weights map[string]float64) *SubjectQuota {
	q := &SubjectQuota{}
	for id, w := range weights {
		if w > 0 {
			q.subjects = append(q.subjects, id)
		}
	}
	if len(q.subjects) == 0 {
		return nil
	}
	sort.Strings(q.subjects)
	for _, id := range q.subjects {
		q.weights = append(q.weights, weights[id])
		q.total += weights[id]
	}
	return q
}

// SubjectFor returns the subject drawn for a slot.
func (q *SubjectQuota) SubjectFor(day time.Time, slot int) string {
	h := fnv.New64a()
	h.Write([]byte(clock.DayKey(day)))
	rng := rand.New(rand.NewPCG(h.Sum64(), uint64(slot)))
	target := rng.Float64() * q.total
	for i, w := range q.weights {
		if target < w {
			return q.subjects[i]
		}
		target -= w
	}
	return q.subjects[len(q.subjects)-1]
}

func (q *SubjectQuota) Restrict(day time.Time, slot int) func(Candidate) bool {
	if q == nil {
		return nil
	}
	subject := q.SubjectFor(day, slot)
	return func(c Candidate) bool { return c.Entry.SubjectID == subject }
}

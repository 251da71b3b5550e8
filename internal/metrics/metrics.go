// Package metrics derives progress figures from the mastery store and the
// session log. Nothing here mutates its inputs.
package metrics

import (
	"sort"
	"time"

	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/models"
)

// GradeNA is reported when there is nothing to grade.
const GradeNA = "N/A"

// Readiness blend weights and the streak length counted as fully consistent.
const (
	ReadinessCompletionWeight = 0.6
	ReadinessPaperWeight      = 0.2
	ReadinessStreakWeight     = 0.2
	ConsistentStreakDays      = 7
)

var gradeThresholds = []struct {
	min   float64
	grade string
}{
	{0.85, "A*"},
	{0.70, "A"},
	{0.55, "B"},
	{0.40, "C"},
	{0.25, "D"},
}

// GradeFor maps a fraction in [0,1] to a grade. Lower bounds are inclusive.
func GradeFor(fraction float64) string {
	for _, t := range gradeThresholds {
		if fraction >= t.min {
			return t.grade
		}
	}
	return "E"
}

// Completion counts finished work across the store.
type Completion struct {
	Topics             int     `json:"topics"`
	CompletedTopics    int     `json:"completed_topics"`
	Subtopics          int     `json:"subtopics"`
	CompletedSubtopics int     `json:"completed_subtopics"`
	Fraction           float64 `json:"fraction"`
}

// TopicCompletion is the completed share of a topic's subtopics.
func TopicCompletion(t *models.Topic) float64 {
	return t.CompletionFraction()
}

// CompletionOf counts topics and subtopics. A topic counts as completed when
// all of its subtopics are, or, without subtopics, when it is marked itself.
// Fraction is over subtopics only.
func CompletionOf(store *mastery.Store) Completion {
	var c Completion
	for _, subject := range store.Subjects() {
		for ti := range subject.Topics {
			topic := &subject.Topics[ti]
			c.Topics++
			if len(topic.Subtopics) == 0 {
				if topic.Completed {
					c.CompletedTopics++
				}
				continue
			}
			done := 0
			for _, sub := range topic.Subtopics {
				if sub.Completed {
					done++
				}
			}
			c.Subtopics += len(topic.Subtopics)
			c.CompletedSubtopics += done
			if done == len(topic.Subtopics) {
				c.CompletedTopics++
			}
		}
	}
	if c.Subtopics > 0 {
		c.Fraction = float64(c.CompletedSubtopics) / float64(c.Subtopics)
	}
	return c
}

// PredictedGrade grades overall subtopic completion.
func PredictedGrade(store *mastery.Store) string {
	c := CompletionOf(store)
	if c.Subtopics == 0 {
		return GradeNA
	}
	return GradeFor(c.Fraction)
}

// Streak counts consecutive study days ending today or yesterday. Several
// sessions on one day count once.
func Streak(sessions []models.SessionRecord, today time.Time) int {
	loc := today.Location()
	days := make(map[string]time.Time)
	for _, s := range sessions {
		d := clock.StartOfDay(s.CompletedAt.In(loc))
		days[clock.DayKey(d)] = d
	}
	ordered := make([]time.Time, 0, len(days))
	for _, d := range days {
		ordered = append(ordered, d)
	}
	sort.Slice(ordered, func(i, j int) bool { return ordered[i].After(ordered[j]) })

	streak := 0
	cursor := clock.StartOfDay(today)
	for _, d := range ordered {
		diff := clock.DaysBetween(cursor, d)
		if diff < 0 {
			continue
		}
		if diff > 1 {
			break
		}
		streak++
		cursor = d
	}
	return streak
}

// TotalMinutes sums session durations.
func TotalMinutes(sessions []models.SessionRecord) int {
	total := 0
	for _, s := range sessions {
		total += s.Duration
	}
	return total
}

// MinutesSince sums durations of sessions completed at or after since.
func MinutesSince(sessions []models.SessionRecord, since time.Time) int {
	total := 0
	for _, s := range sessions {
		if !s.CompletedAt.Before(since) {
			total += s.Duration
		}
	}
	return total
}

type MethodCount struct {
	Method models.Method `json:"method"`
	Count  int           `json:"count"`
}

// MethodCounts tallies method usage, most used first. Ties keep the order of
// models.Methods and unknown methods sort last by name.
func MethodCounts(sessions []models.SessionRecord) []MethodCount {
	counts := make(map[models.Method]int)
	for _, s := range sessions {
		for _, m := range s.Methods {
			counts[m]++
		}
	}
	rank := make(map[models.Method]int, len(models.Methods))
	for i, m := range models.Methods {
		rank[m] = i
	}
	out := make([]MethodCount, 0, len(counts))
	for m, n := range counts {
		out = append(out, MethodCount{Method: m, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		ri, iok := rank[out[i].Method]
		rj, jok := rank[out[j].Method]
		switch {
		case iok && jok:
			return ri < rj
		case iok != jok:
			return iok
		default:
			return out[i].Method < out[j].Method
		}
	})
	return out
}

// FavouriteMethod is the most used method, or "" with no sessions.
func FavouriteMethod(sessions []models.SessionRecord) models.Method {
	counts := MethodCounts(sessions)
	if len(counts) == 0 {
		return ""
	}
	return counts[0].Method
}

// PastPaperCompletion is the completed share of past papers, 0 with none.
func PastPaperCompletion(papers []models.PastPaper) float64 {
	if len(papers) == 0 {
		return 0
	}
	done := 0
	for _, p := range papers {
		if p.Completed {
			done++
		}
	}
	return float64(done) / float64(len(papers))
}

// Readiness blends completion, past-paper practice and consistency.
func Readiness(completion, paperCompletion float64, streak int) float64 {
	consistency := min(1, float64(streak)/ConsistentStreakDays)
	return ReadinessCompletionWeight*completion +
		ReadinessPaperWeight*paperCompletion +
		ReadinessStreakWeight*consistency
}

type UpcomingDeadline struct {
	models.Deadline
	DaysLeft int `json:"days_left"`
}

// UpcomingDeadlines returns up to n deadlines dated today or later, soonest
// first. Deadlines with unparseable dates are skipped.
func UpcomingDeadlines(deadlines []models.Deadline, today time.Time, n int) []UpcomingDeadline {
	var out []UpcomingDeadline
	for _, d := range deadlines {
		date, err := clock.ParseDayKey(d.Date, today.Location())
		if err != nil {
			continue
		}
		left := clock.DaysBetween(date, today)
		if left < 0 {
			continue
		}
		out = append(out, UpcomingDeadline{Deadline: d, DaysLeft: left})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysLeft < out[j].DaysLeft })
	if n >= 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// Input is everything Summarize reads.
type Input struct {
	Store     *mastery.Store
	Sessions  []models.SessionRecord
	Papers    []models.PastPaper
	Deadlines []models.Deadline
	Now       time.Time
}

// Summary is the dashboard view of progress.
type Summary struct {
	Completion        Completion         `json:"completion"`
	PredictedGrade    string             `json:"predicted_grade"`
	Streak            int                `json:"streak"`
	TotalMinutes      int                `json:"total_minutes"`
	WeekMinutes       int                `json:"week_minutes"`
	Sessions          int                `json:"sessions"`
	Methods           []MethodCount      `json:"methods"`
	FavouriteMethod   models.Method      `json:"favourite_method,omitempty"`
	PaperCompletion   float64            `json:"paper_completion"`
	Readiness         float64            `json:"readiness"`
	ReadinessGrade    string             `json:"readiness_grade"`
	UpcomingDeadlines []UpcomingDeadline `json:"upcoming_deadlines"`
}

// UpcomingLimit caps the deadlines listed in a summary.
const UpcomingLimit = 5

func Summarize(in Input) Summary {
	completion := CompletionOf(in.Store)
	streak := Streak(in.Sessions, in.Now)
	papers := PastPaperCompletion(in.Papers)
	readiness := Readiness(completion.Fraction, papers, streak)

	s := Summary{
		Completion:        completion,
		PredictedGrade:    PredictedGrade(in.Store),
		Streak:            streak,
		TotalMinutes:      TotalMinutes(in.Sessions),
		WeekMinutes:       MinutesSince(in.Sessions, clock.AddDays(in.Now, -6)),
		Sessions:          len(in.Sessions),
		Methods:           MethodCounts(in.Sessions),
		FavouriteMethod:   FavouriteMethod(in.Sessions),
		PaperCompletion:   papers,
		Readiness:         readiness,
		ReadinessGrade:    GradeFor(readiness),
		UpcomingDeadlines: UpcomingDeadlines(in.Deadlines, clock.StartOfDay(in.Now), UpcomingLimit),
	}
	if completion.Subtopics == 0 {
		s.ReadinessGrade = GradeNA
	}
	return s
}

package metrics_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vytor/revplan/internal/mastery"
	"github.com/vytor/revplan/internal/metrics"
	"github.com/vytor/revplan/internal/models"
)

var now = time.Date(2026, 10, 19, 20, 0, 0, 0, time.UTC)

func daysAgo(n int) time.Time {
	return now.AddDate(0, 0, -n)
}

func TestGradeFor(t *testing.T) {
	tests := []struct {
		fraction float64
		want     string
	}{
		{1, "A*"},
		{0.85, "A*"},
		{0.849, "A"},
		{0.70, "A"},
		{0.55, "B"},
		{0.549, "C"},
		{0.40, "C"},
		{0.25, "D"},
		{0.2499, "E"},
		{0, "E"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, metrics.GradeFor(tt.fraction), "fraction %v", tt.fraction)
	}
}

func TestStreak(t *testing.T) {
	sessions := []models.SessionRecord{
		{CompletedAt: daysAgo(0)},
		{CompletedAt: daysAgo(0).Add(-time.Hour)},
		{CompletedAt: daysAgo(1)},
		{CompletedAt: daysAgo(2)},
		{CompletedAt: daysAgo(4)},
	}
	assert.Equal(t, 3, metrics.Streak(sessions, now))

	assert.Equal(t, 2, metrics.Streak(sessions[2:], now), "a streak may end yesterday")
	assert.Equal(t, 0, metrics.Streak(sessions[4:], now))
	assert.Equal(t, 0, metrics.Streak(nil, now))
}

func TestMinutesAndMethods(t *testing.T) {
	sessions := []models.SessionRecord{
		{Duration: 45, CompletedAt: daysAgo(0), Methods: []models.Method{models.MethodFlashcards, models.MethodBlurting}},
		{Duration: 30, CompletedAt: daysAgo(3), Methods: []models.Method{models.MethodBlurting}},
		{Duration: 25, CompletedAt: daysAgo(10), Methods: []models.Method{models.MethodReadingNotes}},
	}

	assert.Equal(t, 100, metrics.TotalMinutes(sessions))
	assert.Equal(t, 75, metrics.MinutesSince(sessions, daysAgo(6)))

	counts := metrics.MethodCounts(sessions)
	require.Len(t, counts, 3)
	assert.Equal(t, metrics.MethodCount{Method: models.MethodBlurting, Count: 2}, counts[0])
	assert.Equal(t, models.MethodReadingNotes, counts[1].Method, "ties follow display order")
	assert.Equal(t, models.MethodBlurting, metrics.FavouriteMethod(sessions))
	assert.Empty(t, metrics.FavouriteMethod(nil))
}

func store() *mastery.Store {
	return mastery.NewStore([]models.Subject{{
		ID: "bio", Name: "Biology",
		Topics: []models.Topic{
			{ID: "bio-cells", Name: "Cells", Subtopics: []models.StudyItem{
				{ID: "bio-cells-a", Completed: true},
				{ID: "bio-cells-b", Completed: true},
			}},
			{ID: "bio-genes", Name: "Genes", Subtopics: []models.StudyItem{
				{ID: "bio-genes-a", Completed: true},
				{ID: "bio-genes-b"},
			}},
			{ID: "bio-ecology", Name: "Ecology", Completed: true},
		},
	}})
}

func TestCompletionOf(t *testing.T) {
	c := metrics.CompletionOf(store())
	assert.Equal(t, 3, c.Topics)
	assert.Equal(t, 2, c.CompletedTopics)
	assert.Equal(t, 4, c.Subtopics)
	assert.Equal(t, 3, c.CompletedSubtopics)
	assert.InDelta(t, 0.75, c.Fraction, 1e-9)
	assert.Equal(t, "A", metrics.PredictedGrade(store()))

	empty := mastery.NewStore([]models.Subject{{ID: "pe", Topics: []models.Topic{{ID: "pe-x"}}}})
	assert.Equal(t, metrics.GradeNA, metrics.PredictedGrade(empty))
}

func TestUpcomingDeadlines(t *testing.T) {
	deadlines := []models.Deadline{
		{ID: "late", Date: "2026-11-30"},
		{ID: "past", Date: "2026-10-01"},
		{ID: "bad", Date: "soon"},
		{ID: "today", Date: "2026-10-19"},
		{ID: "next", Date: "2026-10-22"},
	}
	out := metrics.UpcomingDeadlines(deadlines, now, 2)
	require.Len(t, out, 2)
	assert.Equal(t, "today", out[0].ID)
	assert.Equal(t, 0, out[0].DaysLeft)
	assert.Equal(t, "next", out[1].ID)
	assert.Equal(t, 3, out[1].DaysLeft)
}

func TestSummarize(t *testing.T) {
	score := 72.0
	summary := metrics.Summarize(metrics.Input{
		Store: store(),
		Sessions: []models.SessionRecord{
			{Duration: 45, CompletedAt: daysAgo(0), Methods: []models.Method{models.MethodExamQuestions}},
			{Duration: 45, CompletedAt: daysAgo(1), Methods: []models.Method{models.MethodExamQuestions}},
		},
		Papers: []models.PastPaper{
			{ID: "p1", Completed: true, Score: &score},
			{ID: "p2"},
		},
		Now: now,
	})

	assert.Equal(t, 2, summary.Streak)
	assert.Equal(t, 90, summary.TotalMinutes)
	assert.Equal(t, 90, summary.WeekMinutes)
	assert.Equal(t, 2, summary.Sessions)
	assert.Equal(t, models.MethodExamQuestions, summary.FavouriteMethod)
	assert.InDelta(t, 0.5, summary.PaperCompletion, 1e-9)
	want := 0.6*0.75 + 0.2*0.5 + 0.2*(2.0/7)
	assert.InDelta(t, want, summary.Readiness, 1e-9)
	assert.Equal(t, metrics.GradeFor(want), summary.ReadinessGrade)
	assert.Empty(t, summary.UpcomingDeadlines)
}

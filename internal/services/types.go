package services

import (
	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/planner"
)

// ItemScore is a schedulable item with its current urgency.
type ItemScore struct {
	ID            string            `json:"id"`
	Name          string            `json:"name"`
	Kind          string            `json:"kind"`
	SubjectID     string            `json:"subject_id"`
	SubjectName   string            `json:"subject_name"`
	ParentTopicID string            `json:"parent_topic_id,omitempty"`
	Difficulty    models.Difficulty `json:"difficulty"`
	Confidence    float64           `json:"confidence"`
	Performance   float64           `json:"recent_performance"`
	Completed     bool              `json:"completed"`
	Missed        float64           `json:"missed_sessions"`
	Schedulable   bool              `json:"schedulable"`
	Score         float64           `json:"score"`
	Breakdown     planner.Breakdown `json:"breakdown"`
}

// EntryView is a plan entry resolved against the catalogue.
type EntryView struct {
	models.PlanEntry
	Name        string `json:"name"`
	SubjectID   string `json:"subject_id"`
	SubjectName string `json:"subject_name"`
}

// DayView is one day of the plan. Entries naming unknown items are omitted.
type DayView struct {
	Date             string      `json:"date"`
	Entries          []EntryView `json:"entries"`
	PlannedMinutes   int         `json:"planned_minutes"`
	CompletedMinutes int         `json:"completed_minutes"`
}

// CompleteRequest records a finished session. Duration defaults to the
// configured timer length.
type CompleteRequest struct {
	ItemID   string          `json:"item_id"`
	EntryID  string          `json:"entry_id,omitempty"`
	Methods  []models.Method `json:"methods"`
	Duration int             `json:"duration,omitempty"`
}

// SettingsPatch changes only the fields that are set.
type SettingsPatch struct {
	DailyTimeBudget     *int               `json:"daily_time_budget,omitempty"`
	SessionLength       *int               `json:"session_length,omitempty"`
	TimerLength         *int               `json:"timer_length,omitempty"`
	PrioritizeDeadlines *bool              `json:"prioritize_deadlines,omitempty"`
	ExamDate            *string            `json:"exam_date,omitempty"`
	SpacedRepetition    *bool              `json:"spaced_repetition,omitempty"`
	LookAheadDays       *int               `json:"look_ahead_days,omitempty"`
	PlanDays            *int               `json:"plan_days,omitempty"`
	DeadlinePrepCount   *int               `json:"deadline_prep_count,omitempty"`
	DeadlinePrepLength  *int               `json:"deadline_prep_length,omitempty"`
	DayBudgets          map[string]int     `json:"day_budgets,omitempty"`
	SubjectWeights      map[string]float64 `json:"subject_weights,omitempty"`
}

func (p SettingsPatch) apply(s models.Settings) models.Settings {
	setInt := func(dst *int, v *int) {
		if v != nil {
			*dst = *v
		}
	}
	setBool := func(dst *bool, v *bool) {
		if v != nil {
			*dst = *v
		}
	}
	setInt(&s.DailyTimeBudget, p.DailyTimeBudget)
	setInt(&s.SessionLength, p.SessionLength)
	setInt(&s.TimerLength, p.TimerLength)
	setInt(&s.LookAheadDays, p.LookAheadDays)
	setInt(&s.PlanDays, p.PlanDays)
	setInt(&s.DeadlinePrepCount, p.DeadlinePrepCount)
	setInt(&s.DeadlinePrepLength, p.DeadlinePrepLength)
	setBool(&s.PrioritizeDeadlines, p.PrioritizeDeadlines)
	setBool(&s.SpacedRepetition, p.SpacedRepetition)
	if p.ExamDate != nil {
		s.ExamDate = *p.ExamDate
	}
	if p.DayBudgets != nil {
		s.DayBudgets = p.DayBudgets
	}
	if p.SubjectWeights != nil {
		s.SubjectWeights = p.SubjectWeights
	}
	return s
}

type DeadlineInput struct {
	Name      string   `json:"name"`
	Date      string   `json:"date"`
	SubjectID string   `json:"subject_id"`
	Topics    []string `json:"topics"`
}

// ItemUpdate changes the self-rated fields of an item.
type ItemUpdate struct {
	Confidence *float64 `json:"confidence,omitempty"`
	Difficulty *string  `json:"difficulty,omitempty"`
	Completed  *bool    `json:"completed,omitempty"`
}

type PaperInput struct {
	SubjectID string   `json:"subject_id"`
	Name      string   `json:"name"`
	Score     *float64 `json:"score,omitempty"`
}

// GenerateResult reports a regeneration and the misses swept before it.
type GenerateResult struct {
	Plan   *models.Plan   `json:"plan"`
	Misses []planner.Miss `json:"misses"`
}

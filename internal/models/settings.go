package models

import (
	"encoding/json"
	"strings"
	"time"
)

type Settings struct {
	DailyTimeBudget     int                `json:"daily_time_budget"`
	SessionLength       int                `json:"session_length"`
	TimerLength         int                `json:"timer_length"`
	PrioritizeDeadlines bool               `json:"prioritize_deadlines"`
	ExamDate            string             `json:"exam_date"`
	SpacedRepetition    bool               `json:"spaced_repetition"`
	LookAheadDays       int                `json:"look_ahead_days"`
	PlanDays            int                `json:"plan_days"`
	DeadlinePrepCount   int                `json:"deadline_prep_count"`
	DeadlinePrepLength  int                `json:"deadline_prep_length"`
	DayBudgets          map[string]int     `json:"day_budgets,omitempty"`
	SubjectWeights      map[string]float64 `json:"subject_weights,omitempty"`
}

// DefaultSettings returns the settings used when none are stored.
func DefaultSettings() Settings {
	return Settings{
		DailyTimeBudget:     180,
		SessionLength:       45,
		TimerLength:         25,
		PrioritizeDeadlines: true,
		SpacedRepetition:    true,
		LookAheadDays:       14,
		PlanDays:            7,
		DeadlinePrepCount:   3,
		DeadlinePrepLength:  30,
	}
}

// UnmarshalJSON fills fields absent from the document with their defaults.
func (s *Settings) UnmarshalJSON(data []byte) error {
	type alias Settings
	out := alias(DefaultSettings())
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = Settings(out).Normalize(DefaultSettings())
	return nil
}

// Normalize replaces invalid numeric values with the corresponding value from
// fallback, and with the defaults when fallback is invalid too.
func (s Settings) Normalize(fallback Settings) Settings {
	def := DefaultSettings()
	pick := func(v, prev, d int, allowZero bool) int {
		ok := func(x int) bool { return x > 0 || (allowZero && x == 0) }
		switch {
		case ok(v):
			return v
		case ok(prev):
			return prev
		default:
			return d
		}
	}
	s.DailyTimeBudget = pick(s.DailyTimeBudget, fallback.DailyTimeBudget, def.DailyTimeBudget, true)
	s.SessionLength = pick(s.SessionLength, fallback.SessionLength, def.SessionLength, false)
	s.TimerLength = pick(s.TimerLength, fallback.TimerLength, def.TimerLength, false)
	s.LookAheadDays = pick(s.LookAheadDays, fallback.LookAheadDays, def.LookAheadDays, false)
	s.PlanDays = pick(s.PlanDays, fallback.PlanDays, def.PlanDays, false)
	s.DeadlinePrepCount = pick(s.DeadlinePrepCount, fallback.DeadlinePrepCount, def.DeadlinePrepCount, true)
	s.DeadlinePrepLength = pick(s.DeadlinePrepLength, fallback.DeadlinePrepLength, def.DeadlinePrepLength, false)

	if s.ExamDate != "" {
		if _, err := time.Parse("2006-01-02", s.ExamDate); err != nil {
			s.ExamDate = fallback.ExamDate
		}
	}

	if len(s.DayBudgets) > 0 {
		budgets := make(map[string]int, len(s.DayBudgets))
		for day, minutes := range s.DayBudgets {
			day = strings.ToLower(strings.TrimSpace(day))
			if _, ok := weekdays[day]; !ok || minutes < 0 {
				continue
			}
			budgets[day] = minutes
		}
		s.DayBudgets = budgets
	}

	if len(s.SubjectWeights) > 0 {
		weights := make(map[string]float64, len(s.SubjectWeights))
		for subject, w := range s.SubjectWeights {
			if w > 0 {
				weights[subject] = w
			}
		}
		s.SubjectWeights = weights
	}
	return s
}

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// BudgetFor returns the study minutes for the weekday of date, honouring
// per-weekday overrides.
func (s Settings) BudgetFor(date time.Time) int {
	if minutes, ok := s.DayBudgets[strings.ToLower(date.Weekday().String())]; ok {
		return minutes
	}
	return s.DailyTimeBudget
}

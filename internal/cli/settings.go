package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vytor/revplan/internal/services"
)

func newSettingsCommand(a *app) *cobra.Command {
	var (
		budget, sessionLength, timerLength int
		lookAhead, planDays                int
		prepCount, prepLength              int
		prioritize, spacing                bool
		examDate                           string
		dayBudgets, subjectWeights         []string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change planner settings; changes regenerate the plan",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}

			var patch services.SettingsPatch
			changed := false
			flags := cmd.Flags()
			setInt := func(name string, v int, dst **int) {
				if flags.Changed(name) {
					*dst = &v
					changed = true
				}
			}
			setBool := func(name string, v bool, dst **bool) {
				if flags.Changed(name) {
					*dst = &v
					changed = true
				}
			}
			setInt("budget", budget, &patch.DailyTimeBudget)
			setInt("session-length", sessionLength, &patch.SessionLength)
			setInt("timer-length", timerLength, &patch.TimerLength)
			setInt("look-ahead", lookAhead, &patch.LookAheadDays)
			setInt("plan-days", planDays, &patch.PlanDays)
			setInt("prep-count", prepCount, &patch.DeadlinePrepCount)
			setInt("prep-length", prepLength, &patch.DeadlinePrepLength)
			setBool("prioritize-deadlines", prioritize, &patch.PrioritizeDeadlines)
			setBool("spaced-repetition", spacing, &patch.SpacedRepetition)
			if flags.Changed("exam-date") {
				patch.ExamDate = &examDate
				changed = true
			}
			if flags.Changed("day-budget") {
				if patch.DayBudgets, err = parseIntPairs(dayBudgets); err != nil {
					return err
				}
				changed = true
			}
			if flags.Changed("subject-weight") {
				if patch.SubjectWeights, err = parseFloatPairs(subjectWeights); err != nil {
					return err
				}
				changed = true
			}

			if !changed {
				settings, err := svc.Settings(ctx)
				if err != nil {
					return err
				}
				return a.printJSON(settings)
			}
			settings, err := svc.UpdateSettings(ctx, patch)
			if err != nil {
				return err
			}
			return a.printJSON(settings)
		},
	}

	f := cmd.Flags()
	f.IntVar(&budget, "budget", 0, "daily study minutes")
	f.IntVar(&sessionLength, "session-length", 0, "minutes per planned session")
	f.IntVar(&timerLength, "timer-length", 0, "default minutes logged per completed session")
	f.IntVar(&lookAhead, "look-ahead", 0, "days ahead a deadline starts injecting prep")
	f.IntVar(&planDays, "plan-days", 0, "days covered by the plan")
	f.IntVar(&prepCount, "prep-count", 0, "prep sessions per deadline topic")
	f.IntVar(&prepLength, "prep-length", 0, "minutes per prep session")
	f.BoolVar(&prioritize, "prioritize-deadlines", true, "boost and inject prep for deadlines")
	f.BoolVar(&spacing, "spaced-repetition", true, "enforce minimum intervals by difficulty")
	f.StringVar(&examDate, "exam-date", "", `final exam date YYYY-MM-DD ("" clears it)`)
	f.StringArrayVar(&dayBudgets, "day-budget", nil, "per-weekday budget, e.g. saturday=240 (repeatable; replaces all)")
	f.StringArrayVar(&subjectWeights, "subject-weight", nil, "subject quota weight, e.g. bio=2 (repeatable; replaces all)")
	return cmd
}

func splitPair(s string) (string, string, error) {
	k, v, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(k) == "" {
		return "", "", fmt.Errorf("expected key=value, got %q", s)
	}
	return strings.TrimSpace(k), strings.TrimSpace(v), nil
}

func parseIntPairs(pairs []string) (map[string]int, error) {
	out := make(map[string]int, len(pairs))
	for _, p := range pairs {
		k, v, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[strings.ToLower(k)] = n
	}
	return out, nil
}

func parseFloatPairs(pairs []string) (map[string]float64, error) {
	out := make(map[string]float64, len(pairs))
	for _, p := range pairs {
		k, v, err := splitPair(p)
		if err != nil {
			return nil, err
		}
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", p, err)
		}
		out[k] = f
	}
	return out, nil
}

package cli

import (
	"github.com/spf13/cobra"
)

func newMetricsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "metrics",
		Short: "Show progress, streak, grades and upcoming deadlines",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			m, err := svc.Metrics(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(m)
			}

			c := m.Completion
			fprintf(a.out, "Topics completed:    %d/%d\n", c.CompletedTopics, c.Topics)
			fprintf(a.out, "Subtopics completed: %d/%d (%.0f%%)\n", c.CompletedSubtopics, c.Subtopics, c.Fraction*100)
			fprintf(a.out, "Predicted grade:     %s\n", m.PredictedGrade)
			fprintf(a.out, "Readiness:           %.0f%% (%s)\n", m.Readiness*100, m.ReadinessGrade)
			fprintf(a.out, "Streak:              %d days\n", m.Streak)
			fprintf(a.out, "Minutes:             %d total, %d this week over %d sessions\n", m.TotalMinutes, m.WeekMinutes, m.Sessions)
			fprintf(a.out, "Past papers done:    %.0f%%\n", m.PaperCompletion*100)
			if m.FavouriteMethod != "" {
				fprintf(a.out, "Favourite method:    %s\n", m.FavouriteMethod)
			}
			if len(m.UpcomingDeadlines) == 0 {
				return nil
			}
			fprintf(a.out, "\n")
			return a.table([]string{"DEADLINE", "DATE", "DAYS LEFT"}, func(row func(...any)) {
				for _, d := range m.UpcomingDeadlines {
					row(d.Name, d.Date, d.DaysLeft)
				}
			})
		},
	}
}

package cli

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/planner"
	"github.com/vytor/revplan/internal/services"
)

func newPlanCommand(a *app) *cobra.Command {
	var regenerate bool
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the study plan, generating it if needed",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}

			var plan *models.Plan
			if regenerate {
				res, err := svc.Generate(ctx)
				if err != nil {
					return err
				}
				if len(res.Misses) > 0 && !a.jsonOut {
					fprintf(a.out, "logged %d missed sessions\n", len(res.Misses))
				}
				plan = res.Plan
			} else if plan, err = svc.Plan(ctx); err != nil {
				return err
			}

			if a.jsonOut {
				return a.printJSON(plan)
			}
			keys := make([]string, 0, len(plan.Days))
			for k := range plan.Days {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			for _, k := range keys {
				day, err := svc.Day(ctx, k)
				if err != nil {
					return err
				}
				if err := a.printDay(day); err != nil {
					return err
				}
				fmt.Fprintln(a.out)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&regenerate, "regenerate", false, "sweep misses and rebuild the plan from today")
	return cmd
}

func newTodayCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "today [date]",
		Short: "Show today's sessions, or those of a YYYY-MM-DD date",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				day, err := svc.Day(ctx, args[0])
				if err != nil {
					return err
				}
				return a.printDay(day)
			}
			day, err := svc.Today(ctx)
			if err != nil {
				return err
			}
			return a.printDay(day)
		},
	}
}

func newCompleteCommand(a *app) *cobra.Command {
	var (
		entryID  string
		methods  []string
		duration int
	)
	cmd := &cobra.Command{
		Use:   "complete <item-id>",
		Short: "Log a completed study session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			req := services.CompleteRequest{ItemID: args[0], EntryID: entryID, Duration: duration}
			for _, m := range methods {
				req.Methods = append(req.Methods, models.Method(m))
			}
			rec, err := svc.CompleteSession(ctx, req)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(rec)
			}
			fprintf(a.out, "logged %d min on %s (session %s)\n", rec.Duration, rec.ItemID, rec.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&entryID, "entry", "", "plan entry the session fulfils")
	cmd.Flags().StringArrayVarP(&methods, "method", "m", nil, `revision method, repeatable (e.g. "Exam questions")`)
	cmd.Flags().IntVarP(&duration, "duration", "d", 0, "minutes studied (default: timer length)")
	return cmd
}

func newSweepCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "sweep",
		Short: "Log missed sessions from past days",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			misses, err := svc.Sweep(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(misses)
			}
			if len(misses) == 0 {
				fprintf(a.out, "no missed sessions\n")
				return nil
			}
			return a.table([]string{"DAY", "ENTRY", "ITEM", "PENALTY"}, func(row func(...any)) {
				for _, m := range misses {
					row(m.Day, m.EntryID, m.ItemID, missPenalty(m))
				}
			})
		},
	}
}

func missPenalty(m planner.Miss) string {
	if m.TopicID == "" {
		return fmt.Sprintf("+%g", m.ItemPenalty)
	}
	return fmt.Sprintf("+%g (topic %s +%g)", m.ItemPenalty, m.TopicID, m.TopicPenalty)
}

func newResetCommand(a *app) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Erase all mastery, sessions, deadlines and papers",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return fmt.Errorf("refusing to reset without --yes")
			}
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			if err := svc.Reset(ctx); err != nil {
				return err
			}
			fprintf(a.out, "state reset\n")
			return nil
		},
	}
	cmd.Flags().BoolVar(&yes, "yes", false, "confirm the reset")
	return cmd
}

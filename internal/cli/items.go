package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/vytor/revplan/internal/services"
)

func newScoreCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "score [item-id]",
		Short: "Show urgency scores, highest first",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			if len(args) == 1 {
				score, err := svc.Score(ctx, args[0])
				if err != nil {
					return err
				}
				return a.printScores([]services.ItemScore{*score}, true)
			}
			scores, err := svc.Scores(ctx)
			if err != nil {
				return err
			}
			return a.printScores(scores, false)
		},
	}
}

func (a *app) printScores(scores []services.ItemScore, breakdown bool) error {
	if a.jsonOut {
		return a.printJSON(scores)
	}
	err := a.table([]string{"ITEM", "NAME", "SUBJECT", "DIFFICULTY", "CONF", "PERF", "MISSED", "SCORE", ""}, func(row func(...any)) {
		for _, s := range scores {
			flag := ""
			if s.Completed {
				flag = "completed"
			} else if !s.Schedulable {
				flag = "resting"
			}
			row(s.ID, s.Name, s.SubjectName, s.Difficulty,
				fmt.Sprintf("%.2f", s.Confidence), fmt.Sprintf("%.2f", s.Performance),
				fmt.Sprintf("%g", s.Missed), fmt.Sprintf("%.2f", s.Score), flag)
		}
	})
	if err != nil || !breakdown || len(scores) != 1 {
		return err
	}
	fprintf(a.out, "\n")
	return a.printJSON(scores[0].Breakdown)
}

func newSubjectsCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "subjects",
		Short: "List subjects, topics and subtopics",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			subjects, err := svc.Subjects(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(subjects)
			}
			for _, s := range subjects {
				fprintf(a.out, "%s (%s)\n", s.Name, s.ID)
				for _, t := range s.Topics {
					fprintf(a.out, "  %s  %s\n", t.ID, t.Name)
					for _, st := range t.Subtopics {
						fprintf(a.out, "    %s  %s\n", st.ID, st.Name)
					}
				}
			}
			return nil
		},
	}
}

func newItemCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Inspect or adjust a study item",
	}
	cmd.AddCommand(newItemSetCommand(a), newItemPriorityCommand(a))
	return cmd
}

func newItemSetCommand(a *app) *cobra.Command {
	var (
		confidence float64
		difficulty string
		completed  bool
	)
	cmd := &cobra.Command{
		Use:   "set <item-id>",
		Short: "Set confidence, difficulty or completion of an item",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			var upd services.ItemUpdate
			flags := cmd.Flags()
			if flags.Changed("confidence") {
				upd.Confidence = &confidence
			}
			if flags.Changed("difficulty") {
				upd.Difficulty = &difficulty
			}
			if flags.Changed("completed") {
				upd.Completed = &completed
			}
			if upd == (services.ItemUpdate{}) {
				return fmt.Errorf("nothing to update: pass --confidence, --difficulty or --completed")
			}

			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			score, err := svc.UpdateItem(ctx, args[0], upd)
			if err != nil {
				return err
			}
			return a.printScores([]services.ItemScore{*score}, false)
		},
	}
	cmd.Flags().Float64Var(&confidence, "confidence", 0, "self-rated confidence in [0,1]")
	cmd.Flags().StringVar(&difficulty, "difficulty", "", "Easy, OK or Hard")
	cmd.Flags().BoolVar(&completed, "completed", false, "mark the item completed (--completed=false to reopen)")
	return cmd
}

func newItemPriorityCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "priority <topic-id>",
		Short: "Show which subtopic of a topic to study now",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			score, err := svc.PriorityItem(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printScores([]services.ItemScore{*score}, false)
		},
	}
}

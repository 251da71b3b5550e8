package cli

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/vytor/revplan/internal/services"
)

func newDeadlineCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "deadline",
		Aliases: []string{"test"},
		Short:   "Manage tests and exams that raise topic urgency",
	}
	cmd.AddCommand(newDeadlineAddCommand(a), newDeadlineListCommand(a), newDeadlineRemoveCommand(a))
	return cmd
}

func newDeadlineAddCommand(a *app) *cobra.Command {
	var in services.DeadlineInput
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a deadline and regenerate the plan",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			d, err := svc.AddDeadline(ctx, in)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(d)
			}
			fprintf(a.out, "added %s on %s (%s)\n", d.Name, d.Date, d.ID)
			return nil
		},
	}
	cmd.Flags().StringVar(&in.Date, "date", "", "date YYYY-MM-DD")
	cmd.Flags().StringVar(&in.SubjectID, "subject", "", "subject id")
	cmd.Flags().StringArrayVar(&in.Topics, "topic", nil, "topic id covered by the deadline (repeatable)")
	_ = cmd.MarkFlagRequired("date")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newDeadlineListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List deadlines, soonest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			deadlines, err := svc.ListDeadlines(ctx)
			if err != nil {
				return err
			}
			if a.jsonOut {
				return a.printJSON(deadlines)
			}
			return a.table([]string{"ID", "DATE", "NAME", "SUBJECT", "TOPICS"}, func(row func(...any)) {
				for _, d := range deadlines {
					row(d.ID, d.Date, d.Name, d.SubjectID, strings.Join(d.Topics, ","))
				}
			})
		},
	}
}

func newDeadlineRemoveCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>",
		Short: "Remove a deadline and regenerate the plan",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			if err := svc.RemoveDeadline(ctx, args[0]); err != nil {
				return err
			}
			fprintf(a.out, "removed %s\n", args[0])
			return nil
		},
	}
}

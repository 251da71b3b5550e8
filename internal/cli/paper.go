package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/services"
)

func newPaperCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "paper",
		Short: "Track past exam papers",
	}
	cmd.AddCommand(
		newPaperAddCommand(a),
		newPaperListCommand(a),
		newPaperIDCommand(a, "toggle", "Flip a paper between done and to-do"),
		newPaperIDCommand(a, "remove", "Remove a paper"),
	)
	return cmd
}

func newPaperAddCommand(a *app) *cobra.Command {
	var (
		in    services.PaperInput
		score float64
	)
	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Add a past paper; giving a score marks it done",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in.Name = strings.Join(args, " ")
			if cmd.Flags().Changed("score") {
				in.Score = &score
			}
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			p, err := svc.AddPastPaper(ctx, in)
			if err != nil {
				return err
			}
			return a.printPapers([]models.PastPaper{*p})
		},
	}
	cmd.Flags().StringVar(&in.SubjectID, "subject", "", "subject id")
	cmd.Flags().Float64Var(&score, "score", 0, "percentage score 0-100")
	_ = cmd.MarkFlagRequired("subject")
	return cmd
}

func newPaperListCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List past papers",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			papers, err := svc.ListPastPapers(ctx)
			if err != nil {
				return err
			}
			return a.printPapers(papers)
		},
	}
}

func newPaperIDCommand(a *app, action, short string) *cobra.Command {
	return &cobra.Command{
		Use:   action + " <id>",
		Short: short,
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			svc, err := a.planner(ctx)
			if err != nil {
				return err
			}
			if action == "remove" {
				if err := svc.RemovePastPaper(ctx, args[0]); err != nil {
					return err
				}
				fprintf(a.out, "removed %s\n", args[0])
				return nil
			}
			p, err := svc.TogglePastPaper(ctx, args[0])
			if err != nil {
				return err
			}
			return a.printPapers([]models.PastPaper{*p})
		},
	}
}

func (a *app) printPapers(papers []models.PastPaper) error {
	if a.jsonOut {
		return a.printJSON(papers)
	}
	return a.table([]string{"ID", "SUBJECT", "NAME", "SCORE", "DONE"}, func(row func(...any)) {
		for _, p := range papers {
			score := "-"
			if p.Score != nil {
				score = fmt.Sprintf("%g%%", *p.Score)
			}
			row(p.ID, p.SubjectID, p.Name, score, p.Completed)
		}
	})
}

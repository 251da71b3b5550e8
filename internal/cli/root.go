package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/vytor/revplan/internal/config"
	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/services"
)

// app carries what every command needs. The environment is opened lazily so
// that --help never touches the store.
type app struct {
	cfg      config.Config
	out      io.Writer
	jsonOut  bool
	logLevel string

	open func(ctx context.Context, cfg config.Config) (*env, error)
	env  *env
}

// Option customises the command tree.
type Option func(*app)

// WithPlanner runs every command against svc instead of the configured store.
func WithPlanner(svc services.PlannerService) Option {
	return func(a *app) {
		a.open = func(context.Context, config.Config) (*env, error) {
			return &env{planner: svc}, nil
		}
	}
}

// WithOutput redirects command output.
func WithOutput(w io.Writer) Option {
	return func(a *app) { a.out = w }
}

// WithConfig replaces the environment-derived configuration.
func WithConfig(cfg config.Config) Option {
	return func(a *app) { a.cfg = cfg }
}

// NewRootCommand builds the revplan command tree.
func NewRootCommand(opts ...Option) *cobra.Command {
	a := &app{out: os.Stdout, open: openEnv}
	loaded := false
	for _, opt := range opts {
		opt(a)
	}
	if a.cfg == (config.Config{}) {
		a.cfg = config.Load()
		loaded = true
	}

	root := &cobra.Command{
		Use:   "revplan",
		Short: "Adaptive revision planner",
		Long: `revplan builds a day-by-day study plan from per-topic mastery, test
deadlines and spacing rules, and adapts it as sessions are completed or missed.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := a.cfg.LogLevel
			if cmd.Flags().Changed("log-level") {
				level = a.logLevel
			}
			logger.SetDefault(logger.New(
				logger.WithLevel(logger.ParseLevel(level)),
				logger.WithOutput(os.Stderr),
				logger.WithColors(true),
			))
			if loaded {
				return a.cfg.Validate()
			}
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			return a.close()
		},
	}

	root.PersistentFlags().BoolVar(&a.jsonOut, "json", false, "print JSON instead of tables")
	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "override LOG_LEVEL (DEBUG, INFO, WARN, ERROR)")

	root.AddCommand(
		newServeCommand(a),
		newPlanCommand(a),
		newTodayCommand(a),
		newCompleteCommand(a),
		newSweepCommand(a),
		newMetricsCommand(a),
		newScoreCommand(a),
		newSubjectsCommand(a),
		newSettingsCommand(a),
		newDeadlineCommand(a),
		newItemCommand(a),
		newPaperCommand(a),
		newResetCommand(a),
	)
	return root
}

// Execute runs the command tree and returns the process exit code.
func Execute() int {
	root := NewRootCommand()
	if err := root.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		return 1
	}
	return 0
}

func (a *app) planner(ctx context.Context) (services.PlannerService, error) {
	if a.env == nil {
		e, err := a.open(ctx, a.cfg)
		if err != nil {
			return nil, err
		}
		a.env = e
	}
	return a.env.planner, nil
}

func (a *app) close() error {
	if a.env == nil || a.env.close == nil {
		return nil
	}
	err := a.env.close()
	a.env = nil
	return err
}

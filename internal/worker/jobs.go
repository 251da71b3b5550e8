package worker

import (
	"context"

	"github.com/vytor/revplan/internal/logger"
)

// Roller rolls the study plan over to a new day. It is satisfied by
// services.PlannerService and declared here to keep worker free of the
// services import.
type Roller interface {
	Rollover(ctx context.Context) (bool, error)
}

// RolloverJob sweeps missed sessions and regenerates the plan once the
// calendar day has changed.
type RolloverJob struct {
	Planner Roller
}

func (j *RolloverJob) Name() string { return "rollover" }

func (j *RolloverJob) Run(ctx context.Context) error {
	rolled, err := j.Planner.Rollover(ctx)
	if err != nil {
		return err
	}
	if rolled {
		logger.FromContext(ctx).Info("plan rolled over to a new day")
	}
	return nil
}

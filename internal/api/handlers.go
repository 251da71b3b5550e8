package api

import (
	"context"

	"github.com/vytor/revplan/internal/services"
)

type Server struct {
	Planner services.PlannerService
	// Ready reports whether the state store is reachable. Nil means always ready.
	Ready func(ctx context.Context) error
}

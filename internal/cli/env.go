package cli

import (
	"context"
	"fmt"

	"github.com/vytor/revplan/internal/catalog"
	"github.com/vytor/revplan/internal/clock"
	"github.com/vytor/revplan/internal/config"
	"github.com/vytor/revplan/internal/db"
	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/models"
	"github.com/vytor/revplan/internal/repository"
	"github.com/vytor/revplan/internal/repository/redis"
	"github.com/vytor/revplan/internal/repository/sqlite"
	"github.com/vytor/revplan/internal/services"
)

// env is an opened state store and the planner running over it.
type env struct {
	planner services.PlannerService
	ready   func(ctx context.Context) error
	close   func() error
}

func openEnv(ctx context.Context, cfg config.Config) (*env, error) {
	log := logger.FromContext(ctx).WithPrefix("cli")

	loc, err := cfg.Location()
	if err != nil {
		return nil, fmt.Errorf("timezone: %w", err)
	}

	var (
		kv    repository.KVStore
		ready func(ctx context.Context) error
		closer func() error
	)
	switch cfg.StoreBackend {
	case config.BackendRedis:
		store, err := redis.Open(ctx, redis.Options{Addr: cfg.RedisAddr, DB: cfg.RedisDB, Prefix: cfg.RedisPrefix})
		if err != nil {
			return nil, err
		}
		kv, ready, closer = store, store.Ping, store.Close
	default:
		database, err := db.Open(cfg.DBPath)
		if err != nil {
			return nil, err
		}
		kv, ready, closer = sqlite.NewKVStore(database.DB), database.PingContext, database.Close
	}
	log.Debug("state store: %s", cfg.StoreBackend)

	seed := func() []models.Subject { return catalog.Load(cfg.CatalogPath) }
	repo := repository.NewStateRepository(kv, seed)
	return &env{
		planner: services.NewPlannerService(repo, clock.System(loc)),
		ready:   ready,
		close:   closer,
	}, nil
}

package cli

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/vytor/revplan/internal/api"
	"github.com/vytor/revplan/internal/logger"
	"github.com/vytor/revplan/internal/worker"
)

const shutdownTimeout = 30 * time.Second

func newServeCommand(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API and the day rollover loop",
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr == "" {
				addr = a.cfg.Addr
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return a.serve(ctx, addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default ADDR)")
	return cmd
}

func (a *app) serve(ctx context.Context, addr string) error {
	log := logger.Default()
	log.Info("===========================================")
	log.Info("revplan server starting")
	log.Info("===========================================")
	log.Debug("addr=%s", addr)
	log.Debug("store_backend=%s", a.cfg.StoreBackend)
	log.Debug("timezone=%s", a.cfg.Timezone)
	log.Debug("rollover_interval=%v", a.cfg.RolloverInterval())

	svc, err := a.planner(ctx)
	if err != nil {
		return err
	}

	srv := &api.Server{Planner: svc, Ready: a.env.ready}
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 45 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// One worker: rollover jobs must never overlap.
	pool := worker.NewPool(1, 1)
	pool.Start(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("HTTP server listening on %s", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return worker.Every(gctx, pool, a.cfg.RolloverInterval(), func() worker.Job {
			return &worker.RolloverJob{Planner: svc}
		})
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Debug("shutting down HTTP server")
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error("HTTP server shutdown error: %v", err)
		}
		log.Debug("stopping rollover pool")
		pool.Stop()
		return nil
	})

	err = g.Wait()
	log.Info("revplan server stopped")
	return err
}

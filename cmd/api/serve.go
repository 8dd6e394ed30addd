package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"pet-guardianship/internal/platform/config"
	"pet-guardianship/internal/platform/logger"
	"pet-guardianship/internal/platform/tracing"
	"pet-guardianship/internal/router"
)

const shutdownTimeout = 10 * time.Second

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:           "serve",
		Short:         "Levanta el server HTTP",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context())
		},
	}
}

func runServe(parent context.Context) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.NewFromConfig(cfg.LogLevel, cfg.LogFormat, cfg.AppName)
	ctx = logger.WithContext(ctx, log)
	for _, w := range cfg.Warnings() {
		log.Warn(w, map[string]any{"db_driver": cfg.DBDriver})
	}

	shutdownTracing, err := tracing.Setup(ctx, cfg.OTLPEndpoint, cfg.AppName)
	if err != nil {
		return err
	}
	defer func() {
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := shutdownTracing(sctx); err != nil {
			log.Warn("tracing shutdown failed", map[string]any{"error": err.Error()})
		}
	}()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeStore() }()
	if store != nil {
		if err := store.Migrate(ctx); err != nil {
			return err
		}
	}

	c, closeCache, err := openCache(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = closeCache() }()

	srv := &http.Server{
		Addr: cfg.Addr(),
		Handler: router.NewRouter(router.Options{
			Config: cfg,
			Store:  store,
			Cache:  c,
			Logger: log,
		}),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting server", map[string]any{
			"addr":      srv.Addr,
			"db_driver": cfg.DBDriver,
			"redis":     cfg.RedisURL != "",
		})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		log.Info("shutting down", nil)
		return srv.Shutdown(sctx)
	})

	return g.Wait()
}

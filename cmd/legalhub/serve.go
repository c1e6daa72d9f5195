package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/config"
	"github.com/jask/legalhub/internal/database"
	"github.com/jask/legalhub/internal/database/repository"
	"github.com/jask/legalhub/internal/logging"
	"github.com/jask/legalhub/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		addr string
		mock bool
		seed bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the development client registry API",
		Long: `Serve GET and POST /clients/ backed by sqlite, or by memory with --mock.

The dashboard reaches it at http://localhost:8000 when api.origin points at localhost.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("mock") {
				a.cfg.Server.Mock = mock
			}

			logger, err := logging.New(logging.Options{Level: a.cfg.Log.Level, Path: "stderr"})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			store, closeStore, err := openStore(ctx, a.cfg.Server, seed, logger)
			if err != nil {
				return err
			}
			defer closeStore()

			srv := server.New(store, logger.Named("server"), server.Options{RatePerMinute: a.cfg.Server.RatePerMinute})
			return srv.Run(ctx, a.cfg.Server.Addr)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	cmd.Flags().BoolVar(&mock, "mock", false, "keep clients in memory instead of sqlite")
	cmd.Flags().BoolVar(&seed, "seed", false, "load demo clients into an empty store")
	return cmd
}

func openStore(ctx context.Context, cfg config.ServerConfig, seed bool, logger *zap.Logger) (server.Store, func(), error) {
	if cfg.Mock {
		logger.Info("using in-memory store")
		if !seed {
			return server.NewMemoryStore(), func() {}, nil
		}
		demo := make([]repository.Client, 0, len(database.DemoClients))
		now := database.Now()
		for _, c := range database.DemoClients {
			c.ID = uuid.NewString()
			c.CreatedBy = "seed"
			c.CreatedAt = now
			demo = append(demo, c)
		}
		return server.NewMemoryStore(demo...), func() {}, nil
	}

	db, err := database.Open(cfg.DatabasePath)
	if err != nil {
		return nil, nil, err
	}
	closeDB := func() { _ = db.Close() }
	if err := database.RunMigrations(db); err != nil {
		closeDB()
		return nil, nil, err
	}
	if seed {
		if err := database.SeedDemo(ctx, db, "seed"); err != nil {
			closeDB()
			return nil, nil, fmt.Errorf("seed demo clients: %w", err)
		}
	}
	repo := repository.NewClientRepo(db)
	n, err := repo.Count(ctx)
	if err != nil {
		closeDB()
		return nil, nil, err
	}
	logger.Info("using sqlite store", zap.String("path", cfg.DatabasePath), zap.Int("clients", n))
	return repo, closeDB, nil
}

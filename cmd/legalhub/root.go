package main

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/config"
	"github.com/jask/legalhub/internal/logging"
	"github.com/jask/legalhub/internal/registry"
	"github.com/jask/legalhub/internal/tui"
)

// app is shared by every command once configuration is loaded.
type app struct {
	cfg config.Config

	userFlag string
	baseFlag string
}

func (a *app) caller() registry.Caller {
	return registry.Caller{UserID: a.cfg.Session.UserID}
}

func (a *app) registryClient(logger *zap.Logger) *registry.Client {
	return registry.NewClient(a.cfg.API.ResolveBaseURL(), a.cfg.API.Timeout, logger.Named("registry"))
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:           "legalhub",
		Short:         "Legal AI Hub admin dashboard",
		Long:          "Terminal dashboard for the firm's client registry.\n\nRun without a subcommand to open the dashboard.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if a.userFlag != "" {
				cfg.Session.UserID = strings.TrimSpace(a.userFlag)
			}
			if a.baseFlag != "" {
				cfg.API.BaseURL = a.baseFlag
			}
			a.cfg = cfg
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDashboard(cmd.Context(), a)
		},
	}
	root.PersistentFlags().StringVar(&a.userFlag, "user", "", "user id sent as X-User-ID (overrides session.user_id)")
	root.PersistentFlags().StringVar(&a.baseFlag, "base-url", "", "registry API base URL (overrides api.base_url)")

	root.AddCommand(newServeCmd(a), newClientsCmd(a), newConfigCmd(a))
	return root
}

func runDashboard(ctx context.Context, a *app) error {
	logger, err := logging.New(logging.Options{Level: a.cfg.Log.Level, Path: a.cfg.Log.Path})
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	start, err := tui.ParseView(a.cfg.UI.StartView)
	if err != nil {
		return fmt.Errorf("ui.start_view: %w", err)
	}
	loc, err := loadLocation(a.cfg.UI.Timezone)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Info("dashboard starting",
		zap.String("base_url", a.cfg.API.ResolveBaseURL()),
		zap.String("user", a.cfg.Session.UserID))

	shell := tui.NewShell(ctx, tui.Options{
		Registry:   a.registryClient(logger),
		Caller:     a.caller(),
		Timeout:    a.cfg.API.Timeout,
		StartView:  start,
		DateFormat: a.cfg.UI.DateFormat,
		Location:   loc,
		Logger:     logger,
	})
	if _, err := tea.NewProgram(shell, tea.WithAltScreen(), tea.WithContext(ctx)).Run(); err != nil {
		return fmt.Errorf("run dashboard: %w", err)
	}
	return nil
}

func loadLocation(name string) (*time.Location, error) {
	switch strings.TrimSpace(name) {
	case "", "Local", "local":
		return time.Local, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("ui.timezone: %w", err)
	}
	return loc, nil
}

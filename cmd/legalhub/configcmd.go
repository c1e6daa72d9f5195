package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jask/legalhub/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect or write the configuration file",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the effective settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "api base url:  %s\n", a.cfg.API.ResolveBaseURL())
			fmt.Fprintf(out, "api timeout:   %s\n", a.cfg.API.Timeout)
			fmt.Fprintf(out, "user id:       %s\n", a.cfg.Session.UserID)
			fmt.Fprintf(out, "start view:    %s\n", a.cfg.UI.StartView)
			fmt.Fprintf(out, "log file:      %s\n", a.cfg.Log.Path)
			fmt.Fprintf(out, "server addr:   %s\n", a.cfg.Server.Addr)
			fmt.Fprintf(out, "database:      %s\n", a.cfg.Server.DatabasePath)
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Write the effective settings to the config file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := config.Save(a.cfg); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "config written")
			return nil
		},
	})
	return cmd
}

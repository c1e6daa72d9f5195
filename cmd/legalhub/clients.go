package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jask/legalhub/internal/logging"
	"github.com/jask/legalhub/internal/registry"
)

func newClientsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "clients",
		Short: "List or add clients without opening the dashboard",
	}
	cmd.AddCommand(newClientsListCmd(a), newClientsAddCmd(a))
	return cmd
}

func cliLogger(a *app) (*zap.Logger, error) {
	return logging.New(logging.Options{Level: "warn", Path: a.cfg.Log.Path})
}

func newClientsListCmd(a *app) *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "list",
		Short: "Print the client registry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger, err := cliLogger(a)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			records, err := a.registryClient(logger).List(cmd.Context(), a.caller())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(records)
			}
			return printClients(cmd.OutOrStdout(), records, a.cfg.UI.DateFormat)
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func printClients(w io.Writer, records []registry.ClientRecord, dateFormat string) error {
	if len(records) == 0 {
		_, err := fmt.Fprintln(w, "No clients yet.")
		return err
	}
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{string(r.ID), r.FullName, r.Email, r.Phone, r.CreatedAt.Local().Format(dateFormat)})
	}
	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("ID", "NAME", "EMAIL", "PHONE", "ADDED").
		Rows(rows...)
	_, err := fmt.Fprintln(w, t.String())
	return err
}

func newClientsAddCmd(a *app) *cobra.Command {
	var d registry.Draft
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Create a client",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if missing := d.Missing(); len(missing) > 0 {
				return fmt.Errorf("required: %s", strings.Join(missing, ", "))
			}
			logger, err := cliLogger(a)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			rec, err := a.registryClient(logger).Create(cmd.Context(), a.caller(), d)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "created client %s (%s)\n", rec.ID, rec.FullName)
			return err
		},
	}
	cmd.Flags().StringVar(&d.FullName, "name", "", "full name")
	cmd.Flags().StringVar(&d.Email, "email", "", "email address")
	cmd.Flags().StringVar(&d.Phone, "phone", "", "phone number")
	return cmd
}

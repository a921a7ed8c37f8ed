package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Strob0t/folio/internal/adapter/postgres"
)

func newMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withMigrator(a, func(m *postgres.Migrator) error {
				n, err := m.Down(cmd.Context(), steps)
				if err != nil {
					return err
				}
				fmt.Fprintf(a.stdout, "rolled back %d migration(s)\n", n)
				return nil
			})
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(a, func(m *postgres.Migrator) error {
					n, err := m.Up(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintf(a.stdout, "applied %d migration(s)\n", n)
					return nil
				})
			},
		},
		down,
		&cobra.Command{
			Use:   "version",
			Short: "Print the current schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return withMigrator(a, func(m *postgres.Migrator) error {
					v, err := m.Version(cmd.Context())
					if err != nil {
						return err
					}
					fmt.Fprintln(a.stdout, v)
					return nil
				})
			},
		},
	)
	return cmd
}

func withMigrator(a *app, fn func(*postgres.Migrator) error) error {
	m, err := postgres.NewMigrator(a.cfg.Postgres.DSN)
	if err != nil {
		return err
	}
	defer func() { _ = m.Close() }()
	return fn(m)
}

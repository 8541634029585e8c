package main

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/aanand-mishra/campus-api/internal/storage/sqlite"
)

func newMigrateCmd(load loadFunc) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the database schema",
	}

	// run opens the configured database without migrating it and hands
	// the store to fn.
	run := func(fn func(cmd *cobra.Command, store *sqlite.Store) error) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, _ []string) error {
			cfg, log, err := load()
			if err != nil {
				return err
			}

			store, err := sqlite.Open(cmd.Context(), cfg.StoragePath, log)
			if err != nil {
				return err
			}
			defer store.Close()

			return fn(cmd, store)
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, store *sqlite.Store) error {
				return wrap("migrate up", store.Migrate(cmd.Context()))
			}),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Roll back the most recent migration",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, store *sqlite.Store) error {
				return wrap("migrate down", store.Rollback(cmd.Context()))
			}),
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Roll back every migration, dropping all tables",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, store *sqlite.Store) error {
				return wrap("migrate reset", store.Reset(cmd.Context()))
			}),
		},
		&cobra.Command{
			Use:   "status",
			Short: "List migrations and whether they are applied",
			Args:  cobra.NoArgs,
			RunE: run(func(cmd *cobra.Command, store *sqlite.Store) error {
				statuses, err := store.Status(cmd.Context())
				if err != nil {
					return err
				}

				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "VERSION\tSTATE\tAPPLIED AT\tFILE")
				for _, st := range statuses {
					applied := "-"
					if !st.AppliedAt.IsZero() {
						applied = st.AppliedAt.Format(time.RFC3339)
					}
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", st.Source.Version, st.State, applied, st.Source.Path)
				}
				return tw.Flush()
			}),
		},
	)
	return cmd
}

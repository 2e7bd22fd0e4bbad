package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"lass/internal/logging"
	"lass/internal/store"
)

func newDBCommand(ctx *commandContext) *cobra.Command {
	dbCmd := &cobra.Command{
		Use:   "db",
		Short: "Schedule database maintenance",
	}
	dbCmd.AddCommand(newDBMigrateCommand(ctx))
	dbCmd.AddCommand(newDBSeedCommand(ctx))
	return dbCmd
}

func newDBMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the database schema if missing and check its version",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			st, err := store.OpenWriter(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			version, err := st.SchemaVersion(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at schema version %d\n", st.Path(), version)
			return nil
		},
	}
}

func newDBSeedCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "seed <fixture.toml>",
		Short: "Load station data from a TOML fixture",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			fixture, err := store.LoadFixture(args[0])
			if err != nil {
				return err
			}

			st, err := store.OpenWriter(cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Seed(cmd.Context(), fixture); err != nil {
				return err
			}
			ctx.ensureLogger().Info("database seeded",
				logging.String(logging.FieldEventType, "db_seeded"),
				logging.String("fixture", args[0]),
				logging.Int("timeslots", len(fixture.Timeslots)),
				logging.Int("metadata", len(fixture.Metadata)),
			)
			fmt.Fprintf(cmd.OutOrStdout(), "Seeded %s: %d shows, %d timeslots, %d metadata items, %d credits\n",
				st.Path(), len(fixture.Shows), len(fixture.Timeslots), len(fixture.Metadata), len(fixture.Credits))
			return nil
		},
	}
}

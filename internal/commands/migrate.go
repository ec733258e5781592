package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"flux/internal/storage"
)

func newMigrateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the SQLite schema",
	}

	run := func(dir storage.Direction) func(*cobra.Command, []string) error {
		return func(cmd *cobra.Command, args []string) error {
			db := opts.database()
			if err := ensureDir(db); err != nil {
				return fmt.Errorf("creating database directory: %w", err)
			}
			if err := storage.RunMigrations(db, dir); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "migrations %s applied to %s\n", dir, db)
			return nil
		}
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply every pending migration",
			Args:  cobra.NoArgs,
			RunE:  run(storage.Up),
		},
		&cobra.Command{
			Use:   "down",
			Short: "Revert every migration",
			Args:  cobra.NoArgs,
			RunE:  run(storage.Down),
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				db := opts.database()
				if err := ensureDir(db); err != nil {
					return fmt.Errorf("creating database directory: %w", err)
				}
				version, dirty, err := storage.MigrationVersion(db)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case version == 0:
					fmt.Fprintln(out, "no migrations applied")
				case dirty:
					fmt.Fprintf(out, "version %d (dirty)\n", version)
				default:
					fmt.Fprintf(out, "version %d\n", version)
				}
				return nil
			},
		},
	)
	return cmd
}

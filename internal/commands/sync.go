package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"flux/internal/cli"
	"flux/internal/config"
	"flux/internal/worker"
)

func newSyncCommand(opts *rootOptions) *cobra.Command {
	var userID string

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Re-export every transaction of a user to the sheets mirror",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := opts.logger(cmd)

			repo, err := opts.openRepository(cmd)
			if err != nil {
				return fmt.Errorf("opening database: %w", err)
			}
			defer repo.Close()

			exporter, err := cli.NewExporter(cmd.Context(), logger, config.Load())
			if err != nil {
				return err
			}

			synced, err := worker.NewSyncWorker(repo, exporter, logger).Resync(cmd.Context(), userID)
			fmt.Fprintf(cmd.OutOrStdout(), "synced %d transactions for %s\n", synced, userID)
			return err
		},
	}

	cmd.Flags().StringVar(&userID, "user", "", "ledger owner id (required)")
	_ = cmd.MarkFlagRequired("user")
	return cmd
}

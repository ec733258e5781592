// Package commands implements fluxctl, the operator CLI of the ledger.
package commands

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"flux/internal/config"
	"flux/internal/log"
	"flux/internal/storage"
)

// Version is stamped at build time.
var Version = "dev"

type rootOptions struct {
	dbPath   string
	logLevel string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "fluxctl",
		Short:   "Operate the flux household ledger",
		Version: Version,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.dbPath, "db", "", "SQLite database path (default $SQLITE_DB_PATH)")
	rootCmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level: debug, info, warn, error")

	rootCmd.AddCommand(
		newPreviewCommand(),
		newSummaryCommand(opts),
		newMigrateCommand(opts),
		newSyncCommand(opts),
	)

	return rootCmd
}

func (o *rootOptions) logger(cmd *cobra.Command) *log.Logger {
	return log.New(log.Config{
		Level:     log.ParseLevel(o.logLevel),
		Component: log.ComponentCLI,
		Output:    cmd.ErrOrStderr(),
	})
}

func (o *rootOptions) database() string {
	if o.dbPath != "" {
		return o.dbPath
	}
	return config.Load().SQLiteDBPath
}

func (o *rootOptions) openRepository(cmd *cobra.Command) (*storage.SQLiteRepository, error) {
	return storage.NewSQLiteRepository(o.database(), o.logger(cmd))
}

func ensureDir(path string) error {
	return os.MkdirAll(filepath.Dir(path), 0o755)
}

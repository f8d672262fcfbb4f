package main

import (
	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/serene-minds/dashboard/storage/database"
)

// Migrations are embedded in the binary, so commands that rewrite files are refused.
var errMigrationsEmbedded = errors.New("migrations are embedded in the binary and cannot be renamed")

func (cli *commandLine) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate COMMAND [ARGS...]",
		Short: "Run a goose command against the sessions database",
		Long: `Run a goose command against the sessions database.

Commands:
  up                   migrate to the most recent version
  up-by-one            migrate up by a single version
  up-to VERSION        migrate up to VERSION
  down                 roll back by one version
  down-to VERSION      roll back to VERSION
  redo                 re-run the latest migration
  reset                roll back all migrations
  status               print the status of all migrations
  version              print the current version`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if args[0] == "fix" {
				return errMigrationsEmbedded
			}
			db, err := cli.database()
			if err != nil {
				return err
			}
			if err = database.PrepareMigrations(db); err != nil {
				return err
			}
			return gooseRunFunc(cmd.Context(), args[0], db.DB, database.MigrationsDir, args[1:]...)
		},
	}
}

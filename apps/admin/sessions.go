package main

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"

	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/storage/database/sqlstore"
)

func (cli *commandLine) sessionStore() (*sqlstore.Store, error) {
	db, err := cli.database()
	if err != nil {
		return nil, err
	}
	return sqlstore.New(db, session.NewCodec(cli.conf.SecretKey)), nil
}

func (cli *commandLine) sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Inspect the sessions persisted in the database",
	}

	list := &cobra.Command{
		Use:   "list",
		Short: "List persisted sessions, most recent first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := cli.sessionStore()
			if err != nil {
				return err
			}
			sums, err := store.List(cmd.Context())
			if err != nil {
				return err
			}
			t := newTable("SID", "USER", "EMAIL", "ROLE", "UPDATED")
			for _, s := range sums {
				t.Row(s.SID, s.UserName, s.UserEmail, s.UserRole, s.UpdatedAt.Format(time.RFC3339))
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), t.String())
			return nil
		},
	}

	var olderThan time.Duration
	purge := &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions not updated for a while",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return errors.New("--older-than must be positive")
			}
			store, err := cli.sessionStore()
			if err != nil {
				return err
			}
			n, err := store.Purge(cmd.Context(), time.Now().Add(-olderThan))
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(cmd.OutOrStdout(), "purged %d session(s)\n", n)
			return nil
		},
	}
	purge.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "purge sessions idle for longer than this")

	cmd.AddCommand(list, purge)
	return cmd
}

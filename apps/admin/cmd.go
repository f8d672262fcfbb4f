package main

import (
	"context"

	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/route"
	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/services/authapi"
	"github.com/serene-minds/dashboard/storage/filestore"
)

var (
	readPasswordFunc = term.ReadPassword // mockable
	gooseRunFunc     = goose.RunContext  // mockable
)

// cliSessionKey is the storage key of the session the CLI logs into.
const cliSessionKey = "cli"

type authenticator interface {
	Login(ctx context.Context, email, password string) (authapi.Result, error)
}

type commandLine struct {
	conf   *core.Config
	logger core.Logger
	auth   authenticator
	openDB func(core.DatabaseConfig) (*sqlx.DB, error)

	db *sqlx.DB
}

func (cli *commandLine) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "admin",
		Short:         "Serene Minds dashboard administration",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.AddCommand(
		cli.routesCmd(),
		cli.resolveCmd(),
		cli.loginCmd(),
		cli.logoutCmd(),
		cli.whoamiCmd(),
		cli.migrateCmd(),
		cli.sessionsCmd(),
	)
	return root
}

func (cli *commandLine) guard() (*route.Guard, error) {
	table, err := route.DefaultTable()
	if err != nil {
		return nil, err
	}
	return route.NewGuard(table, route.OptionsFromConfig(cli.conf.Session)), nil
}

// holder returns the initialized file-backed session of the CLI.
func (cli *commandLine) holder(ctx context.Context) (*session.Holder, error) {
	store, err := filestore.New(cli.conf.Session.Dir, session.NewCodec(cli.conf.SecretKey))
	if err != nil {
		return nil, err
	}
	h := session.NewHolder(store, cliSessionKey, cli.logger)
	h.Initialize(ctx)
	return h, nil
}

// database opens the database on first use.
func (cli *commandLine) database() (*sqlx.DB, error) {
	if cli.db == nil {
		db, err := cli.openDB(cli.conf.Database)
		if err != nil {
			return nil, err
		}
		cli.db = db
	}
	return cli.db, nil
}

func (cli *commandLine) close() error {
	if cli.db == nil {
		return nil
	}
	err := cli.db.Close()
	cli.db = nil
	return err
}

// Package database opens the SQL database holding persisted sessions and migrates its schema.
package database

import (
	"context"
	"database/sql"
	"embed"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"github.com/serene-minds/dashboard/core"
)

const (
	EnginePostgres = "postgres"
	EngineSQLite   = "sqlite"

	MigrationsDir = "migrations"
)

//go:embed migrations/*.sql
var migrations embed.FS

// dsn returns the driver name and data source of conf.
func dsn(conf core.DatabaseConfig) (string, string, error) {
	switch conf.Engine {
	case EnginePostgres:
		sslMode := "require"
		if conf.DisableTLS {
			sslMode = "disable"
		}
		q := make(url.Values)
		q.Set("sslmode", sslMode)
		q.Set("timezone", "utc")

		u := url.URL{
			Scheme:   conf.Engine,
			User:     url.UserPassword(conf.User, conf.Password),
			Host:     conf.Address(),
			Path:     conf.Name,
			RawQuery: q.Encode(),
		}
		return "postgres", u.String(), nil
	case EngineSQLite, "":
		path := conf.Path
		if path == "" {
			path = "serene.db"
		}
		return "sqlite", "file:" + path + "?_pragma=busy_timeout(5000)&_pragma=foreign_keys(1)", nil
	}
	return "", "", errors.Errorf("unsupported database engine %q", conf.Engine)
}

// Open connects to the configured database and waits for it to answer.
func Open(conf core.DatabaseConfig) (*sqlx.DB, error) {
	driver, source, err := dsn(conf)
	if err != nil {
		return nil, err
	}
	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, errors.Wrap(err, "opening database")
	}
	if driver == "sqlite" {
		// sqlite allows a single writer
		db.SetMaxOpenConns(1)
	}
	if err = ping(db.DB); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// ping waits for the database to be ready. Waits 100ms longer between each attempt.
func ping(db *sql.DB) error {
	var err error
	maxAttempts := 30
	for attempts := 1; attempts <= maxAttempts; attempts++ {
		err = db.Ping()
		if err == nil {
			break
		}
		time.Sleep(time.Duration(attempts) * 100 * time.Millisecond)
	}

	if err != nil {
		return errors.Wrap(err, "DB ping timeout")
	}
	return nil
}

// PrepareMigrations points goose at the embedded migrations for db's dialect.
func PrepareMigrations(db *sqlx.DB) error {
	goose.SetBaseFS(migrations)
	dialect := db.DriverName()
	if dialect == "sqlite" {
		dialect = "sqlite3"
	}
	if err := goose.SetDialect(dialect); err != nil {
		return errors.Wrap(err, "setting migration dialect")
	}
	return nil
}

// Migrate applies every pending migration.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	if err := PrepareMigrations(db); err != nil {
		return err
	}
	if err := goose.UpContext(ctx, db.DB, MigrationsDir); err != nil {
		return errors.Wrap(err, "migrating database")
	}
	return nil
}

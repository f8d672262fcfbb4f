// Package storage opens the persisted session storage selected by configuration.
package storage

import (
	"context"

	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/session"
	"github.com/serene-minds/dashboard/storage/database"
	"github.com/serene-minds/dashboard/storage/database/sqlstore"
	"github.com/serene-minds/dashboard/storage/filestore"
	"github.com/serene-minds/dashboard/storage/redisstore"
)

// Store kinds.
const (
	Memory = "memory"
	File   = "file"
	SQL    = "sql"
	Redis  = "redis"
)

// Open returns the storage named by conf.Session.Store and a func releasing its resources.
func Open(ctx context.Context, conf *core.Config) (session.Storage, func() error, error) {
	nop := func() error { return nil }
	codec := session.NewCodec(conf.SecretKey)

	switch conf.Session.Store {
	case Memory, "":
		return session.NewMemoryStorage(), nop, nil

	case File:
		store, err := filestore.New(conf.Session.Dir, codec)
		if err != nil {
			return nil, nil, err
		}
		return store, nop, nil

	case SQL:
		db, err := database.Open(conf.Database)
		if err != nil {
			return nil, nil, err
		}
		if err = database.Migrate(ctx, db); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return sqlstore.New(db, codec), db.Close, nil

	case Redis:
		client, err := redisstore.NewClient(ctx, conf.Redis)
		if err != nil {
			return nil, nil, err
		}
		return redisstore.New(client, codec, conf.Redis.KeyPrefix, conf.Session.CookieTTL), client.Close, nil
	}
	return nil, nil, errors.Errorf("unknown session store %q", conf.Session.Store)
}

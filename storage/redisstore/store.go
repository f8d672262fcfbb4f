// Package redisstore persists sealed session records in Redis.
package redisstore

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/session"
)

type Store struct {
	client *redis.Client
	codec  *session.Codec
	prefix string
	ttl    time.Duration // 0 keeps records until logout
}

var _ session.Storage = (*Store)(nil)

// NewClient connects to Redis and checks the connection.
func NewClient(ctx context.Context, conf core.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     conf.Addr,
		Password: conf.Password,
		DB:       conf.DB,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrap(err, "redis ping failed")
	}
	return client, nil
}

func New(client *redis.Client, codec *session.Codec, prefix string, ttl time.Duration) *Store {
	return &Store{client: client, codec: codec, prefix: prefix, ttl: ttl}
}

func (s *Store) key(key string) string { return s.prefix + key }

func (s *Store) Load(ctx context.Context, key string) (session.Record, error) {
	data, err := s.client.Get(ctx, s.key(key)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return session.Record{}, session.ErrNoRecord
		}
		return session.Record{}, errors.Wrap(err, "reading session")
	}
	return s.codec.Open(data)
}

func (s *Store) Save(ctx context.Context, key string, rec session.Record) error {
	sealed, err := s.codec.Seal(rec)
	if err != nil {
		return err
	}
	if err = s.client.Set(ctx, s.key(key), sealed, s.ttl).Err(); err != nil {
		return errors.Wrap(err, "writing session")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, s.key(key)).Err(); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

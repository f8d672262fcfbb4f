// Package filestore persists each session record as a sealed file in a directory.
package filestore

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/serene-minds/dashboard/core/session"
)

const fileExt = ".session"

type Store struct {
	dir   string
	codec *session.Codec
}

var _ session.Storage = (*Store)(nil)

// New creates dir if needed. Files are readable by the current user only.
func New(dir string, codec *session.Codec) (*Store, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrapf(err, "creating %s", dir)
	}
	return &Store{dir: dir, codec: codec}, nil
}

// path hashes key so any session id maps to a safe file name.
func (s *Store) path(key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(s.dir, hex.EncodeToString(sum[:16])+fileExt)
}

func (s *Store) Load(_ context.Context, key string) (session.Record, error) {
	data, err := os.ReadFile(s.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			return session.Record{}, session.ErrNoRecord
		}
		return session.Record{}, errors.Wrap(err, "reading session file")
	}
	return s.codec.Open(data)
}

// Save writes to a temporary file first so a crash never leaves a half-written record.
func (s *Store) Save(_ context.Context, key string, rec session.Record) error {
	sealed, err := s.codec.Seal(rec)
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(err, "creating session file")
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	if _, err = tmp.Write(sealed); err != nil {
		_ = tmp.Close()
		return errors.Wrap(err, "writing session file")
	}
	if err = tmp.Close(); err != nil {
		return errors.Wrap(err, "writing session file")
	}
	if err = os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrap(err, "replacing session file")
	}
	return nil
}

func (s *Store) Delete(_ context.Context, key string) error {
	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(err, "removing session file")
	}
	return nil
}

// Package sqlstore persists session records in the "sessions" SQL table.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/base64"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/serene-minds/dashboard/core/session"
)

// row is a sessions table row. The user columns are for inspection only; payload is authoritative.
type row struct {
	SID       string      `db:"sid"`
	Payload   string      `db:"payload"`
	UserName  null.String `db:"user_name"`
	UserRole  null.String `db:"user_role"`
	UserEmail null.String `db:"user_email"`
	UpdatedAt time.Time   `db:"updated_at"`
}

// Summary describes a persisted session without opening its payload.
type Summary struct {
	SID       string
	UserName  string
	UserRole  string
	UserEmail string
	UpdatedAt time.Time
}

type Store struct {
	db    *sqlx.DB
	codec *session.Codec

	nowFunc func() time.Time
}

var _ session.Storage = (*Store)(nil)

func New(db *sqlx.DB, codec *session.Codec) *Store {
	return &Store{db: db, codec: codec, nowFunc: time.Now}
}

func (s *Store) Load(ctx context.Context, key string) (session.Record, error) {
	var r row
	q := s.db.Rebind(`SELECT sid, payload, user_name, user_role, user_email, updated_at FROM sessions WHERE sid = ?`)
	if err := s.db.GetContext(ctx, &r, q, key); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return session.Record{}, session.ErrNoRecord
		}
		return session.Record{}, errors.Wrap(err, "selecting session")
	}

	sealed, err := base64.StdEncoding.DecodeString(r.Payload)
	if err != nil {
		return session.Record{}, session.ErrCorrupt
	}
	return s.codec.Open(sealed)
}

func (s *Store) Save(ctx context.Context, key string, rec session.Record) error {
	sealed, err := s.codec.Seal(rec)
	if err != nil {
		return err
	}
	r := row{
		SID:       key,
		Payload:   base64.StdEncoding.EncodeToString(sealed),
		UserName:  null.NewString(rec.User.Name, rec.User.Name != ""),
		UserRole:  null.NewString(string(rec.User.Role), rec.User.Role != ""),
		UserEmail: null.NewString(rec.User.Email, rec.User.Email != ""),
		UpdatedAt: s.nowFunc().UTC(),
	}

	q := `INSERT INTO sessions (sid, payload, user_name, user_role, user_email, updated_at)
		VALUES (:sid, :payload, :user_name, :user_role, :user_email, :updated_at)
		ON CONFLICT (sid) DO UPDATE SET
			payload = excluded.payload,
			user_name = excluded.user_name,
			user_role = excluded.user_role,
			user_email = excluded.user_email,
			updated_at = excluded.updated_at`
	if _, err = s.db.NamedExecContext(ctx, q, r); err != nil {
		return errors.Wrap(err, "saving session")
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE sid = ?`), key); err != nil {
		return errors.Wrap(err, "deleting session")
	}
	return nil
}

// List returns the persisted sessions, most recently updated first.
func (s *Store) List(ctx context.Context) ([]Summary, error) {
	var rows []row
	q := `SELECT sid, payload, user_name, user_role, user_email, updated_at FROM sessions ORDER BY updated_at DESC, sid`
	if err := s.db.SelectContext(ctx, &rows, q); err != nil {
		return nil, errors.Wrap(err, "listing sessions")
	}

	summaries := make([]Summary, 0, len(rows))
	for _, r := range rows {
		summaries = append(summaries, Summary{
			SID:       r.SID,
			UserName:  r.UserName.String,
			UserRole:  r.UserRole.String,
			UserEmail: r.UserEmail.String,
			UpdatedAt: r.UpdatedAt,
		})
	}
	return summaries, nil
}

// Purge deletes the sessions not updated since before.
func (s *Store) Purge(ctx context.Context, before time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.db.Rebind(`DELETE FROM sessions WHERE updated_at < ?`), before.UTC())
	if err != nil {
		return 0, errors.Wrap(err, "purging sessions")
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, errors.Wrap(err, "purging sessions")
	}
	return n, nil
}

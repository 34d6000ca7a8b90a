// Package pgstore keeps records in a single PostgreSQL table keyed by
// (collection, key) with a jsonb value column.
package pgstore

import (
	"context"
	"errors"
	"fmt"

	apperrors "github.com/RenanGalvao/pizza-ecommerce/internal/errors"
	"github.com/RenanGalvao/pizza-ecommerce/records"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const defaultTable = "records"

var _ records.Store = (*Store)(nil)

type Store struct {
	pool  *pgxpool.Pool
	table string
}

type Option func(*Store)

// WithTable stores records in table instead of "records".
func WithTable(table string) Option {
	return func(s *Store) {
		s.table = table
	}
}

// Open connects to dsn and makes sure the records table exists.
func Open(ctx context.Context, dsn string, opts ...Option) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, apperrors.Wrapf(err, "pgxpool.New"))
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, apperrors.Wrap(apperrors.ErrStore, apperrors.Wrapf(err, "postgres ping"))
	}
	s := New(pool, opts...)
	if err := s.Migrate(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	return s, nil
}

func New(pool *pgxpool.Pool, opts ...Option) *Store {
	s := &Store{pool: pool, table: defaultTable}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) Migrate(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
		collection TEXT NOT NULL,
		key        TEXT NOT NULL,
		value      JSONB NOT NULL,
		updated_at TIMESTAMPTZ NOT NULL DEFAULT now(),
		PRIMARY KEY (collection, key)
	)`, s.ident()))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, apperrors.Wrapf(err, "migrate %s", s.table))
	}
	return nil
}

// Drop removes the records table.
func (s *Store) Drop(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, "DROP TABLE IF EXISTS "+s.ident()); err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	return nil
}

func (s *Store) Create(ctx context.Context, collection, key string, value []byte) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(
		`INSERT INTO %s (collection, key, value) VALUES ($1, $2, $3::jsonb) ON CONFLICT DO NOTHING`, s.ident()),
		collection, key, string(value))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrapf(apperrors.ErrAlreadyExists, "%s/%s", collection, key)
	}
	return nil
}

func (s *Store) Read(ctx context.Context, collection, key string) ([]byte, error) {
	var value string
	err := s.pool.QueryRow(ctx, fmt.Sprintf(
		`SELECT value::text FROM %s WHERE collection = $1 AND key = $2`, s.ident()),
		collection, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	return []byte(value), nil
}

func (s *Store) Update(ctx context.Context, collection, key string, value []byte) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(
		`UPDATE %s SET value = $3::jsonb, updated_at = now() WHERE collection = $1 AND key = $2`, s.ident()),
		collection, key, string(value))
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, collection, key string) error {
	tag, err := s.pool.Exec(ctx, fmt.Sprintf(
		`DELETE FROM %s WHERE collection = $1 AND key = $2`, s.ident()),
		collection, key)
	if err != nil {
		return apperrors.Wrap(apperrors.ErrStore, err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.Wrapf(apperrors.ErrNotFound, "%s/%s", collection, key)
	}
	return nil
}

func (s *Store) List(ctx context.Context, collection string) ([]string, error) {
	rows, err := s.pool.Query(ctx, fmt.Sprintf(
		`SELECT key FROM %s WHERE collection = $1 ORDER BY key COLLATE "C"`, s.ident()),
		collection)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	keys, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, apperrors.Wrap(apperrors.ErrStore, err)
	}
	if keys == nil {
		keys = []string{}
	}
	return keys, nil
}

func (s *Store) ident() string {
	return pgx.Identifier{s.table}.Sanitize()
}

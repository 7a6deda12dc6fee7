package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"techhub/internal/repos"
)

// SQLStore keeps values in the kv table of a SQLite database.
type SQLStore struct {
	kv *repos.KVRepo
}

func NewSQLStore(db *sqlx.DB) *SQLStore { return &SQLStore{kv: repos.NewKVRepo(db)} }

// OpenSQLStore opens (and migrates) the database at dsn.
func OpenSQLStore(dsn string) (*SQLStore, *sqlx.DB, error) {
	db, err := repos.OpenDB(dsn)
	if err != nil {
		return nil, nil, fmt.Errorf("open store %s: %w", dsn, err)
	}
	return NewSQLStore(db), db, nil
}

func (s *SQLStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return v, err
}

func (s *SQLStore) Set(ctx context.Context, key string, value []byte) error {
	return s.kv.Put(ctx, key, value)
}

func (s *SQLStore) Remove(ctx context.Context, key string) error {
	return s.kv.Delete(ctx, key)
}

package repos

import (
	"context"

	"github.com/jmoiron/sqlx"
)

// KVRepo backs the client's durable key/value storage with a single table.
type KVRepo struct{ db *sqlx.DB }

func NewKVRepo(db *sqlx.DB) *KVRepo { return &KVRepo{db: db} }

// Get returns sql.ErrNoRows when key is absent.
func (r *KVRepo) Get(ctx context.Context, key string) ([]byte, error) {
	var v []byte
	err := r.db.GetContext(ctx, &v, `SELECT value FROM kv WHERE key = ?`, key)
	return v, err
}

func (r *KVRepo) Put(ctx context.Context, key string, value []byte) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO kv(key, value, updated_at) VALUES(?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = CURRENT_TIMESTAMP
	`, key, value)
	return err
}

func (r *KVRepo) Delete(ctx context.Context, key string) error {
	_, err := r.db.ExecContext(ctx, `DELETE FROM kv WHERE key = ?`, key)
	return err
}

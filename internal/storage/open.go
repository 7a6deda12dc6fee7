package storage

import (
	"fmt"
	"io"

	"github.com/redis/go-redis/v9"
)

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

// Open builds the Store named by backend (memory, sqlite or redis). The
// returned Closer releases the underlying connection.
func Open(backend, dsn, redisAddr, prefix string) (Store, io.Closer, error) {
	switch backend {
	case "", "memory":
		return NewMemoryStore(), nopCloser{}, nil
	case "sqlite":
		s, db, err := OpenSQLStore(dsn)
		if err != nil {
			return nil, nil, err
		}
		return s, db, nil
	case "redis":
		client := redis.NewClient(&redis.Options{Addr: redisAddr})
		return NewRedisStore(client, prefix), client, nil
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", backend)
	}
}

// Package storage is the durable key-value port behind shipping data, order
// history and the client session id.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	KeyShippingData = "shippingData"
	KeyOrderHistory = "orderHistory"
	KeySessionID    = "sessionId"
)

var ErrNotFound = errors.New("storage: key not found")

// Store gets, sets and removes raw values by key. Get returns ErrNotFound
// for a missing key; Remove of a missing key is not an error.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Remove(ctx context.Context, key string) error
}

// GetJSON decodes the value under key into v. found is false when the key
// is absent.
func GetJSON(ctx context.Context, s Store, key string, v any) (found bool, err error) {
	b, err := s.Get(ctx, key)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(b, v); err != nil {
		return false, fmt.Errorf("decode %s: %w", key, err)
	}
	return true, nil
}

func SetJSON(ctx context.Context, s Store, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", key, err)
	}
	return s.Set(ctx, key, b)
}

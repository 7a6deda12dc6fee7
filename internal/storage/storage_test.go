package storage_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"techhub/internal/domain"
	"techhub/internal/storage"
)

func backends(t *testing.T) map[string]storage.Store {
	t.Helper()
	sqlStore, db, err := storage.OpenSQLStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return map[string]storage.Store{
		"memory": storage.NewMemoryStore(),
		"sqlite": sqlStore,
		"redis":  storage.NewRedisStore(client, "test"),
	}
}

func TestStoreContract(t *testing.T) {
	ctx := context.Background()
	for name, s := range backends(t) {
		t.Run(name, func(t *testing.T) {
			_, err := s.Get(ctx, "missing")
			assert.ErrorIs(t, err, storage.ErrNotFound)

			require.NoError(t, s.Set(ctx, "k", []byte("v1")))
			require.NoError(t, s.Set(ctx, "k", []byte("v2")))
			got, err := s.Get(ctx, "k")
			require.NoError(t, err)
			assert.Equal(t, "v2", string(got))

			require.NoError(t, s.Remove(ctx, "k"))
			require.NoError(t, s.Remove(ctx, "k"))
			_, err = s.Get(ctx, "k")
			assert.ErrorIs(t, err, storage.ErrNotFound)
		})
	}
}

func TestJSONHelpers(t *testing.T) {
	ctx := context.Background()
	s := storage.NewMemoryStore()

	var sd domain.ShippingData
	found, err := storage.GetJSON(ctx, s, storage.KeyShippingData, &sd)
	require.NoError(t, err)
	assert.False(t, found)

	want := domain.ShippingData{Name: "Ada", Address: "1 Loop", City: "Turin", Postal: "10100", Phone: "555", DeliveryTime: domain.DeliveryExpress}
	require.NoError(t, storage.SetJSON(ctx, s, storage.KeyShippingData, want))
	found, err = storage.GetJSON(ctx, s, storage.KeyShippingData, &sd)
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, want, sd)

	require.NoError(t, s.Set(ctx, storage.KeyOrderHistory, []byte("{not json")))
	var hist []domain.OrderRecord
	_, err = storage.GetJSON(ctx, s, storage.KeyOrderHistory, &hist)
	assert.Error(t, err)
}

func TestOpenUnknownBackend(t *testing.T) {
	_, _, err := storage.Open("etcd", "", "", "")
	assert.Error(t, err)
}

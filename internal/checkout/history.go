package checkout

import (
	"context"

	"techhub/internal/domain"
	"techhub/internal/storage"
)

// HistoryLimit bounds the stored order history.
const HistoryLimit = 10

// LoadHistory returns past orders, newest first.
func LoadHistory(ctx context.Context, s storage.Store) ([]domain.OrderRecord, error) {
	var hist []domain.OrderRecord
	if _, err := storage.GetJSON(ctx, s, storage.KeyOrderHistory, &hist); err != nil {
		return nil, err
	}
	return hist, nil
}

// AppendHistory puts rec at the front and drops entries past the limit.
func AppendHistory(ctx context.Context, s storage.Store, rec domain.OrderRecord) error {
	hist, err := LoadHistory(ctx, s)
	if err != nil {
		return err
	}
	hist = append([]domain.OrderRecord{rec}, hist...)
	if len(hist) > HistoryLimit {
		hist = hist[:HistoryLimit]
	}
	return storage.SetJSON(ctx, s, storage.KeyOrderHistory, hist)
}

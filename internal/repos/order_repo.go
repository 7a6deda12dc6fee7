package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
)

type OrderRepo struct{ db *sqlx.DB }

func NewOrderRepo(db *sqlx.DB) *OrderRepo { return &OrderRepo{db: db} }

type OrderRow struct {
	ID             string          `db:"id"`
	SessionID      string          `db:"session_id"`
	IdempotencyKey string          `db:"idempotency_key"`
	PaymentMethod  string          `db:"payment_method"`
	DeliveryTime   string          `db:"delivery_time"`
	Total          decimal.Decimal `db:"total"`
	Status         string          `db:"status"`
	CreatedAt      string          `db:"created_at"`
}

type OrderItemRow struct {
	ProductID int64           `db:"product_id"`
	Qty       int             `db:"qty"`
	Price     decimal.Decimal `db:"price"`
}

// FindByKey returns the id of the order accepted under an idempotency key,
// or sql.ErrNoRows.
func (r *OrderRepo) FindByKey(key string) (string, error) {
	var id string
	err := r.db.Get(&id, `SELECT id FROM orders WHERE idempotency_key = ?`, key)
	return id, err
}

// Record inserts the order header and lines and empties the session cart in
// one transaction.
func (r *OrderRepo) Record(o OrderRow, items []OrderItemRow) error {
	tx, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	var key any
	if o.IdempotencyKey != "" {
		key = o.IdempotencyKey
	}
	if _, err := tx.Exec(`
	  INSERT INTO orders
	    (id, session_id, idempotency_key, payment_method, delivery_time, total, status, created_at)
	  VALUES
	    (?,  ?,          ?,               ?,              ?,             ?,     'PLACED', CURRENT_TIMESTAMP)
	`, o.ID, o.SessionID, key, o.PaymentMethod, o.DeliveryTime, o.Total.String()); err != nil {
		return err
	}
	for _, it := range items {
		if _, err := tx.Exec(`
		  INSERT INTO order_items(order_id, product_id, qty, price)
		  VALUES(?, ?, ?, ?)
		`, o.ID, it.ProductID, it.Qty, it.Price.String()); err != nil {
			return err
		}
	}
	if _, err := tx.Exec(`DELETE FROM cart_items WHERE session_id = ?`, o.SessionID); err != nil {
		return err
	}
	return tx.Commit()
}

func (r *OrderRepo) Get(orderID string) (OrderRow, []OrderItemRow, error) {
	var o OrderRow
	if err := r.db.Get(&o, `
		SELECT id, COALESCE(session_id,'') AS session_id, COALESCE(idempotency_key,'') AS idempotency_key,
		       COALESCE(payment_method,'') AS payment_method, COALESCE(delivery_time,'') AS delivery_time,
		       total, status, created_at
		FROM orders
		WHERE id = ?
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}

	var items []OrderItemRow
	if err := r.db.Select(&items, `
		SELECT product_id, qty, price
		FROM order_items
		WHERE order_id = ?
		ORDER BY product_id
	`, orderID); err != nil {
		return OrderRow{}, nil, err
	}
	return o, items, nil
}

// CountBySession is used by tests and the admin log line after placement.
func (r *OrderRepo) CountBySession(sessionID string) (int, error) {
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM orders WHERE session_id = ?`, sessionID)
	return n, err
}

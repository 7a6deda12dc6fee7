package repos

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"techhub/internal/domain"
)

type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type CartItemRow struct {
	ProductID int64           `db:"product_id"`
	Name      string          `db:"name"`
	ImageURL  string          `db:"image_url"`
	Price     decimal.Decimal `db:"price"`
	Category  string          `db:"category"`
	Qty       int             `db:"qty"`
}

// AddDelta applies a signed quantity change; the stored quantity never
// drops below zero.
func (r *CartRepo) AddDelta(sessionID string, productID int64, delta int) error {
	_, err := r.db.Exec(`
		INSERT INTO cart_items(session_id,product_id,qty,updated_at)
		VALUES(?,?,MAX(0, ?),CURRENT_TIMESTAMP)
		ON CONFLICT(session_id,product_id) DO UPDATE
		SET qty = MAX(0, cart_items.qty + ?), updated_at = CURRENT_TIMESTAMP
	`, sessionID, productID, delta, delta)
	return err
}

// Items returns the positive-quantity lines of a session cart, ordered by
// product id.
func (r *CartRepo) Items(sessionID string) ([]domain.CartItem, error) {
	rows := []CartItemRow{}
	if err := r.db.Select(&rows, `
	  SELECT ci.product_id, p.name, p.image_url, p.price, p.category, ci.qty
	  FROM cart_items ci JOIN products p ON p.id = ci.product_id
	  WHERE ci.session_id = ? AND ci.qty > 0
	  ORDER BY ci.product_id
	`, sessionID); err != nil {
		return nil, err
	}
	items := make([]domain.CartItem, 0, len(rows))
	for _, row := range rows {
		items = append(items, domain.CartItem{
			Product: domain.Product{
				ID: row.ProductID, Name: row.Name, ImageURL: row.ImageURL,
				Price: row.Price, Category: domain.Category(row.Category),
			},
			Quantity: row.Qty,
		})
	}
	return items, nil
}

func (r *CartRepo) Clear(sessionID string) error {
	_, err := r.db.Exec(`DELETE FROM cart_items WHERE session_id = ?`, sessionID)
	return err
}

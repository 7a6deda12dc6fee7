package repos

import (
	"strings"

	"github.com/jmoiron/sqlx"

	"techhub/internal/domain"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

func (r *ProductRepo) Get(id int64) (domain.Product, error) {
	var p domain.Product
	err := r.db.Get(&p, `
  SELECT id, name, image_url, price, category
  FROM products
  WHERE id = ?
`, id)
	return p, err
}

// where builds the filter shared by Search and Count: case-insensitive
// substring match on name, exact category.
func where(q string, cat domain.Category) (string, []any) {
	clause := `1 = 1`
	args := []any{}
	if q != "" {
		clause += ` AND instr(unicode_lower(name), ?) > 0`
		args = append(args, strings.ToLower(q))
	}
	if cat != "" {
		clause += ` AND category = ?`
		args = append(args, string(cat))
	}
	return clause, args
}

func (r *ProductRepo) Search(q string, cat domain.Category, limit, offset int) ([]domain.Product, error) {
	clause, args := where(q, cat)
	sql := `
  SELECT id, name, image_url, price, category
  FROM products
  WHERE ` + clause + `
  ORDER BY id
  LIMIT ? OFFSET ?`
	args = append(args, limit, offset)

	out := []domain.Product{}
	err := r.db.Select(&out, sql, args...)
	return out, err
}

func (r *ProductRepo) Count(q string, cat domain.Category) (int, error) {
	clause, args := where(q, cat)
	var n int
	err := r.db.Get(&n, `SELECT COUNT(*) FROM products WHERE `+clause, args...)
	return n, err
}

// Insert adds or replaces a product. Used by tests and fixtures.
func (r *ProductRepo) Insert(p domain.Product) error {
	_, err := r.db.Exec(`
		INSERT INTO products(id,name,image_url,price,category) VALUES(?,?,?,?,?)
		ON CONFLICT(id) DO UPDATE SET name=excluded.name, image_url=excluded.image_url,
		  price=excluded.price, category=excluded.category
	`, p.ID, p.Name, p.ImageURL, p.Price.String(), string(p.Category))
	return err
}

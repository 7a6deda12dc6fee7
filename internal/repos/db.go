package repos

import (
	"database/sql/driver"
	"fmt"
	"log"
	"math/rand"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"modernc.org/sqlite"

	"techhub/internal/domain"
)

// SQLite's LOWER folds ASCII only. unicode_lower applies strings.ToLower so
// the column and the search argument are folded the same way.
func init() {
	sqlite.MustRegisterDeterministicScalarFunction("unicode_lower", 1, func(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
		switch v := args[0].(type) {
		case string:
			return strings.ToLower(v), nil
		case []byte:
			return strings.ToLower(string(v)), nil
		default:
			return v, nil
		}
	})
}

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	// One connection: ":memory:" databases are per connection, and SQLite
	// serialises writers anyway.
	db.SetMaxOpenConns(1)
	if err = db.Ping(); err != nil {
		return nil, err
	}
	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Products
CREATE TABLE IF NOT EXISTS products(
  id INTEGER PRIMARY KEY,
  name TEXT NOT NULL,
  image_url TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  category TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_products_category ON products(category);

-- Carts, one per session cookie
CREATE TABLE IF NOT EXISTS cart_items(
  session_id TEXT NOT NULL,
  product_id INTEGER NOT NULL REFERENCES products(id) ON DELETE CASCADE,
  qty INTEGER NOT NULL CHECK (qty >= 0),
  updated_at TEXT,
  PRIMARY KEY (session_id, product_id)
);

-- Orders
CREATE TABLE IF NOT EXISTS orders(
  id TEXT PRIMARY KEY,
  session_id TEXT,
  idempotency_key TEXT UNIQUE,
  payment_method TEXT,
  delivery_time TEXT,
  total NUMERIC NOT NULL,
  status TEXT NOT NULL DEFAULT 'PLACED',
  created_at TEXT DEFAULT CURRENT_TIMESTAMP
);
CREATE INDEX IF NOT EXISTS idx_orders_session ON orders(session_id);

CREATE TABLE IF NOT EXISTS order_items(
  order_id  TEXT NOT NULL REFERENCES orders(id) ON DELETE CASCADE,
  product_id INTEGER NOT NULL REFERENCES products(id),
  qty INTEGER NOT NULL,
  price NUMERIC NOT NULL,
  PRIMARY KEY (order_id, product_id)
);

-- Client-side durable key/value storage
CREATE TABLE IF NOT EXISTS kv(
  key TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

var imageKeywords = map[domain.Category]string{
	domain.CategoryLaptops:     "laptop",
	domain.CategorySmartphones: "smartphone",
	domain.CategoryTablets:     "tablet",
	domain.CategoryAccessories: "technology",
	domain.CategoryAudio:       "headphones",
	domain.CategoryGaming:      "gaming",
	domain.CategoryWearables:   "smartwatch",
	domain.CategoryCameras:     "camera",
}

var (
	brands = []string{"Nova", "Apex", "Zenith", "Orbit", "Vertex", "Lumen", "Pulse", "Quantum", "Helix", "Stratos"}
	lines  = map[domain.Category][]string{
		domain.CategoryLaptops:     {"Book", "Air", "Pro Notebook", "Ultra 14", "Workstation"},
		domain.CategorySmartphones: {"Phone", "X Mini", "Max", "Lite", "Fold"},
		domain.CategoryTablets:     {"Tab", "Pad Pro", "Slate", "Note 11"},
		domain.CategoryAccessories: {"USB-C Hub", "Charger 65W", "Sleeve", "Stylus", "Keyboard"},
		domain.CategoryAudio:       {"Buds", "Studio Headphones", "Soundbar", "Speaker Go"},
		domain.CategoryGaming:      {"Console", "Controller", "Arcade Stick", "Headset"},
		domain.CategoryWearables:   {"Watch", "Band", "Ring", "Fit 3"},
		domain.CategoryCameras:     {"Mirrorless", "Action Cam", "Instant", "Zoom 40x"},
	}
)

// ImageURL returns the placeholder image for a product in category c.
func ImageURL(c domain.Category, id int64) string {
	kw, ok := imageKeywords[c]
	if !ok {
		kw = "technology"
	}
	return fmt.Sprintf("https://loremflickr.com/300/300/%s?lock=%d", kw, id)
}

// SeedCatalog inserts n generated products if the catalog is empty. The
// same seed always yields the same catalog.
func SeedCatalog(db *sqlx.DB, n int, seed int64) error {
	var count int
	if err := db.Get(&count, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	log.Printf("[seed] inserting %d demo products", n)
	r := rand.New(rand.NewSource(seed))

	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for id := 0; id < n; id++ {
		cat := domain.Categories[r.Intn(len(domain.Categories))]
		ls := lines[cat]
		name := fmt.Sprintf("%s %s %d", brands[r.Intn(len(brands))], ls[r.Intn(len(ls))], id+1)
		price := decimal.NewFromFloat(29 + r.Float64()*2970).Round(2)
		if _, err := tx.Exec(`INSERT INTO products(id,name,image_url,price,category) VALUES(?,?,?,?,?)`,
			id, name, ImageURL(cat, int64(id)), price.String(), string(cat)); err != nil {
			return err
		}
	}
	return tx.Commit()
}

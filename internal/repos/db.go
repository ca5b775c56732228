package repos

import (
	"bytes"
	"database/sql/driver"
	"embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"
	"github.com/santhosh-tekuri/jsonschema/v5"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"modernc.org/sqlite"

	"fieldbasket/internal/domain"
	applog "fieldbasket/internal/log"
)

func init() {
	// SQLite's LOWER only folds ASCII; search folds both sides with Go's rules.
	sqlite.MustRegisterDeterministicScalarFunction("fold", 1, fold)
}

func fold(_ *sqlite.FunctionContext, args []driver.Value) (driver.Value, error) {
	switch v := args[0].(type) {
	case string:
		return strings.ToLower(v), nil
	case []byte:
		return strings.ToLower(string(v)), nil
	default:
		return v, nil
	}
}

//go:embed seed/catalog.json seed/catalog.schema.json
var seedFS embed.FS

func OpenDB(dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	if strings.Contains(dsn, ":memory:") {
		// every pooled connection would otherwise get its own empty database
		db.SetMaxOpenConns(1)
	}
	if err = db.Ping(); err != nil {
		return nil, err
	}

	if err := ensureSchema(db); err != nil {
		return nil, err
	}
	// Seed the catalog if it is empty (categories/products)
	if err := seedIfEmpty(db); err != nil {
		return nil, err
	}
	return db, nil
}

func ensureSchema(db *sqlx.DB) error {
	schema := `
PRAGMA foreign_keys = ON;

-- Categories (product types)
CREATE TABLE IF NOT EXISTS categories(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);

-- Products
CREATE TABLE IF NOT EXISTS products(
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  image TEXT NOT NULL DEFAULT '',
  price NUMERIC NOT NULL CHECK (price >= 0),
  unit TEXT NOT NULL,
  description TEXT NOT NULL DEFAULT '',
  type TEXT NOT NULL DEFAULT '' CHECK (type IN ('','fruit','vegetable')),
  created_at TEXT DEFAULT CURRENT_TIMESTAMP,
  updated_at TEXT
);
CREATE INDEX IF NOT EXISTS idx_products_name ON products(LOWER(name));
CREATE INDEX IF NOT EXISTS idx_products_type ON products(type);

-- Persisted carts: one JSON record per storage namespace
CREATE TABLE IF NOT EXISTS cart_records(
  namespace TEXT PRIMARY KEY,
  payload TEXT NOT NULL,
  updated_at TEXT
);
`
	_, err := db.Exec(schema)
	return err
}

// SeedCatalog returns the embedded catalog after validating it against its schema.
func SeedCatalog() ([]domain.Product, error) {
	raw, err := seedFS.ReadFile("seed/catalog.json")
	if err != nil {
		return nil, err
	}
	schemaRaw, err := seedFS.ReadFile("seed/catalog.schema.json")
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("catalog.schema.json", bytes.NewReader(schemaRaw)); err != nil {
		return nil, fmt.Errorf("add catalog schema: %w", err)
	}
	schema, err := compiler.Compile("catalog.schema.json")
	if err != nil {
		return nil, fmt.Errorf("compile catalog schema: %w", err)
	}

	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode seed catalog: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return nil, fmt.Errorf("seed catalog invalid: %w", err)
	}

	var out struct {
		Products []domain.Product `json:"products"`
	}
	if err := json.Unmarshal(raw, &out); err != nil {
		return nil, err
	}
	return out.Products, nil
}

func seedIfEmpty(db *sqlx.DB) error {
	var n int
	if err := db.Get(&n, `SELECT COUNT(*) FROM products`); err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	products, err := SeedCatalog()
	if err != nil {
		return err
	}

	applog.Info(nil, "seed.catalog", map[string]any{"products": len(products)})

	caser := cases.Title(language.English)
	tx := db.MustBegin()
	defer func() { _ = tx.Rollback() }()
	for _, id := range []string{domain.TypeFruit, domain.TypeVegetable} {
		if _, err := tx.Exec(`
			INSERT INTO categories(id, name, created_at)
			VALUES(?, ?, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO NOTHING
		`, id, caser.String(id)+"s"); err != nil {
			return err
		}
	}
	for _, p := range products {
		if _, err := tx.NamedExec(`
			INSERT INTO products(id, name, image, price, unit, description, type, created_at)
			VALUES(:id, :name, :image, :price, :unit, :description, :type, CURRENT_TIMESTAMP)
			ON CONFLICT(id) DO NOTHING
		`, p); err != nil {
			return err
		}
	}
	return tx.Commit()
}

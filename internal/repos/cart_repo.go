package repos

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"fieldbasket/internal/domain"
)

// CartRepo persists cart records as an ordered JSON list of
// {product snapshot, quantity} keyed by storage namespace.
type CartRepo struct{ db *sqlx.DB }

func NewCartRepo(db *sqlx.DB) *CartRepo { return &CartRepo{db: db} }

type cartRecord struct {
	Namespace string `db:"namespace"`
	Payload   string `db:"payload"`
	UpdatedAt string `db:"updated_at"`
}

func (r *CartRepo) Load(namespace string) ([]domain.CartItem, error) {
	var rec cartRecord
	err := r.db.Get(&rec, `SELECT namespace, payload, COALESCE(updated_at,'') AS updated_at FROM cart_records WHERE namespace = ?`, namespace)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var items []domain.CartItem
	if err := json.Unmarshal([]byte(rec.Payload), &items); err != nil {
		return nil, err
	}
	return items, nil
}

func (r *CartRepo) Save(namespace string, items []domain.CartItem) error {
	if items == nil {
		items = []domain.CartItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return err
	}
	_, err = r.db.Exec(`
		INSERT INTO cart_records(namespace, payload, updated_at)
		VALUES(?, ?, ?)
		ON CONFLICT(namespace) DO UPDATE
		SET payload = excluded.payload, updated_at = excluded.updated_at
	`, namespace, string(b), time.Now().UTC().Format(time.RFC3339))
	return err
}

func (r *CartRepo) Delete(namespace string) error {
	_, err := r.db.Exec(`DELETE FROM cart_records WHERE namespace = ?`, namespace)
	return err
}

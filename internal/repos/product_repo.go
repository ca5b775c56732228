package repos

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/jmoiron/sqlx"

	"fieldbasket/internal/domain"
	"fieldbasket/internal/errs"
)

type ProductRepo struct{ db *sqlx.DB }

func NewProductRepo(db *sqlx.DB) *ProductRepo { return &ProductRepo{db: db} }

const productCols = `id, name, image, price, unit, description, type`

func (r *ProductRepo) Get(ctx context.Context, id string) (domain.Product, error) {
	var p domain.Product
	err := r.db.GetContext(ctx, &p, `SELECT `+productCols+` FROM products WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return p, errs.ErrNotFound
	}
	return p, err
}

// Search returns one page of matching products and the total match count.
// A non-empty search matches name or description case-insensitively and
// ignores the type filter.
func (r *ProductRepo) Search(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error) {
	where := `1 = 1`
	args := []any{}
	if q.Search != "" {
		pat := "%" + escapeLike(strings.ToLower(q.Search)) + "%"
		where += ` AND (fold(name) LIKE ? ESCAPE '\' OR fold(description) LIKE ? ESCAPE '\')`
		args = append(args, pat, pat)
	} else if q.Type != "" && q.Type != domain.TypeAll {
		where += ` AND type = ?`
		args = append(args, q.Type)
	}

	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM products WHERE `+where, args...); err != nil {
		return nil, 0, err
	}

	out := []domain.Product{}
	err := r.db.SelectContext(ctx, &out, `
	  SELECT `+productCols+`
	  FROM products
	  WHERE `+where+`
	  ORDER BY name, id
	  LIMIT ? OFFSET ?`, append(args, q.Limit, q.Offset())...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func escapeLike(s string) string { return likeEscaper.Replace(s) }

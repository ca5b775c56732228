package domain

import "strings"

// Product types. An empty type means the product is not tagged.
const (
	TypeFruit     = "fruit"
	TypeVegetable = "vegetable"
	TypeAll       = "all"
)

// NormalizeType maps a user supplied category to fruit, vegetable or all.
func NormalizeType(t string) string {
	switch strings.ToLower(strings.TrimSpace(t)) {
	case TypeFruit, "fruits":
		return TypeFruit
	case TypeVegetable, "vegetables":
		return TypeVegetable
	default:
		return TypeAll
	}
}

type Category struct {
	ID        string `db:"id" json:"id"`
	Name      string `db:"name" json:"name"`
	CreatedAt string `db:"created_at" json:"-"`
	UpdatedAt string `db:"updated_at" json:"-"`
}

type Product struct {
	ID          string  `db:"id" json:"id"`
	Name        string  `db:"name" json:"name"`
	Image       string  `db:"image" json:"image"`
	Price       float64 `db:"price" json:"price"`
	Unit        string  `db:"unit" json:"unit"`
	Description string  `db:"description" json:"description"`
	Type        string  `db:"type" json:"type,omitempty"` // fruit | vegetable
}

// ProductQuery is a normalized catalog query.
type ProductQuery struct {
	Page   int
	Limit  int
	Search string
	Type   string
}

// Offset is the number of matching records skipped before this page.
func (q ProductQuery) Offset() int { return (q.Page - 1) * q.Limit }

type ProductPage struct {
	Products []Product `json:"products"`
	Total    int       `json:"total"`
	Page     int       `json:"page"`
	Limit    int       `json:"limit"`
}

// TotalPages is ceil(total/limit).
func TotalPages(total, limit int) int {
	if limit <= 0 || total <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}

type CartItem struct {
	Product  Product `json:"product"`
	Quantity int     `json:"quantity"`
}

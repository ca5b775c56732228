package services

import (
	"context"
	"fmt"
	"strings"

	"fieldbasket/internal/domain"
	"fieldbasket/internal/repos"
)

// MaxPageSize caps the limit a client may ask for.
const MaxPageSize = 100

// ProductStore is implemented by the SQLite and Mongo product repos.
type ProductStore interface {
	Search(ctx context.Context, q domain.ProductQuery) ([]domain.Product, int, error)
	Get(ctx context.Context, id string) (domain.Product, error)
}

type CatalogService struct {
	Cats     *repos.CategoryRepo
	Prods    ProductStore
	PageSize int
}

func NewCatalogService(cats *repos.CategoryRepo, prods ProductStore, pageSize int) *CatalogService {
	if pageSize <= 0 {
		pageSize = 12
	}
	return &CatalogService{Cats: cats, Prods: prods, PageSize: pageSize}
}

func (s *CatalogService) ListCategories() ([]domain.Category, error) {
	return s.Cats.List()
}

// Normalize applies the paging defaults and drops the type filter while
// searching.
func (s *CatalogService) Normalize(q domain.ProductQuery) domain.ProductQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit <= 0 {
		q.Limit = s.PageSize
	}
	if q.Limit > MaxPageSize {
		q.Limit = MaxPageSize
	}
	q.Search = strings.TrimSpace(q.Search)
	q.Type = domain.NormalizeType(q.Type)
	if q.Search != "" {
		q.Type = domain.TypeAll
	}
	return q
}

// Products returns one page of the catalog and the total match count.
func (s *CatalogService) Products(ctx context.Context, q domain.ProductQuery) (domain.ProductPage, error) {
	q = s.Normalize(q)
	items, total, err := s.Prods.Search(ctx, q)
	if err != nil {
		return domain.ProductPage{}, fmt.Errorf("search products: %w", err)
	}
	if items == nil {
		items = []domain.Product{}
	}
	return domain.ProductPage{Products: items, Total: total, Page: q.Page, Limit: q.Limit}, nil
}

func (s *CatalogService) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	return s.Prods.Get(ctx, id)
}

package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldbasket/internal/domain"
	"fieldbasket/internal/services"
)

func TestCatalogService_Normalize(t *testing.T) {
	s := services.NewCatalogService(nil, nil, 12)

	q := s.Normalize(domain.ProductQuery{Page: 0, Limit: 0, Search: "  tom ", Type: "fruit"})
	assert.Equal(t, domain.ProductQuery{Page: 1, Limit: 12, Search: "tom", Type: domain.TypeAll}, q)

	q = s.Normalize(domain.ProductQuery{Page: 3, Limit: 500, Type: "Vegetables"})
	assert.Equal(t, domain.ProductQuery{Page: 3, Limit: services.MaxPageSize, Type: domain.TypeVegetable}, q)

	q = s.Normalize(domain.ProductQuery{Page: -2, Limit: 5, Type: "nuts"})
	assert.Equal(t, domain.ProductQuery{Page: 1, Limit: 5, Type: domain.TypeAll}, q)
}

func TestCatalogService_Products(t *testing.T) {
	st := newStack(t)
	ctx := context.Background()

	page, err := st.catalog.Products(ctx, domain.ProductQuery{})
	require.NoError(t, err)
	assert.Equal(t, 20, page.Total)
	assert.Len(t, page.Products, 12)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 12, page.Limit)

	page, err = st.catalog.Products(ctx, domain.ProductQuery{Page: 2, Type: "vegetable"})
	require.NoError(t, err)
	assert.Equal(t, 9, page.Total)
	assert.Empty(t, page.Products)
	assert.NotNil(t, page.Products)

	page, err = st.catalog.Products(ctx, domain.ProductQuery{Search: "TOM", Type: "fruit"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total, "type is ignored while searching")
}

type brokenStore struct{}

func (brokenStore) Search(context.Context, domain.ProductQuery) ([]domain.Product, int, error) {
	return nil, 0, errors.New("database is locked")
}
func (brokenStore) Get(context.Context, string) (domain.Product, error) {
	return domain.Product{}, errors.New("database is locked")
}

func TestCatalogService_StorageFailure(t *testing.T) {
	s := services.NewCatalogService(nil, brokenStore{}, 12)
	_, err := s.Products(context.Background(), domain.ProductQuery{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "database is locked")
}

func TestCatalogService_Categories(t *testing.T) {
	st := newStack(t)
	cats, err := st.catalog.ListCategories()
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Fruits", cats[0].Name)
}

package repos_test

import (
	"context"
	"strings"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldbasket/internal/domain"
	"fieldbasket/internal/errs"
	"fieldbasket/internal/repos"
)

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func query(page, limit int, search, typ string) domain.ProductQuery {
	return domain.ProductQuery{Page: page, Limit: limit, Search: search, Type: typ}
}

func TestSeedCatalogIsValid(t *testing.T) {
	products, err := repos.SeedCatalog()
	require.NoError(t, err)
	require.Len(t, products, 20)
	seen := map[string]bool{}
	for _, p := range products {
		assert.False(t, seen[p.ID], "duplicate id %s", p.ID)
		seen[p.ID] = true
		assert.Contains(t, []string{domain.TypeFruit, domain.TypeVegetable}, p.Type)
	}
}

func TestProductRepo_SearchMatchesNameOrDescription(t *testing.T) {
	repo := repos.NewProductRepo(memdb(t))

	products, total, err := repo.Search(context.Background(), query(1, 12, "tom", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 2, total)
	require.Len(t, products, 2)
	for _, p := range products {
		hay := strings.ToLower(p.Name + " " + p.Description)
		assert.Contains(t, hay, "tom")
	}

	// case-insensitive, description only match ("vitamin C")
	products, total, err = repo.Search(context.Background(), query(1, 12, "VITAMIN", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "orange", products[0].ID)
}

func TestProductRepo_SearchIgnoresTypeFilter(t *testing.T) {
	repo := repos.NewProductRepo(memdb(t))
	_, total, err := repo.Search(context.Background(), query(1, 12, "tom", domain.TypeFruit))
	require.NoError(t, err)
	assert.Equal(t, 2, total, "vegetables still match while searching")
}

func TestProductRepo_TypeFilter(t *testing.T) {
	repo := repos.NewProductRepo(memdb(t))

	fruits, total, err := repo.Search(context.Background(), query(1, 50, "", domain.TypeFruit))
	require.NoError(t, err)
	assert.Equal(t, 11, total)
	for _, p := range fruits {
		assert.Equal(t, domain.TypeFruit, p.Type)
	}

	_, total, err = repo.Search(context.Background(), query(1, 50, "", domain.TypeVegetable))
	require.NoError(t, err)
	assert.Equal(t, 9, total)

	_, total, err = repo.Search(context.Background(), query(1, 50, "", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 20, total)
}

func TestProductRepo_Pagination(t *testing.T) {
	repo := repos.NewProductRepo(memdb(t))
	ctx := context.Background()

	first, total, err := repo.Search(ctx, query(1, 12, "", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 20, total)
	assert.Len(t, first, 12)

	second, total, err := repo.Search(ctx, query(2, 12, "", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 20, total, "total is independent of paging")
	assert.Len(t, second, 8)

	ids := map[string]bool{}
	for _, p := range append(first, second...) {
		assert.False(t, ids[p.ID], "product %s returned on two pages", p.ID)
		ids[p.ID] = true
	}

	past, total, err := repo.Search(ctx, query(5, 12, "", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 20, total)
	assert.Empty(t, past)
	assert.NotNil(t, past)
}

func TestProductRepo_LikeMetacharactersMatchLiterally(t *testing.T) {
	db := memdb(t)
	_, err := db.Exec(`INSERT INTO products(id,name,image,price,unit,description,type)
		VALUES('promo','Mixed box 100% fresh','',10,'box','weekly_special','')`)
	require.NoError(t, err)
	repo := repos.NewProductRepo(db)

	products, total, err := repo.Search(context.Background(), query(1, 12, "100%", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "promo", products[0].ID)

	_, total, err = repo.Search(context.Background(), query(1, 12, "%", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 1, total)

	_, total, err = repo.Search(context.Background(), query(1, 12, "y_s", domain.TypeAll))
	require.NoError(t, err)
	assert.Equal(t, 1, total)
}

func TestProductRepo_SearchFoldsNonASCII(t *testing.T) {
	db := memdb(t)
	_, err := db.Exec(`INSERT INTO products(id,name,image,price,unit,description,type)
		VALUES('eclair','Éclair Grape','',30,'kg','Seedless grapes from ÖLAND','fruit')`)
	require.NoError(t, err)
	repo := repos.NewProductRepo(db)

	for _, term := range []string{"Éclair", "éclair", "ÉCLAIR", "öland"} {
		products, total, err := repo.Search(context.Background(), query(1, 12, term, domain.TypeAll))
		require.NoError(t, err)
		require.Equal(t, 1, total, term)
		assert.Equal(t, "eclair", products[0].ID)
	}
}

func TestProductRepo_Get(t *testing.T) {
	repo := repos.NewProductRepo(memdb(t))
	p, err := repo.Get(context.Background(), "banana")
	require.NoError(t, err)
	assert.Equal(t, "Banana", p.Name)
	assert.Equal(t, "dozen", p.Unit)
	assert.Equal(t, 60.0, p.Price)

	_, err = repo.Get(context.Background(), "durian")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestCategoryRepo_List(t *testing.T) {
	cats, err := repos.NewCategoryRepo(memdb(t)).List()
	require.NoError(t, err)
	require.Len(t, cats, 2)
	assert.Equal(t, "Fruits", cats[0].Name)
	assert.Equal(t, "Vegetables", cats[1].Name)
}

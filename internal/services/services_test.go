package services_test

import (
	"context"
	"testing"

	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"fieldbasket/internal/checkout"
	"fieldbasket/internal/errs"
	"fieldbasket/internal/geo"
	"fieldbasket/internal/repos"
	"fieldbasket/internal/services"
)

var shop = geo.Point{Lat: 23.619488, Lng: 53.707794}

func memdb(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := repos.OpenDB(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

type fakeGeocoder struct {
	points   map[string]geo.Point
	err      error
	searches int
}

func (g *fakeGeocoder) Search(_ context.Context, address string) (geo.Point, error) {
	g.searches++
	if g.err != nil {
		return geo.Point{}, g.err
	}
	p, ok := g.points[address]
	if !ok {
		return geo.Point{}, errs.ErrAddressNotFound
	}
	return p, nil
}

func (g *fakeGeocoder) Reverse(_ context.Context, p geo.Point) (string, error) {
	for addr, q := range g.points {
		if q == p {
			return addr, nil
		}
	}
	return "", errs.ErrNoAddress
}

type stack struct {
	db       *sqlx.DB
	catalog  *services.CatalogService
	carts    *services.CartService
	checkout *services.CheckoutService
	geo      *fakeGeocoder
}

func newStack(t *testing.T) stack {
	db := memdb(t)
	prods := repos.NewProductRepo(db)
	g := &fakeGeocoder{points: map[string]geo.Point{
		"Near Market": {Lat: shop.Lat + 0.05, Lng: shop.Lng},
		"Ring Road":   {Lat: shop.Lat + 0.1, Lng: shop.Lng},
		"Desert Camp": {Lat: shop.Lat + 0.3, Lng: shop.Lng},
	}}
	carts := services.NewCartService(repos.NewCartRepo(db), prods)
	policy := checkout.Policy{
		Shop:        shop,
		Eligibility: geo.Eligibility{CutoffKm: 15},
		Surcharge:   geo.Surcharge{FreeRadiusKm: 10, RatePerKm: decimal.NewFromInt(2)},
		Currency:    "AED",
		Phone:       "+916282821603",
	}
	return stack{
		catalog:  services.NewCatalogService(repos.NewCategoryRepo(db), prods, 12),
		db:       db,
		carts:    carts,
		checkout: services.NewCheckoutService(carts, g, policy),
		geo:      g,
	}
}

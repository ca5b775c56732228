package handlers

import (
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"fieldbasket/internal/checkout"
	"fieldbasket/internal/config"
	"fieldbasket/internal/geo"
	"fieldbasket/internal/repos"
	"fieldbasket/internal/services"
)

type Deps struct {
	CategoryHandler *CategoryHandler
	ProductHandler  *ProductHandler
	CartHandler     *CartHandler
	CheckoutHandler *CheckoutHandler
}

// NewDeps wires repos, services and handlers. prods is the catalog backend;
// carts and categories always live in db.
func NewDeps(db *sqlx.DB, cfg config.Config, prods services.ProductStore, g services.Geocoder) *Deps {
	if prods == nil {
		prods = repos.NewProductRepo(db)
	}
	catRepo := repos.NewCategoryRepo(db)
	cartRepo := repos.NewCartRepo(db)

	catalogSvc := services.NewCatalogService(catRepo, prods, cfg.PageSize)
	cartSvc := services.NewCartService(cartRepo, prods)
	checkoutSvc := services.NewCheckoutService(cartSvc, g, Policy(cfg))

	return &Deps{
		CategoryHandler: &CategoryHandler{Catalog: catalogSvc, Cfg: cfg},
		ProductHandler:  &ProductHandler{Catalog: catalogSvc},
		CartHandler:     &CartHandler{Cart: cartSvc},
		CheckoutHandler: &CheckoutHandler{Checkout: checkoutSvc},
	}
}

// Policy builds the delivery policy from configuration.
func Policy(cfg config.Config) checkout.Policy {
	return checkout.Policy{
		Shop:        geo.Point{Lat: cfg.ShopLat, Lng: cfg.ShopLng},
		Eligibility: geo.Eligibility{CutoffKm: cfg.DeliveryCutoffKm},
		Surcharge: geo.Surcharge{
			FreeRadiusKm: cfg.FreeRadiusKm,
			RatePerKm:    decimal.NewFromFloat(cfg.SurchargePerKm),
		},
		Currency: cfg.Currency,
		Phone:    cfg.WhatsAppPhone,
	}
}

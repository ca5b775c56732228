package handlers

import (
	"github.com/gofiber/fiber/v2"

	"fieldbasket/internal/config"
	"fieldbasket/internal/domain"
	"fieldbasket/internal/log"
	"fieldbasket/internal/services"
)

type CategoryHandler struct {
	Catalog *services.CatalogService
	Cfg     config.Config
}

// Home renders the storefront with the first page already filled in. The page
// also carries those products as JSON, which the browser script stores under
// the current key, so going back to it needs no fetch. page, search and type
// in the URL are honoured for deep links.
func (h *CategoryHandler) Home(c *fiber.Ctx) error {
	cats, err := h.Catalog.ListCategories()
	if err != nil {
		return err
	}
	q, ok := productQuery(c)
	if !ok {
		q = domain.ProductQuery{}
	}
	q = h.Catalog.Normalize(q)

	data := fiber.Map{
		"Categories": cats,
		"Search":     q.Search,
		"Type":       q.Type,
		"Page":       q.Page,
		"Limit":      q.Limit,
		"DebounceMs": h.Cfg.SearchDebounce.Milliseconds(),
		"ShopLat":    h.Cfg.ShopLat,
		"ShopLng":    h.Cfg.ShopLng,
		"CutoffKm":   h.Cfg.DeliveryCutoffKm,
		"Currency":   h.Cfg.Currency,
	}
	page, err := h.Catalog.Products(c.UserContext(), q)
	if err != nil {
		log.Error(c, "home.products", err, nil)
		data["Err"] = "Failed to load products"
		data["Products"] = []domain.Product{}
		data["Total"] = 0
		data["TotalPages"] = 0
	} else {
		data["Products"] = page.Products
		data["Total"] = page.Total
		data["TotalPages"] = domain.TotalPages(page.Total, page.Limit)
	}
	return render(c, "home", data)
}

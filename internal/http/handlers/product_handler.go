package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"

	"fieldbasket/internal/domain"
	"fieldbasket/internal/errs"
	"fieldbasket/internal/log"
	"fieldbasket/internal/services"
	"fieldbasket/internal/validate"
)

type ProductHandler struct {
	Catalog *services.CatalogService
}

// productQuery reads page, limit, search and type. Missing or malformed paging
// falls back to the defaults; an unknown type means all.
func productQuery(c *fiber.Ctx) (domain.ProductQuery, bool) {
	search, ok := validate.Search(c.Query("search"))
	if !ok {
		return domain.ProductQuery{}, false
	}
	typ, ok := validate.Type(c.Query("type"))
	if !ok {
		typ = domain.TypeAll
	}
	return domain.ProductQuery{
		Page:   validate.Page(c.Query("page")),
		Limit:  validate.Limit(c.Query("limit"), 0, services.MaxPageSize),
		Search: search,
		Type:   typ,
	}, true
}

// List serves GET /api/products.
func (h *ProductHandler) List(c *fiber.Ctx) error {
	q, ok := productQuery(c)
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "search"})
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid search text"})
	}
	page, err := h.Catalog.Products(c.UserContext(), q)
	if err != nil {
		log.Error(c, "products.list", err, nil)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to fetch products"})
	}
	return c.JSON(page)
}

// Get serves GET /api/products/:id.
func (h *ProductHandler) Get(c *fiber.Ctx) error {
	id, ok := validate.ID(c.Params("id"))
	if !ok {
		log.Security(c, "validation.fail", map[string]any{"field": "product"})
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": errs.ErrNotFound.Error()})
	}
	p, err := h.Catalog.GetProduct(c.UserContext(), id)
	if errors.Is(err, errs.ErrNotFound) {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	if err != nil {
		return fail(c, "products.get", err)
	}
	return c.JSON(p)
}

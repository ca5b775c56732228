package handlers

import (
	"github.com/gofiber/fiber/v2"

	applog "fieldbasket/internal/log"
	"fieldbasket/internal/services"
	"fieldbasket/internal/validate"
)

type CartHandler struct {
	Cart *services.CartService
}

// View serves GET /api/cart.
func (h *CartHandler) View(c *fiber.Ctx) error {
	cv, err := h.Cart.View(ensureSID(c))
	if err != nil {
		return fail(c, "cart.view", err)
	}
	return c.JSON(cv)
}

// Add serves POST /api/cart/items.
func (h *CartHandler) Add(c *fiber.Ctx) error {
	sid := ensureSID(c)
	var req struct {
		ProductID string `json:"productId" form:"productId"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid request body")
	}
	productID, ok := validate.ID(req.ProductID)
	if !ok {
		return badRequest(c, "productId", "missing productId")
	}
	cv, err := h.Cart.Add(c.UserContext(), sid, productID)
	if err != nil {
		return fail(c, "cart.add", err)
	}
	applog.Audit(c, "cart.add", map[string]any{"product_id": productID, "count": cv.Count})
	return c.JSON(cv)
}

// Update serves PATCH /api/cart/items/:id. A quantity of 0 or less removes
// the item.
func (h *CartHandler) Update(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "productId", "missing productId")
	}
	var req struct {
		Quantity *int `json:"quantity" form:"quantity"`
	}
	if err := c.BodyParser(&req); err != nil || req.Quantity == nil {
		return badRequest(c, "quantity", "quantity is required")
	}
	cv, err := h.Cart.Update(sid, productID, validate.ClampQty(*req.Quantity))
	if err != nil {
		return fail(c, "cart.update", err)
	}
	return c.JSON(cv)
}

// Remove serves DELETE /api/cart/items/:id.
func (h *CartHandler) Remove(c *fiber.Ctx) error {
	sid := ensureSID(c)
	productID, ok := validate.ID(c.Params("id"))
	if !ok {
		return badRequest(c, "productId", "missing productId")
	}
	cv, err := h.Cart.Remove(sid, productID)
	if err != nil {
		return fail(c, "cart.remove", err)
	}
	return c.JSON(cv)
}

// Clear serves DELETE /api/cart.
func (h *CartHandler) Clear(c *fiber.Ctx) error {
	cv, err := h.Cart.Clear(ensureSID(c))
	if err != nil {
		return fail(c, "cart.clear", err)
	}
	applog.Audit(c, "cart.clear", nil)
	return c.JSON(cv)
}

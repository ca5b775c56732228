package handlers

import (
	"errors"
	"unicode/utf8"

	"github.com/gofiber/fiber/v2"

	"fieldbasket/internal/errs"
	"fieldbasket/internal/geo"
	applog "fieldbasket/internal/log"
	"fieldbasket/internal/services"
	"fieldbasket/internal/validate"
)

const (
	maxHouseLen   = 40
	maxAddressLen = 200
)

type CheckoutHandler struct {
	Checkout *services.CheckoutService
}

// Place serves POST /api/checkout. It answers the summary and the wa.me link;
// nothing is stored.
func (h *CheckoutHandler) Place(c *fiber.Ctx) error {
	sid := ensureSID(c)

	var req services.CheckoutRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid request body")
	}
	// blank fields are reported by the composer with their own wording
	if utf8.RuneCountInString(req.House) > maxHouseLen {
		return badRequest(c, "house", "House or flat number is too long.")
	}
	if utf8.RuneCountInString(req.Address) > maxAddressLen {
		return badRequest(c, "address", "Delivery location is too long.")
	}
	if req.Location != nil && !req.Location.Valid() {
		return badRequest(c, "location", errs.ErrInvalidLocation.Error())
	}

	out, err := h.Checkout.Checkout(c.UserContext(), sid, req)
	if err != nil {
		return fail(c, "checkout.compose", err)
	}

	fields := map[string]any{
		"lines":       len(out.Order.Lines),
		"subtotal":    out.Order.Subtotal.String(),
		"charge":      out.Order.DeliveryCharge.String(),
		"grand_total": out.Order.GrandTotal.String(),
	}
	if out.Order.DistanceKm != nil {
		fields["distance_km"] = *out.Order.DistanceKm
	}
	if out.LocationWarning != "" {
		fields["location_warning"] = out.LocationWarning
	}
	applog.Audit(c, "checkout.compose", fields)
	return c.JSON(out)
}

// Quote serves POST /api/delivery/quote for coordinates or an address.
func (h *CheckoutHandler) Quote(c *fiber.Ctx) error {
	var req struct {
		Address  string     `json:"address" form:"address"`
		Location *geo.Point `json:"location"`
	}
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "body", "Invalid request body")
	}
	if req.Location == nil {
		addr, ok := validate.Text(req.Address, maxAddressLen)
		if !ok {
			return badRequest(c, "address", "Please enter your delivery location.")
		}
		req.Address = addr
	}
	q, err := h.Checkout.Quote(c.UserContext(), req.Location, req.Address)
	if err != nil {
		return fail(c, "delivery.quote", err)
	}
	return c.JSON(q)
}

// Reverse serves GET /api/location/reverse?lat=&lng=. The quote is returned
// even when no address is known for the point.
func (h *CheckoutHandler) Reverse(c *fiber.Ctx) error {
	p, ok := validate.Coordinates(c.Query("lat"), c.Query("lng"))
	if !ok {
		return badRequest(c, "location", "Unable to retrieve your location.")
	}
	addr, q, err := h.Checkout.ReverseLocation(c.UserContext(), p)
	switch {
	case errors.Is(err, errs.ErrNoAddress):
		applog.Info(c, "location.reverse.empty", nil)
		return c.JSON(fiber.Map{"address": "", "quote": q, "warning": err.Error()})
	case err != nil:
		return fail(c, "location.reverse", err)
	}
	return c.JSON(fiber.Map{"address": addr, "quote": q})
}

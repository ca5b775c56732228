package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"fieldbasket/internal/checkout"
	"fieldbasket/internal/errs"
	applog "fieldbasket/internal/log"
	"fieldbasket/internal/services"
)

// ensureSID returns the session id cookie, issuing one on first visit.
func ensureSID(c *fiber.Ctx) string {
	sid := c.Cookies("sid")
	if _, err := uuid.Parse(sid); err != nil {
		sid = uuid.NewString()
		c.Cookie(&fiber.Cookie{
			Name:     "sid",
			Value:    sid,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
			Secure:   false, // enable true behind TLS
		})
	}
	return sid
}

// fail answers {"error": ...} with the status mapped from err. Server-side
// failures are logged with detail; the client only sees the public message.
func fail(c *fiber.Ctx, action string, err error) error {
	status := errs.GetErrorStatusCode(err)
	body := fiber.Map{"error": services.PublicMessage(err)}

	var fe *checkout.FieldError
	if errors.As(err, &fe) {
		body["field"] = fe.Field
	}
	var oe *checkout.OutOfRangeError
	if errors.As(err, &oe) {
		body["distanceKm"] = oe.DistanceKm
	}

	switch {
	case status >= fiber.StatusInternalServerError:
		applog.Error(c, action, err, nil)
	case status == fiber.StatusBadRequest:
		applog.Security(c, "validation.fail", map[string]any{"action": action, "error": err.Error()})
	default:
		applog.Info(c, action, map[string]any{"status": status, "error": err.Error()})
	}
	return c.Status(status).JSON(body)
}

func badRequest(c *fiber.Ctx, field, msg string) error {
	applog.Security(c, "validation.fail", map[string]any{"field": field})
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg, "field": field})
}

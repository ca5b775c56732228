package handlers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/csrf"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "fieldbasket/internal/log"
)

const friendlyError = "Something went wrong. Please try again."

type AppConfig struct {
	Views     fiber.Views
	StaticDir string
	// RateLimit is the per-IP request budget per minute (default 60).
	RateLimit int
	// GeoRateLimit bounds geocoder-backed calls per IP per 30s (default 15).
	GeoRateLimit int
	AccessLog    bool
	AllowOrigins string
	MaxBodyBytes int
}

func isAPI(c *fiber.Ctx) bool {
	return strings.HasPrefix(c.Path(), "/api/")
}

// ErrorHandler logs err and answers a friendly message: JSON under /api,
// the notfound page elsewhere.
func ErrorHandler(c *fiber.Ctx, err error) error {
	applog.Error(c, "server.error", err, nil)
	if isAPI(c) {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": friendlyError})
	}
	// Avoid leaking internals; best-effort render
	if rerr := c.Status(fiber.StatusInternalServerError).Render("notfound", fiber.Map{
		"Message": friendlyError,
	}); rerr != nil {
		return c.Status(fiber.StatusInternalServerError).SendString(friendlyError)
	}
	return nil
}

// NewApp builds the fiber app with middleware and every route.
func NewApp(d *Deps, ac AppConfig) *fiber.App {
	if ac.RateLimit <= 0 {
		ac.RateLimit = 60
	}
	if ac.GeoRateLimit <= 0 {
		ac.GeoRateLimit = 15
	}
	if ac.MaxBodyBytes <= 0 {
		ac.MaxBodyBytes = 1 << 20 // 1 MiB
	}

	app := fiber.New(fiber.Config{
		Views:        ac.Views,
		BodyLimit:    ac.MaxBodyBytes,
		ErrorHandler: ErrorHandler,
	})

	// ---------- Middlewares ----------
	app.Use(requestid.New())
	if ac.AccessLog {
		app.Use(logger.New(logger.Config{Output: applog.Writer()}))
	}
	app.Use(helmet.New())
	if ac.AllowOrigins != "" {
		app.Use(cors.New(cors.Config{
			AllowOrigins: ac.AllowOrigins,
			AllowMethods: "GET,POST,PATCH,DELETE",
			AllowHeaders: "Content-Type,X-Csrf-Token",
		}))
	}
	app.Use(limiter.New(limiter.Config{
		Max:        ac.RateLimit,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/static/")
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.global.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	}))
	app.Use(csrf.New(csrf.Config{
		KeyLookup:      "header:X-Csrf-Token",
		CookieName:     "csrf_",
		CookieSameSite: "Lax",
		CookieSecure:   false, // set true behind HTTPS
		ContextKey:     "csrf",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			applog.Security(c, "csrf.fail", nil)
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Security check failed. Please refresh and try again."})
		},
	}))

	if ac.StaticDir != "" {
		app.Static("/static", ac.StaticDir)
	}

	// ---------- Pages ----------
	app.Get("/", d.CategoryHandler.Home)

	// ---------- API ----------
	api := app.Group("/api")
	api.Get("/products", d.ProductHandler.List)
	api.Get("/products/:id", d.ProductHandler.Get)

	api.Get("/cart", d.CartHandler.View)
	api.Post("/cart/items", d.CartHandler.Add)
	api.Patch("/cart/items/:id", d.CartHandler.Update)
	api.Delete("/cart/items/:id", d.CartHandler.Remove)
	api.Delete("/cart", d.CartHandler.Clear)

	geoLimiter := limiter.New(limiter.Config{
		Max:        ac.GeoRateLimit,
		Expiration: 30 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP() + "|geo"
		},
		LimitReached: func(c *fiber.Ctx) error {
			applog.Security(c, "rate.geocoder.hit", nil)
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{"error": "rate limit exceeded, retry soon"})
		},
	})
	api.Post("/checkout", geoLimiter, d.CheckoutHandler.Place)
	api.Post("/delivery/quote", geoLimiter, d.CheckoutHandler.Quote)
	api.Get("/location/reverse", geoLimiter, d.CheckoutHandler.Reverse)

	// Health & 404
	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		if isAPI(c) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Resource not found"})
		}
		return c.Status(fiber.StatusNotFound).Render("notfound", fiber.Map{"Message": "Page not found"})
	})
	return app
}

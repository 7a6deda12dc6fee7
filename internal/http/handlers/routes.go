package handlers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"

	applog "techhub/internal/log"
)

type AppOptions struct {
	// Simulated network delays per endpoint; zero disables.
	ProductsLatency time.Duration
	CartLatency     time.Duration
	OrderLatency    time.Duration

	// RateLimit caps requests per IP per minute; zero disables.
	RateLimit int
	AccessLog bool
}

// NewApp builds the mock store API.
func NewApp(d *Deps, opts AppOptions) *fiber.App {
	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
			}
			if code >= fiber.StatusInternalServerError {
				applog.Error(c, "server.error", err, nil)
				return respondError(c, code, "internal_error", "Something went wrong. Please try again.")
			}
			return respondError(c, code, "", err.Error())
		},
	})
	app.Server().MaxRequestBodySize = 1 << 20

	app.Use(recover.New())
	app.Use(requestid.New())
	if opts.AccessLog {
		app.Use(logger.New())
	}
	if opts.RateLimit > 0 {
		app.Use(limiter.New(limiter.Config{
			Max:        opts.RateLimit,
			Expiration: time.Minute,
			LimitReached: func(c *fiber.Ctx) error {
				return reject(c, fiber.StatusTooManyRequests, "rate.limit.hit", nil, "rate_limited", "rate limit exceeded, retry soon")
			},
		}))
	}

	app.Get("/products", latency(opts.ProductsLatency), d.ProductHandler.List)
	app.Get("/cart", latency(opts.CartLatency), d.CartHandler.View)
	app.Post("/cart", latency(opts.CartLatency), d.CartHandler.Add)
	app.Post("/orders", latency(opts.OrderLatency), d.OrderHandler.Place)

	app.Get("/healthz", func(c *fiber.Ctx) error { return c.JSON(fiber.Map{"ok": true}) })
	app.Use(func(c *fiber.Ctx) error {
		return respondError(c, fiber.StatusNotFound, "not_found", "route not found")
	})
	return app
}

// latency delays the request, giving up early if the client goes away.
func latency(d time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if d > 0 {
			t := time.NewTimer(d)
			select {
			case <-t.C:
			case <-c.Context().Done():
				t.Stop()
			}
		}
		return c.Next()
	}
}

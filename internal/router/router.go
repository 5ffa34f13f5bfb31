package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/noah-isme/gema-essay-api/internal/config"
	"github.com/noah-isme/gema-essay-api/internal/handler"
	"github.com/noah-isme/gema-essay-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	EssayHandler     *handler.EssayHandler
	AnalysisHandler  *handler.AnalysisHandler
	AnalyticsHandler *handler.AnalyticsHandler
	JWTMiddleware    fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))

	app.Get("/metrics", observability.MetricsHandler())

	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	essays := app.Group("/api/v2/essays", jwtMiddleware)

	// Static segments first so /progress never reaches the :id routes.
	if deps.AnalyticsHandler != nil {
		deps.AnalyticsHandler.Register(essays)
	}
	if deps.EssayHandler != nil {
		deps.EssayHandler.Register(essays)
	}
	if deps.AnalysisHandler != nil {
		deps.AnalysisHandler.Register(essays)
	}
}

package handlers

import (
	"context"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/service"
)

// NewApp wires the routes. Every request runs under base, so cancelling base
// stops harvests in progress.
func NewApp(base context.Context, appName string, fetcher CommentFetcher, harvester *service.Harvester, runs RunLister) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               appName,
		DisableStartupMessage: true,
	})

	app.Use(logger.New())
	app.Use(func(c *fiber.Ctx) error {
		c.SetUserContext(base)
		return c.Next()
	})

	app.Get("/healthz", func(c *fiber.Ctx) error {
		return c.SendString("ok")
	})

	// Single-shot routes
	app.Get("/first/:user", FirstHandler(fetcher))
	app.Get("/latest/:user", LatestHandler(fetcher))

	// Greedy harvest routes
	app.Get("/latest-greedy/:username?", GreedyHandler(harvester, service.ModeStructured, false))
	app.Get("/before-greedy/:username/:before", GreedyHandler(harvester, service.ModeStructured, true))
	app.Get("/body-latest-greedy/:username?", GreedyHandler(harvester, service.ModeReport, false))
	app.Get("/body-before-greedy/:username/:before", GreedyHandler(harvester, service.ModeReport, true))

	// Run history routes
	app.Get("/runs", RunsHandler(runs))
	app.Get("/runs/summary", RunSummaryHandler(runs))

	return app
}

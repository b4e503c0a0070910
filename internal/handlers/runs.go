package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

// RunLister reads the harvest audit log.
type RunLister interface {
	Recent(ctx context.Context, username string, limit int) ([]model.HarvestRun, error)
	Summary(ctx context.Context) (*model.RunSummary, error)
}

const noRunHistory = "run history is disabled (set DATABASE_URL to enable it)"

func RunsHandler(runs RunLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if runs == nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString(noRunHistory)
		}

		username := strings.Clone(c.Query("username"))
		limit := c.QueryInt("limit", 50)

		list, err := runs.Recent(c.UserContext(), username, limit)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading harvest runs")
		}
		return c.JSON(fiber.Map{"runs": list, "count": len(list)})
	}
}

func RunSummaryHandler(runs RunLister) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if runs == nil {
			return c.Status(fiber.StatusServiceUnavailable).SendString(noRunHistory)
		}

		summary, err := runs.Summary(c.UserContext())
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString("Error loading run summary")
		}
		return c.JSON(summary)
	}
}

package handlers

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

// CommentFetcher performs the single-shot upstream lookups.
type CommentFetcher interface {
	FetchFirst(ctx context.Context, author string) (*model.Page, error)
	FetchLatest(ctx context.Context, author string) (*model.Page, error)
}

// FirstHandler returns the oldest comment of a user, all fields included.
func FirstHandler(fetcher CommentFetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := strings.Clone(c.Params("user"))

		page, err := fetcher.FetchFirst(c.UserContext(), user)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		if page.Error != "" {
			return c.Status(fiber.StatusInternalServerError).SendString(page.Error)
		}

		data := make([]map[string]any, 0, len(page.Data))
		for _, comment := range page.Data {
			data = append(data, comment.Fields())
		}
		return c.JSON(fiber.Map{"data": data})
	}
}

// LatestHandler returns the latest batch of a user's comments, sparse.
func LatestHandler(fetcher CommentFetcher) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user := strings.Clone(c.Params("user"))

		page, err := fetcher.FetchLatest(c.UserContext(), user)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		if page.Error != "" {
			return c.Status(fiber.StatusInternalServerError).SendString(page.Error)
		}

		data := make([]map[string]any, 0, len(page.Data))
		for _, comment := range page.Data {
			data = append(data, comment.Sparse())
		}
		return c.JSON(fiber.Map{"data": data})
	}
}

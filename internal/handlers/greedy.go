package handlers

import (
	"bufio"
	"context"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/service"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/templates"
)

// GreedyHandler harvests a user's comments backwards from now, or from the
// :before path parameter when withBefore is set, within ?timeoutsec seconds.
func GreedyHandler(harvester *service.Harvester, mode service.Mode, withBefore bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		req := service.HarvestRequest{
			Username: strings.Clone(c.Params("username")),
			Budget:   parseBudget(c.Query("timeoutsec")),
			Mode:     mode,
		}
		if withBefore {
			req.Before = parseCursor(c.Params("before"))
		}
		if err := req.Validate(); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}

		if mode == service.ModeReport {
			return streamReport(c, harvester, req)
		}

		proj := service.NewStructuredProjector()
		if _, err := harvester.Harvest(c.UserContext(), req, proj); err != nil {
			return c.Status(fiber.StatusInternalServerError).SendString(err.Error())
		}
		return c.JSON(proj.Output())
	}
}

// streamReport sends the report while it is harvested. The status line is
// gone by the time a transport error can happen, so that error is reported
// inline and the report ends without a footer. A write the client no longer
// accepts cancels the harvest before its next upstream call.
func streamReport(c *fiber.Ctx, harvester *service.Harvester, req service.HarvestRequest) error {
	// c is recycled once the handler returns; the stream writer must not touch it.
	base := c.UserContext()

	c.Set(fiber.HeaderContentType, fiber.MIMETextHTMLCharsetUTF8)
	c.Context().SetBodyStreamWriter(func(w *bufio.Writer) {
		ctx, cancel := context.WithCancel(base)
		defer cancel()

		out := &flushWriter{w: w, cancel: cancel}
		proj := service.NewReportProjector(out)
		if _, err := harvester.Harvest(ctx, req, proj); err != nil {
			_ = templates.BackendError(err.Error()).Render(ctx, out)
		}
	})
	return nil
}

// flushWriter pushes every write to the client and cancels the harvest on
// the first failure.
type flushWriter struct {
	w      *bufio.Writer
	cancel context.CancelFunc
	err    error
}

func (f *flushWriter) Write(p []byte) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n, err := f.w.Write(p)
	if err == nil {
		err = f.w.Flush()
	}
	if err != nil {
		f.err = err
		f.cancel()
	}
	return n, err
}

// parseBudget reads leading decimal digits as whole seconds, so "10s" and
// "1.5" mean 10 and 1. Anything without a positive leading number selects
// the default budget.
func parseBudget(s string) time.Duration {
	n, ok := leadingInt(s)
	if !ok || n <= 0 {
		return 0
	}
	n = min(n, int64(math.MaxInt64/time.Second))
	return time.Duration(n) * time.Second
}

// parseCursor reads unix seconds; anything else starts from now.
func parseCursor(s string) int64 {
	n, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil || n <= 0 {
		return 0
	}
	return n
}

// leadingInt parses an optional sign followed by the leading digits of s,
// ignoring leading whitespace and anything after the digits.
func leadingInt(s string) (int64, bool) {
	s = strings.TrimSpace(s)
	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digits := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digits {
		return 0, false
	}
	n, err := strconv.ParseInt(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

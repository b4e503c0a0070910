package service

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

const (
	DefaultBudget      = 25 * time.Second
	DefaultPageSizeMin = 50
	DefaultPageSizeMax = 59
	recordTimeout      = 5 * time.Second
)

// Mode selects the output projection of a harvest.
type Mode string

const (
	ModeStructured Mode = "structured"
	ModeReport     Mode = "report"
)

// PageFetcher executes one upstream search request.
type PageFetcher interface {
	CommentsURL() string
	FetchPage(ctx context.Context, rawURL string) (*model.Page, error)
}

// RunRecorder stores the audit row of a finished harvest.
type RunRecorder interface {
	SaveRun(ctx context.Context, run *model.HarvestRun) error
}

// HarvesterOptions configures a Harvester. Zero values select defaults.
type HarvesterOptions struct {
	DefaultBudget time.Duration
	// MaxBudget caps caller-supplied budgets; zero means no cap.
	MaxBudget   time.Duration
	PageSizeMin int
	PageSizeMax int
	Recorder    RunRecorder
	Logger      *slog.Logger

	// Now and IntN are replaced in tests.
	Now  func() time.Time
	IntN func(n int) int
}

// HarvestRequest describes one harvest.
type HarvestRequest struct {
	Username string
	// Budget bounds the wall-clock time spent issuing requests; <= 0 uses the default.
	Budget time.Duration
	// Before is the starting cursor in unix seconds; <= 0 starts from now.
	Before int64
	Mode   Mode
}

// Validate reports a request that cannot be harvested.
func (r HarvestRequest) Validate() error {
	if r.Username == "" {
		return fmt.Errorf("%w: no username", ErrInvalidRequest)
	}
	return nil
}

// HarvestResult summarises a finished harvest. Partial results after budget
// expiry or cancellation are normal results, not errors.
type HarvestResult struct {
	Username      string
	StartCursor   int64
	Cursor        int64
	Count         int
	Pages         int
	StopReason    StopReason
	UpstreamError string
	Elapsed       time.Duration
}

// Harvester walks a user's comment history backwards in time, one page per
// request, until the history is exhausted or the budget runs out.
type Harvester struct {
	fetcher     PageFetcher
	recorder    RunRecorder
	logger      *slog.Logger
	budget      time.Duration
	maxBudget   time.Duration
	pageSizeMin int
	pageSizeMax int
	now         func() time.Time
	intN        func(n int) int
}

// NewHarvester creates a new Harvester
func NewHarvester(fetcher PageFetcher, opts HarvesterOptions) *Harvester {
	h := &Harvester{
		fetcher:     fetcher,
		recorder:    opts.Recorder,
		logger:      opts.Logger,
		budget:      opts.DefaultBudget,
		maxBudget:   opts.MaxBudget,
		pageSizeMin: opts.PageSizeMin,
		pageSizeMax: opts.PageSizeMax,
		now:         opts.Now,
		intN:        opts.IntN,
	}
	if h.logger == nil {
		h.logger = slog.Default()
	}
	if h.budget <= 0 {
		h.budget = DefaultBudget
	}
	if h.pageSizeMin <= 0 {
		h.pageSizeMin = DefaultPageSizeMin
	}
	if h.pageSizeMax < h.pageSizeMin {
		h.pageSizeMax = max(h.pageSizeMin, DefaultPageSizeMax)
	}
	h.pageSizeMin = min(h.pageSizeMin, model.MaxPageSize)
	h.pageSizeMax = min(h.pageSizeMax, model.MaxPageSize)
	if h.now == nil {
		h.now = time.Now
	}
	if h.intN == nil {
		h.intN = rand.IntN
	}
	return h
}

// Budget resolves the effective budget for a requested one.
func (h *Harvester) Budget(requested time.Duration) time.Duration {
	b := requested
	if b <= 0 {
		b = h.budget
	}
	if h.maxBudget > 0 && b > h.maxBudget {
		b = h.maxBudget
	}
	return b
}

// StartCursor returns before when positive, otherwise one second past now.
func (h *Harvester) StartCursor(before int64) int64 {
	if before > 0 {
		return before
	}
	return (h.now().UnixMilli() + 1 + 500) / 1000
}

// pageSize spreads requests over [pageSizeMin, pageSizeMax].
func (h *Harvester) pageSize() int {
	span := h.pageSizeMax - h.pageSizeMin + 1
	if span <= 1 {
		return h.pageSizeMin
	}
	return h.pageSizeMin + h.intN(span)
}

// Harvest runs the request loop, folding every page into proj. It checks
// ctx and the budget before each request; a request already in flight may
// overrun the budget. A transport failure aborts the harvest and discards
// what was accumulated.
func (h *Harvester) Harvest(ctx context.Context, req HarvestRequest, proj Projector) (*HarvestResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	start := h.now()
	budget := h.Budget(req.Budget)
	cursor := h.StartCursor(req.Before)

	res := &HarvestResult{
		Username:    req.Username,
		StartCursor: cursor,
	}
	log := h.logger.With("username", req.Username)

	proj.Begin(ctx, req.Username, cursor)

	for {
		if ctx.Err() != nil {
			res.StopReason = StopCancelled
			break
		}
		if h.now().Sub(start) > budget {
			res.StopReason = StopBudget
			break
		}

		url := BuildURL(h.fetcher.CommentsURL(), model.Query{
			Size:   h.pageSize(),
			Author: req.Username,
			Before: cursor,
		})

		page, err := h.fetcher.FetchPage(ctx, url)
		if err != nil {
			if ctx.Err() != nil {
				res.StopReason = StopCancelled
				break
			}
			log.Error("harvest aborted", "cursor", cursor, "pages", res.Pages, "err", err)
			return nil, fmt.Errorf("harvest of %s failed: %w", req.Username, err)
		}
		res.Pages++

		adv := AdvanceCursor(page, cursor)
		switch adv.Reason {
		case StopNone:
			proj.Records(ctx, page.Data)
			log.Debug("page harvested", "cursor", adv.Next, "records", len(page.Data))
		case StopUpstreamError:
			res.UpstreamError = page.Error
			proj.UpstreamError(ctx, page.Error)
			log.Warn("upstream error", "cursor", cursor, "error", page.Error, "status", page.StatusCode)
		case StopExhausted:
			log.Info("no more data", "cursor", cursor)
		case StopNoProgress:
			log.Warn("cursor did not move back", "cursor", cursor,
				"min_created", MinCreated(page.Data), "records", len(page.Data))
		}

		cursor = adv.Next
		if adv.Stop {
			res.StopReason = adv.Reason
			break
		}
	}

	proj.Finish(ctx, cursor)
	res.Cursor = cursor
	res.Count = proj.Count()
	res.Elapsed = h.now().Sub(start)

	h.LogSummary(res)
	h.record(ctx, req, res)

	return res, nil
}

// LogSummary logs the outcome of a harvest.
func (h *Harvester) LogSummary(res *HarvestResult) {
	h.logger.Info("harvest finished",
		"username", res.Username,
		"count", res.Count,
		"pages", res.Pages,
		"start_cursor", res.StartCursor,
		"cursor", res.Cursor,
		"stop_reason", string(res.StopReason),
		"elapsed", res.Elapsed.Round(time.Millisecond).String(),
	)
}

func (h *Harvester) record(ctx context.Context, req HarvestRequest, res *HarvestResult) {
	if h.recorder == nil {
		return
	}

	mode := req.Mode
	if mode == "" {
		mode = ModeStructured
	}
	run := &model.HarvestRun{
		ID:          uuid.New(),
		Username:    res.Username,
		Mode:        string(mode),
		StartCursor: res.StartCursor,
		FinalCursor: res.Cursor,
		Count:       res.Count,
		Pages:       res.Pages,
		StopReason:  string(res.StopReason),
		UpstreamErr: res.UpstreamError,
		ElapsedMS:   res.Elapsed.Milliseconds(),
		CreatedAt:   h.now().UTC(),
	}

	// The caller may be gone already; the audit row is written regardless.
	rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()
	if err := h.recorder.SaveRun(rctx, run); err != nil {
		h.logger.Error("failed to record harvest run", "username", res.Username, "err", err)
	}
}

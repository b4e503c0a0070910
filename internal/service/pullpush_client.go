package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

const (
	DefaultCommentsURL = "https://api.pullpush.io/reddit/search/comment/?"
	defaultTimeout     = 30 * time.Second
	defaultUserAgent   = "pullpush-archive/1.0"
	latestBatchSize    = 50
	maxBodyBytes       = 32 << 20
)

// ClientOptions configures a PullpushClient. Zero values select defaults.
type ClientOptions struct {
	CommentsURL string
	Timeout     time.Duration
	UserAgent   string
	// MinInterval spaces consecutive upstream calls; zero disables pacing.
	MinInterval time.Duration
}

// PullpushClient talks to the pullpush comment search endpoint.
type PullpushClient struct {
	client      *http.Client
	limiter     *rate.Limiter
	commentsURL string
	userAgent   string
}

// NewPullpushClient creates a new pullpush API client
func NewPullpushClient(opts ClientOptions) *PullpushClient {
	if opts.CommentsURL == "" {
		opts.CommentsURL = DefaultCommentsURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}

	limit := rate.Inf
	if opts.MinInterval > 0 {
		limit = rate.Every(opts.MinInterval)
	}

	return &PullpushClient{
		client: &http.Client{
			Timeout: opts.Timeout,
		},
		limiter:     rate.NewLimiter(limit, 1),
		commentsURL: opts.CommentsURL,
		userAgent:   opts.UserAgent,
	}
}

// CommentsURL returns the configured search endpoint.
func (c *PullpushClient) CommentsURL() string {
	return c.commentsURL
}

// BuildURL appends the non-empty parameters of q to base in a fixed order.
// base may already end with "?" or carry its own query string.
func BuildURL(base string, q model.Query) string {
	var parts []string
	add := func(key, val string) {
		parts = append(parts, url.QueryEscape(key)+"="+url.QueryEscape(val))
	}

	if q.Text != "" {
		add("q", q.Text)
	}
	if q.Size != 0 {
		add("size", strconv.Itoa(q.Size))
	}
	if q.Sort != "" {
		add("sort", q.Sort)
	}
	if q.SortType != "" {
		add("sort_type", q.SortType)
	}
	if q.Author != "" {
		add("author", q.Author)
	}
	if q.After != 0 {
		add("after", strconv.FormatInt(q.After, 10))
	}
	if q.Before != 0 {
		add("before", strconv.FormatInt(q.Before, 10))
	}

	if len(parts) == 0 {
		return base
	}

	sep := ""
	switch {
	case strings.HasSuffix(base, "?"), strings.HasSuffix(base, "&"):
	case strings.Contains(base, "?"):
		sep = "&"
	default:
		sep = "?"
	}
	return base + sep + strings.Join(parts, "&")
}

// FetchPage performs one GET and decodes the {data} / {error} envelope.
// The body is decoded whatever the status code, since the API reports its
// own errors as JSON.
func (c *PullpushClient) FetchPage(ctx context.Context, rawURL string) (*model.Page, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: fmt.Errorf("failed to create request: %w", err)}
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &TransportError{URL: rawURL, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, &TransportError{URL: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("failed to read body: %w", err)}
	}

	var page model.Page
	if err := json.Unmarshal(body, &page); err != nil {
		return nil, &TransportError{URL: rawURL, Status: resp.StatusCode, Err: fmt.Errorf("failed to parse response: %w", err)}
	}
	page.StatusCode = resp.StatusCode

	if resp.StatusCode/100 != 2 && page.Error == "" && len(page.Data) == 0 {
		page.Error = fmt.Sprintf("upstream returned HTTP %d", resp.StatusCode)
	}

	return &page, nil
}

// FetchFirst retrieves the oldest comment of author.
func (c *PullpushClient) FetchFirst(ctx context.Context, author string) (*model.Page, error) {
	u := BuildURL(c.commentsURL, model.Query{
		Sort:   model.SortAsc,
		Size:   1,
		Author: author,
	})
	return c.FetchPage(ctx, u)
}

// FetchLatest retrieves the most recent batch of comments of author.
func (c *PullpushClient) FetchLatest(ctx context.Context, author string) (*model.Page, error) {
	u := BuildURL(c.commentsURL, model.Query{
		Sort:   model.SortDesc,
		Size:   latestBatchSize,
		Author: author,
	})
	return c.FetchPage(ctx, u)
}

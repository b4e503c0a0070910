package service

import (
	"context"
	"io"

	"github.com/a-h/templ"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
	"github.com/yonixw/pullpush-io-all-user-messages/internal/templates"
)

// Projector folds harvested pages into one output shape.
type Projector interface {
	// Begin is called once before the first request.
	Begin(ctx context.Context, username string, cursor int64)
	// Records is called with every page that moved the cursor, in order.
	Records(ctx context.Context, comments []model.Comment)
	// UpstreamError is called when the API answered with an error message.
	UpstreamError(ctx context.Context, msg string)
	// Finish is called once with the final cursor, also after cancellation.
	Finish(ctx context.Context, cursor int64)
	// Count is the number of records folded so far.
	Count() int
}

// StructuredOutput is the JSON body of the structured harvest endpoints.
type StructuredOutput struct {
	LatestComment int64            `json:"latest_comment"`
	Data          []map[string]any `json:"data"`
	Username      string           `json:"username"`
	Count         int              `json:"count"`
}

// StructuredProjector collects sparse records. An upstream error becomes an
// {"error": msg} entry in Data. Count only counts comments, so it is one
// less than len(Data) when such an entry is present.
type StructuredProjector struct {
	out StructuredOutput
}

func NewStructuredProjector() *StructuredProjector {
	return &StructuredProjector{out: StructuredOutput{Data: []map[string]any{}}}
}

func (p *StructuredProjector) Begin(_ context.Context, username string, cursor int64) {
	p.out.Username = username
	p.out.LatestComment = cursor
}

func (p *StructuredProjector) Records(_ context.Context, comments []model.Comment) {
	for _, c := range comments {
		p.out.Data = append(p.out.Data, c.Sparse())
	}
	p.out.Count += len(comments)
}

func (p *StructuredProjector) UpstreamError(_ context.Context, msg string) {
	p.out.Data = append(p.out.Data, map[string]any{"error": msg})
}

func (p *StructuredProjector) Finish(_ context.Context, cursor int64) {
	p.out.LatestComment = cursor
}

func (p *StructuredProjector) Count() int {
	return p.out.Count
}

// Output returns the accumulated result.
func (p *StructuredProjector) Output() *StructuredOutput {
	return &p.out
}

// ReportProjector writes the HTML report to w as the harvest goes, one
// entry per record. After the first failed write nothing more is written.
type ReportProjector struct {
	w     io.Writer
	err   error
	count int
}

func NewReportProjector(w io.Writer) *ReportProjector {
	return &ReportProjector{w: w}
}

func (p *ReportProjector) render(ctx context.Context, c templ.Component) {
	if p.err != nil {
		return
	}
	// A component skipped because ctx is done is not a write failure.
	if err := c.Render(ctx, p.w); err != nil && ctx.Err() == nil {
		p.err = err
	}
}

func (p *ReportProjector) Begin(ctx context.Context, username string, cursor int64) {
	p.render(ctx, templates.ReportHeader(username, cursor))
}

func (p *ReportProjector) Records(ctx context.Context, comments []model.Comment) {
	for _, c := range comments {
		p.render(ctx, templates.ReportEntry(c))
		p.count++
	}
}

func (p *ReportProjector) UpstreamError(ctx context.Context, msg string) {
	p.render(ctx, templates.BackendError(msg))
}

// Finish writes the footer even when ctx is done: it carries the cursor to
// resume from.
func (p *ReportProjector) Finish(ctx context.Context, cursor int64) {
	p.render(context.WithoutCancel(ctx), templates.ReportFooter(p.count, cursor))
}

func (p *ReportProjector) Count() int {
	return p.count
}

// Err returns the first write error, if any.
func (p *ReportProjector) Err() error {
	return p.err
}

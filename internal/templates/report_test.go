package templates

import (
	"context"
	"strings"
	"testing"

	"github.com/a-h/templ"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var b strings.Builder
	if err := c.Render(context.Background(), &b); err != nil {
		t.Fatalf("render: %v", err)
	}
	return b.String()
}

func TestISO8601(t *testing.T) {
	if got := ISO8601(0); got != "1970-01-01T00:00:00.000Z" {
		t.Errorf("ISO8601(0) = %q", got)
	}
	if got := ISO8601(1700000000); got != "2023-11-14T22:13:20.000Z" {
		t.Errorf("ISO8601(1700000000) = %q", got)
	}
}

func TestReportHeader(t *testing.T) {
	got := render(t, ReportHeader(`a"b`, 1700000000))
	if !strings.Contains(got, `username: "a&#34;b"`) {
		t.Errorf("username not escaped: %s", got)
	}
	if !strings.Contains(got, "from: 1700000000 or 2023-11-14T22:13:20.000Z") {
		t.Errorf("missing start cursor: %s", got)
	}
}

func TestReportEntry(t *testing.T) {
	got := render(t, ReportEntry(model.Comment{
		Subreddit:  "golang",
		Body:       "a < b",
		Score:      7,
		CreatedUTC: 1700000000,
		HasCreated: true,
		Permalink:  "/r/golang/comments/p/t/c/",
	}))
	want := `<mark>(2023-11-14T22:13:20.000Z) <b>r/golang</b> (7 points) :</mark> <a href="https://www.reddit.com/r/golang/comments/p/t/c/">link</a><br><pre>a &lt; b</pre>`
	if got != want {
		t.Errorf("ReportEntry =\n%s\nwant\n%s", got, want)
	}
}

func TestReportEntryWithoutTimestamp(t *testing.T) {
	got := render(t, ReportEntry(model.Comment{Subreddit: "x", Body: "y"}))
	if !strings.Contains(got, "(unknown date)") {
		t.Errorf("expected unknown date marker: %s", got)
	}
	if strings.Contains(got, "<a href") {
		t.Errorf("no link expected: %s", got)
	}
}

func TestBackendErrorEscapes(t *testing.T) {
	got := render(t, BackendError("<b>down</b>"))
	if got != "<mark>Backend Error:</mark><br><pre>&lt;b&gt;down&lt;/b&gt;</pre>" {
		t.Errorf("BackendError = %q", got)
	}
}

func TestReportFooter(t *testing.T) {
	got := render(t, ReportFooter(3, 1700000100))
	if got != "<mark>Found 3 comments. Continue with date 1700000100 or 2023-11-14T22:15:00.000Z</mark>" {
		t.Errorf("ReportFooter = %q", got)
	}
}

func TestRenderStopsOnCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	var b strings.Builder
	if err := ReportFooter(1, 1).Render(ctx, &b); err == nil || b.Len() != 0 {
		t.Errorf("render with cancelled context: err=%v out=%q", err, b.String())
	}
}

func TestCommentLink(t *testing.T) {
	tests := []struct {
		name string
		c    model.Comment
		want string
	}{
		{"permalink", model.Comment{Permalink: "/r/x/comments/1/t/2/"}, "https://www.reddit.com/r/x/comments/1/t/2/"},
		{"permalink without slash", model.Comment{Permalink: "r/x/comments/1/"}, "https://www.reddit.com/r/x/comments/1/"},
		{"absolute permalink", model.Comment{Permalink: "https://old.reddit.com/r/x/"}, "https://old.reddit.com/r/x/"},
		{"submission parent", model.Comment{ParentID: "t3_abc"}, "https://www.reddit.com/comments/abc/"},
		{"link id wins over comment parent", model.Comment{ParentID: "t1_zzz", LinkID: "t3_abc"}, "https://www.reddit.com/comments/abc/"},
		{"comment parent only", model.Comment{ParentID: "t1_zzz"}, ""},
		{"nothing", model.Comment{}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CommentLink(tt.c); got != tt.want {
				t.Errorf("CommentLink() = %q, want %q", got, tt.want)
			}
		})
	}
}

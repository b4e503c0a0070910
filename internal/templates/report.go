// Package templates renders the human-readable harvest report.
//
//go:generate templ generate
package templates

import (
	"fmt"
	"strings"
	"time"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

const (
	isoLayout  = "2006-01-02T15:04:05.000Z"
	redditHost = "https://www.reddit.com"
)

// ISO8601 formats unix seconds the way browsers print Date.toISOString.
func ISO8601(sec int64) string {
	return time.Unix(sec, 0).UTC().Format(isoLayout)
}

// CommentLink points at the comment itself when the permalink is known,
// otherwise at the submission it was posted under. Empty when neither is known.
func CommentLink(c model.Comment) string {
	if c.Permalink != "" {
		if strings.HasPrefix(c.Permalink, "http://") || strings.HasPrefix(c.Permalink, "https://") {
			return c.Permalink
		}
		return redditHost + "/" + strings.TrimPrefix(c.Permalink, "/")
	}
	for _, id := range []string{c.LinkID, c.ParentID} {
		if post, ok := strings.CutPrefix(id, "t3_"); ok && post != "" {
			return redditHost + "/comments/" + post + "/"
		}
	}
	return ""
}

func entryDate(c model.Comment) string {
	if !c.HasCreated {
		return "unknown date"
	}
	return ISO8601(c.CreatedUTC)
}

func scoreText(c model.Comment) string {
	if c.Score == 0 {
		return ""
	}
	return fmt.Sprintf("(%d points)", c.Score)
}

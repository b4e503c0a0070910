package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
)

// Comment is one reddit comment as returned by the pullpush search API.
// Only CreatedUTC drives the harvest; the other fields are passed through.
type Comment struct {
	ID          string
	Author      string
	Subreddit   string
	SubredditID string
	Body        string
	Score       int64
	Permalink   string
	ParentID    string
	LinkID      string

	// CreatedUTC is valid only when HasCreated is true.
	CreatedUTC int64
	HasCreated bool

	// Extra holds every upstream key not mapped above, decoded with UseNumber.
	Extra map[string]any
}

var knownKeys = map[string]bool{
	"id":           true,
	"author":       true,
	"subreddit":    true,
	"subreddit_id": true,
	"body":         true,
	"score":        true,
	"permalink":    true,
	"parent_id":    true,
	"link_id":      true,
	"created_utc":  true,
}

// UnmarshalJSON decodes a comment leniently: a known key with an unexpected
// type is treated as absent rather than failing the whole page.
func (c *Comment) UnmarshalJSON(b []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(b, &raw); err != nil {
		return fmt.Errorf("failed to decode comment: %w", err)
	}

	*c = Comment{
		ID:          rawString(raw["id"]),
		Author:      rawString(raw["author"]),
		Subreddit:   rawString(raw["subreddit"]),
		SubredditID: rawString(raw["subreddit_id"]),
		Body:        rawString(raw["body"]),
		Permalink:   rawString(raw["permalink"]),
		ParentID:    rawString(raw["parent_id"]),
		LinkID:      rawString(raw["link_id"]),
	}
	c.Score, _ = rawInt(raw["score"])
	c.CreatedUTC, c.HasCreated = rawInt(raw["created_utc"])

	for k, v := range raw {
		if knownKeys[k] {
			continue
		}
		dec := json.NewDecoder(bytes.NewReader(v))
		dec.UseNumber()
		var val any
		if err := dec.Decode(&val); err != nil {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]any)
		}
		c.Extra[k] = val
	}

	return nil
}

// MarshalJSON writes the full record, see Fields.
func (c Comment) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.Fields())
}

// Fields returns every field of the comment, empty ones included.
// created_utc is omitted when the upstream record had none.
func (c Comment) Fields() map[string]any {
	m := make(map[string]any, len(knownKeys)+len(c.Extra))
	for k, v := range c.Extra {
		m[k] = v
	}
	m["id"] = c.ID
	m["author"] = c.Author
	m["subreddit"] = c.Subreddit
	m["subreddit_id"] = c.SubredditID
	m["body"] = c.Body
	m["score"] = c.Score
	m["permalink"] = c.Permalink
	m["parent_id"] = c.ParentID
	m["link_id"] = c.LinkID
	if c.HasCreated {
		m["created_utc"] = c.CreatedUTC
	}
	return m
}

// Sparse returns only the fields carrying a meaningful value: empty strings,
// zero numbers, false and null are dropped.
func (c Comment) Sparse() map[string]any {
	m := make(map[string]any)
	for k, v := range c.Extra {
		if Meaningful(v) {
			m[k] = v
		}
	}
	putString(m, "id", c.ID)
	putString(m, "author", c.Author)
	putString(m, "subreddit", c.Subreddit)
	putString(m, "subreddit_id", c.SubredditID)
	putString(m, "body", c.Body)
	putString(m, "permalink", c.Permalink)
	putString(m, "parent_id", c.ParentID)
	putString(m, "link_id", c.LinkID)
	if c.Score != 0 {
		m["score"] = c.Score
	}
	if c.HasCreated && c.CreatedUTC != 0 {
		m["created_utc"] = c.CreatedUTC
	}
	return m
}

// Meaningful reports whether a decoded JSON value is worth keeping in a
// sparse projection. Arrays and objects are always kept, even when empty.
func Meaningful(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case json.Number:
		f, err := t.Float64()
		return err != nil || f != 0
	case float64:
		return t != 0
	case int:
		return t != 0
	case int64:
		return t != 0
	default:
		return true
	}
}

func putString(m map[string]any, key, val string) {
	if val != "" {
		m[key] = val
	}
}

func rawString(b json.RawMessage) string {
	if len(b) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return ""
	}
	return s
}

// rawInt accepts integer and float encodings; anything else is absent.
func rawInt(b json.RawMessage) (int64, bool) {
	if len(b) == 0 {
		return 0, false
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return 0, false
	}
	if i, err := n.Int64(); err == nil {
		return i, true
	}
	f, err := strconv.ParseFloat(n.String(), 64)
	if err != nil {
		return 0, false
	}
	return int64(f), true
}

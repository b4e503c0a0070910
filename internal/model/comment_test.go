package model

import (
	"encoding/json"
	"testing"
)

func TestCommentUnmarshal(t *testing.T) {
	raw := `{
		"id": "abc",
		"author": "someone",
		"subreddit": "golang",
		"body": "hello",
		"score": 12,
		"created_utc": 1700000000,
		"permalink": "/r/golang/comments/x/y/abc/",
		"parent_id": "t3_x",
		"gilded": 0,
		"distinguished": null,
		"stickied": false,
		"all_awardings": [],
		"retrieved_on": 1700000100
	}`

	var c Comment
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ID != "abc" || c.Author != "someone" || c.Subreddit != "golang" || c.Body != "hello" {
		t.Errorf("unexpected string fields: %+v", c)
	}
	if c.Score != 12 {
		t.Errorf("score = %d, want 12", c.Score)
	}
	if !c.HasCreated || c.CreatedUTC != 1700000000 {
		t.Errorf("created = %d (has=%v), want 1700000000", c.CreatedUTC, c.HasCreated)
	}
	if _, ok := c.Extra["retrieved_on"]; !ok {
		t.Error("expected retrieved_on to be kept in Extra")
	}
	if _, ok := c.Extra["body"]; ok {
		t.Error("known keys must not be duplicated in Extra")
	}
}

func TestCommentCreatedEncodings(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantHas bool
	}{
		{`{"created_utc": 1700000000}`, 1700000000, true},
		{`{"created_utc": 1700000000.0}`, 1700000000, true},
		{`{"created_utc": null}`, 0, false},
		{`{"created_utc": "soon"}`, 0, false},
		{`{}`, 0, false},
	}
	for _, tt := range tests {
		var c Comment
		if err := json.Unmarshal([]byte(tt.raw), &c); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if c.CreatedUTC != tt.want || c.HasCreated != tt.wantHas {
			t.Errorf("%s: got (%d, %v), want (%d, %v)", tt.raw, c.CreatedUTC, c.HasCreated, tt.want, tt.wantHas)
		}
	}
}

func TestCommentUnexpectedTypesAreAbsent(t *testing.T) {
	var c Comment
	if err := json.Unmarshal([]byte(`{"body": 5, "score": "many", "author": null}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Body != "" || c.Score != 0 || c.Author != "" {
		t.Errorf("expected zero values, got %+v", c)
	}
}

func TestSparseDropsFalsyValues(t *testing.T) {
	raw := `{
		"id": "abc",
		"author": "",
		"body": "text",
		"score": 0,
		"created_utc": 1700000000,
		"gilded": 0,
		"edited": false,
		"locked": true,
		"distinguished": null,
		"flair": "",
		"all_awardings": [],
		"ups": 3
	}`
	var c Comment
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got := c.Sparse()
	for _, k := range []string{"author", "score", "gilded", "edited", "distinguished", "flair", "permalink", "parent_id"} {
		if _, ok := got[k]; ok {
			t.Errorf("sparse projection kept falsy field %q", k)
		}
	}
	for _, k := range []string{"id", "body", "created_utc", "locked", "all_awardings", "ups"} {
		if _, ok := got[k]; !ok {
			t.Errorf("sparse projection dropped field %q", k)
		}
	}
	for k, v := range got {
		if !Meaningful(v) {
			t.Errorf("field %q has falsy value %v", k, v)
		}
	}
}

func TestFieldsKeepsEverything(t *testing.T) {
	c := Comment{ID: "x", Body: ""}
	got := c.Fields()
	if _, ok := got["body"]; !ok {
		t.Error("expected empty body in full field set")
	}
	if _, ok := got["created_utc"]; ok {
		t.Error("created_utc must be omitted when the record had none")
	}
}

func TestMeaningful(t *testing.T) {
	tests := []struct {
		v    any
		want bool
	}{
		{nil, false},
		{false, false},
		{true, true},
		{"", false},
		{"x", true},
		{json.Number("0"), false},
		{json.Number("0.0"), false},
		{json.Number("7"), true},
		{float64(0), false},
		{int64(-1), true},
		{[]any{}, true},
		{map[string]any{}, true},
	}
	for _, tt := range tests {
		if got := Meaningful(tt.v); got != tt.want {
			t.Errorf("Meaningful(%#v) = %v, want %v", tt.v, got, tt.want)
		}
	}
}

func TestPageUnmarshal(t *testing.T) {
	tests := []struct {
		raw       string
		wantLen   int
		wantError string
	}{
		{`{"data": [{"id": "a"}, {"id": "b"}]}`, 2, ""},
		{`{"data": []}`, 0, ""},
		{`{"error": "rate limited"}`, 0, "rate limited"},
		{`{"error": {"code": 429}}`, 0, `{"code": 429}`},
		{`{"error": null, "data": [{"id": "a"}]}`, 1, ""},
		{`null`, 0, ""},
	}
	for _, tt := range tests {
		var p Page
		if err := json.Unmarshal([]byte(tt.raw), &p); err != nil {
			t.Fatalf("unmarshal %s: %v", tt.raw, err)
		}
		if len(p.Data) != tt.wantLen || p.Error != tt.wantError {
			t.Errorf("%s: got (%d, %q), want (%d, %q)", tt.raw, len(p.Data), p.Error, tt.wantLen, tt.wantError)
		}
	}
}

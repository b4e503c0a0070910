package model

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// Page is one decoded upstream response: either data or an error message.
type Page struct {
	Data       []Comment
	Error      string
	StatusCode int
}

type pageEnvelope struct {
	Data  []Comment       `json:"data"`
	Error json.RawMessage `json:"error"`
}

// UnmarshalJSON accepts any JSON type for "error" and keeps its text form.
func (p *Page) UnmarshalJSON(b []byte) error {
	var env pageEnvelope
	if err := json.Unmarshal(b, &env); err != nil {
		return fmt.Errorf("failed to decode page: %w", err)
	}
	p.Data = env.Data
	p.Error = errorText(env.Error)
	return nil
}

// Empty reports whether the page carries no records.
func (p *Page) Empty() bool {
	return p == nil || len(p.Data) == 0
}

func errorText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch string(raw) {
	case "null", "false", `""`, "0":
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

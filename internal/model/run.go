package model

import (
	"time"

	"github.com/google/uuid"
)

// HarvestRun is the audit row written after each harvest. It describes the
// run only; harvested comments are never stored.
type HarvestRun struct {
	ID          uuid.UUID `json:"id"`
	Username    string    `json:"username"`
	Mode        string    `json:"mode"`
	StartCursor int64     `json:"start_cursor"`
	FinalCursor int64     `json:"final_cursor"`
	Count       int       `json:"count"`
	Pages       int       `json:"pages"`
	StopReason  string    `json:"stop_reason"`
	UpstreamErr string    `json:"upstream_error,omitempty"`
	ElapsedMS   int64     `json:"elapsed_ms"`
	CreatedAt   time.Time `json:"created_at"`
}

// RunSummary aggregates all recorded runs.
type RunSummary struct {
	TotalRuns     int     `json:"total_runs"`
	TotalComments int     `json:"total_comments"`
	DistinctUsers int     `json:"distinct_users"`
	AverageMS     float64 `json:"average_elapsed_ms"`
	TopUser       string  `json:"top_user,omitempty"`
	TopUserCount  int     `json:"top_user_comments,omitempty"`
}

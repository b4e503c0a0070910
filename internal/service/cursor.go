package service

import (
	"math"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

// NoTimestamp stands in for a missing created_utc while searching for the
// page minimum, so such records never become the next cursor.
const NoTimestamp int64 = math.MaxInt64

// StopReason tells why a harvest ended.
type StopReason string

const (
	StopNone          StopReason = ""
	StopExhausted     StopReason = "exhausted"
	StopUpstreamError StopReason = "upstream_error"
	StopNoProgress    StopReason = "no_progress"
	StopBudget        StopReason = "budget"
	StopCancelled     StopReason = "cancelled"
)

// Advance is the outcome of inspecting one page.
type Advance struct {
	Next   int64
	Stop   bool
	Reason StopReason
}

// AdvanceCursor computes the cursor for the next request from page.
// The cursor never increases: a page whose oldest record is not older than
// previous is a stall and stops the harvest with previous unchanged.
func AdvanceCursor(page *model.Page, previous int64) Advance {
	if page.Empty() {
		reason := StopExhausted
		if page != nil && page.Error != "" {
			reason = StopUpstreamError
		}
		return Advance{Next: previous, Stop: true, Reason: reason}
	}

	next := MinCreated(page.Data)
	if next == NoTimestamp || next <= 0 || next >= previous {
		return Advance{Next: previous, Stop: true, Reason: StopNoProgress}
	}

	return Advance{Next: next}
}

// MinCreated returns the oldest created_utc in comments, or NoTimestamp
// when none has one.
func MinCreated(comments []model.Comment) int64 {
	minTS := NoTimestamp
	for _, c := range comments {
		if c.HasCreated && c.CreatedUTC < minTS {
			minTS = c.CreatedUTC
		}
	}
	return minTS
}

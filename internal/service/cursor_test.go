package service

import (
	"testing"

	"github.com/yonixw/pullpush-io-all-user-messages/internal/model"
)

func at(ts int64) model.Comment {
	return model.Comment{CreatedUTC: ts, HasCreated: true}
}

func TestAdvanceCursor(t *testing.T) {
	const prev int64 = 1700000000

	tests := []struct {
		name     string
		page     *model.Page
		wantNext int64
		wantStop bool
		reason   StopReason
	}{
		{"nil page", nil, prev, true, StopExhausted},
		{"empty page", &model.Page{}, prev, true, StopExhausted},
		{"upstream error", &model.Page{Error: "rate limited"}, prev, true, StopUpstreamError},
		{"minimum wins", &model.Page{Data: []model.Comment{at(prev - 5), at(prev - 50), at(prev - 10)}}, prev - 50, false, StopNone},
		{"missing timestamps ignored", &model.Page{Data: []model.Comment{{}, at(prev - 7), {}}}, prev - 7, false, StopNone},
		{"all timestamps missing", &model.Page{Data: []model.Comment{{}, {}}}, prev, true, StopNoProgress},
		{"zero timestamp", &model.Page{Data: []model.Comment{at(0)}}, prev, true, StopNoProgress},
		{"minimum equals cursor", &model.Page{Data: []model.Comment{at(prev), at(prev + 3)}}, prev, true, StopNoProgress},
		{"minimum above cursor", &model.Page{Data: []model.Comment{at(prev + 3)}}, prev, true, StopNoProgress},
		{"data wins over error", &model.Page{Data: []model.Comment{at(prev - 1)}, Error: "partial"}, prev - 1, false, StopNone},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := AdvanceCursor(tt.page, prev)
			if got.Next != tt.wantNext || got.Stop != tt.wantStop || got.Reason != tt.reason {
				t.Errorf("AdvanceCursor() = %+v, want {Next:%d Stop:%v Reason:%q}", got, tt.wantNext, tt.wantStop, tt.reason)
			}
			if got.Next > prev {
				t.Errorf("cursor increased from %d to %d", prev, got.Next)
			}
		})
	}
}

func TestMinCreated(t *testing.T) {
	if got := MinCreated(nil); got != NoTimestamp {
		t.Errorf("MinCreated(nil) = %d, want NoTimestamp", got)
	}
	got := MinCreated([]model.Comment{at(30), {}, at(20), at(25)})
	if got != 20 {
		t.Errorf("MinCreated() = %d, want 20", got)
	}
}

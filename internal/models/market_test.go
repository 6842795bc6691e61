package models

import (
	"encoding/json"
	"testing"
	"time"
)

func TestFlexFloat64(t *testing.T) {
	tests := []struct {
		input   string
		want    float64
		wantErr bool
	}{
		{`123.45`, 123.45, false},
		{`"123.45"`, 123.45, false},
		{`""`, 0, false},
		{`"N/A"`, 0, false},
		{`"garbage"`, 0, false},
		{`true`, 0, true},
	}
	for _, tt := range tests {
		var f FlexFloat64
		err := json.Unmarshal([]byte(tt.input), &f)
		if tt.wantErr {
			if err == nil {
				t.Errorf("Unmarshal(%s): expected error", tt.input)
			}
			continue
		}
		if err != nil {
			t.Errorf("Unmarshal(%s): %v", tt.input, err)
			continue
		}
		if float64(f) != tt.want {
			t.Errorf("Unmarshal(%s) = %v, want %v", tt.input, float64(f), tt.want)
		}
	}
}

func TestQuotePriceCandidates(t *testing.T) {
	q := &Quote{
		RegularMarketPrice: 100,
		PostMarketPrice:    101,
		PreMarketPrice:     102,
		PreviousClose:      99,
	}
	got := q.PriceCandidates()
	want := []float64{100, 101, 102, 99}
	if len(got) != len(want) {
		t.Fatalf("got %d candidates, want %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("candidate[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestChartLatestClose(t *testing.T) {
	day := func(d int, close float64) DailyBar {
		return DailyBar{Date: time.Date(2024, 5, d, 0, 0, 0, 0, time.UTC), Close: close}
	}

	c := &ChartResponse{Bars: []DailyBar{day(1, 100), day(2, 101), day(3, 0)}}
	got, ok := c.LatestClose()
	if !ok || got != 101 {
		t.Errorf("LatestClose = %v, %v; want 101, true", got, ok)
	}

	empty := &ChartResponse{}
	if _, ok := empty.LatestClose(); ok {
		t.Error("LatestClose on empty window should report not ok")
	}

	allZero := &ChartResponse{Bars: []DailyBar{day(1, 0), day(2, 0)}}
	if _, ok := allZero.LatestClose(); ok {
		t.Error("LatestClose with no positive closes should report not ok")
	}
}

package models

import "testing"

func TestRound2(t *testing.T) {
	tests := []struct {
		input float64
		want  float64
	}{
		{4250.351, 4250.35},
		{100.006, 100.01},
		{13.634999, 13.63},
		{-8.335, -8.33},
		{0, 0},
	}
	for _, tt := range tests {
		got := Round2(tt.input)
		if got != tt.want {
			t.Errorf("Round2(%v) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestPortfolioSummary(t *testing.T) {
	p := &Portfolio{
		Holdings: []Holding{
			{TickerSymbol: "HAL", PriceFresh: true},
			{TickerSymbol: "BANKBARODA", PriceFresh: true},
			{TickerSymbol: UnknownTicker},
		},
		TotalInvestment:   155000,
		TotalCurrentValue: 166759.45,
	}

	s := p.Summary()
	if s.TotalHoldings != 3 {
		t.Errorf("TotalHoldings = %d, want 3", s.TotalHoldings)
	}
	if s.StalePrices != 1 {
		t.Errorf("StalePrices = %d, want 1", s.StalePrices)
	}
	if s.TotalCurrentValue != 166759.45 {
		t.Errorf("TotalCurrentValue = %v, want 166759.45", s.TotalCurrentValue)
	}
}

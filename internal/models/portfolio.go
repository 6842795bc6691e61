// Package models defines data structures for Nivesh
package models

import (
	"math"
	"time"
)

// UnknownTicker is the sentinel assigned when neither ISIN nor hint resolves.
// The price fetcher short-circuits it straight to the fallback price.
const UnknownTicker = "UNKNOWN"

// Round2 rounds a monetary or percentage value to 2 decimal places.
func Round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// Holding represents a single portfolio position extracted from a demat
// statement and enriched with market data.
type Holding struct {
	StockName    string `json:"stock_name"`
	ISIN         string `json:"isin,omitempty"`
	TickerSymbol string `json:"ticker_symbol"` // canonical NSE symbol, assigned by the resolver
	Sector       string `json:"sector,omitempty"`

	Quantity    float64 `json:"quantity"`
	AvgBuyPrice float64 `json:"avg_buy_price"`
	// BuyPrice is an alternate cost-basis field some statements use; the
	// enrichment engine coalesces it into AvgBuyPrice when that is zero.
	BuyPrice      float64 `json:"buy_price,omitempty"`
	InvestedValue float64 `json:"invested_value"`

	// Market fields, recomputed on every enrichment pass.
	CurrentPrice  float64 `json:"current_price"`
	CurrentValue  float64 `json:"current_value"`
	PnLAbsolute   float64 `json:"pnl_absolute"`
	PnLPercentage float64 `json:"pnl_percentage"`

	// PriceFresh records whether the last enrichment obtained a live price.
	// False means CurrentPrice was pinned to AvgBuyPrice, which makes the
	// position look flat; consumers use this flag to tell "flat" from
	// "stale" rather than inspecting the numbers.
	PriceFresh bool `json:"price_fresh"`
}

// Portfolio is a full enriched snapshot: an ordered sequence of holdings plus
// aggregate totals derived from them. Snapshots are immutable once persisted;
// every refresh produces a new one.
type Portfolio struct {
	ID                 string    `json:"id"`
	Holdings           []Holding `json:"holdings"`
	TotalInvestment    float64   `json:"total_investment"`
	TotalCurrentValue  float64   `json:"total_current_value"`
	TotalPnL           float64   `json:"total_pnl"`
	TotalPnLPercentage float64   `json:"total_pnl_percentage"`
	EnrichedAt         time.Time `json:"enriched_at"`
	CreatedAt          time.Time `json:"created_at"`
}

// PortfolioSummary is the condensed view returned by the summary endpoint
// and fed to the chat agent as context.
type PortfolioSummary struct {
	TotalHoldings      int     `json:"total_holdings"`
	TotalInvestment    float64 `json:"total_investment"`
	TotalCurrentValue  float64 `json:"total_current_value"`
	TotalPnL           float64 `json:"total_pnl"`
	TotalPnLPercentage float64 `json:"total_pnl_percentage"`
	StalePrices        int     `json:"stale_prices"` // holdings where PriceFresh is false
}

// Summary derives the condensed view from a snapshot.
func (p *Portfolio) Summary() PortfolioSummary {
	s := PortfolioSummary{
		TotalHoldings:      len(p.Holdings),
		TotalInvestment:    p.TotalInvestment,
		TotalCurrentValue:  p.TotalCurrentValue,
		TotalPnL:           p.TotalPnL,
		TotalPnLPercentage: p.TotalPnLPercentage,
	}
	for _, h := range p.Holdings {
		if !h.PriceFresh {
			s.StalePrices++
		}
	}
	return s
}

package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/models"
	"github.com/rsmishra/nivesh/internal/resolver"
)

// toolError encodes a failure as tool output so the model can recover
// instead of the conversation aborting.
func toolError(format string, args ...interface{}) (string, error) {
	out, _ := json.Marshal(map[string]string{"error": fmt.Sprintf(format, args...)})
	return string(out), nil
}

func toolJSON(v interface{}) (string, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return toolError("failed to encode result: %v", err)
	}
	return string(out), nil
}

// tools builds the callable tool set exposed to the chat agent.
func (s *Service) tools() []interfaces.ToolDefinition {
	return []interfaces.ToolDefinition{
		{
			Name:        "get_portfolio_summary",
			Description: "Get overall portfolio summary: total investment, current value, P&L, top gainers and losers. Use for questions about overall performance.",
			Handler:     s.toolPortfolioSummary,
		},
		{
			Name:        "get_holding_details",
			Description: "Get full details of a specific holding in the portfolio by stock name or ticker.",
			Parameters: map[string]string{
				"stock_name": "Stock name or ticker to look up, e.g. 'HAL' or 'HINDUSTAN AERONAUTICS'",
			},
			Handler: s.toolHoldingDetails,
		},
		{
			Name:        "get_sector_allocation",
			Description: "Get the portfolio's current value broken down by sector.",
			Handler:     s.toolSectorAllocation,
		},
		{
			Name:        "get_live_price",
			Description: "Get the latest market price for an NSE ticker, whether or not it is in the portfolio.",
			Parameters: map[string]string{
				"ticker": "NSE ticker symbol, e.g. 'RELIANCE' or 'TCS'",
			},
			Handler: s.toolLivePrice,
		},
		{
			Name:        "get_price_history",
			Description: "Get recent daily closing prices for an NSE ticker.",
			Parameters: map[string]string{
				"ticker": "NSE ticker symbol, e.g. 'HAL'",
			},
			Handler: s.toolPriceHistory,
		},
	}
}

func (s *Service) toolPortfolioSummary(ctx context.Context, _ map[string]string) (string, error) {
	portfolio, err := s.portfolios.GetLatestSnapshot(ctx)
	if err != nil {
		return toolError("no portfolio data found, upload a statement first")
	}

	sorted := append([]models.Holding(nil), portfolio.Holdings...)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].PnLPercentage > sorted[j].PnLPercentage
	})

	type mover struct {
		Name          string  `json:"name"`
		Ticker        string  `json:"ticker"`
		PnLPercentage float64 `json:"pnl_percentage"`
	}
	var gainers, losers []mover
	for i := 0; i < len(sorted) && i < 3; i++ {
		if sorted[i].PnLPercentage > 0 {
			gainers = append(gainers, mover{sorted[i].StockName, sorted[i].TickerSymbol, sorted[i].PnLPercentage})
		}
	}
	for i := len(sorted) - 1; i >= 0 && len(losers) < 3; i-- {
		if sorted[i].PnLPercentage < 0 {
			losers = append(losers, mover{sorted[i].StockName, sorted[i].TickerSymbol, sorted[i].PnLPercentage})
		}
	}

	return toolJSON(map[string]interface{}{
		"summary":     portfolio.Summary(),
		"top_gainers": gainers,
		"top_losers":  losers,
	})
}

func (s *Service) toolHoldingDetails(ctx context.Context, args map[string]string) (string, error) {
	query := strings.ToUpper(strings.TrimSpace(args["stock_name"]))
	if query == "" {
		return toolError("stock_name is required")
	}

	portfolio, err := s.portfolios.GetLatestSnapshot(ctx)
	if err != nil {
		return toolError("no portfolio data found, upload a statement first")
	}

	var matching []models.Holding
	for _, h := range portfolio.Holdings {
		if strings.Contains(strings.ToUpper(h.TickerSymbol), query) ||
			strings.Contains(strings.ToUpper(h.StockName), query) {
			matching = append(matching, h)
		}
	}

	if len(matching) == 0 {
		return toolError("no holding found matching %q", args["stock_name"])
	}
	return toolJSON(matching)
}

func (s *Service) toolSectorAllocation(ctx context.Context, _ map[string]string) (string, error) {
	portfolio, err := s.portfolios.GetLatestSnapshot(ctx)
	if err != nil {
		return toolError("no portfolio data found, upload a statement first")
	}

	sectors := map[string]float64{}
	for _, h := range portfolio.Holdings {
		sector := h.Sector
		if sector == "" {
			sector = "Unknown"
		}
		sectors[sector] += h.CurrentValue
	}

	type allocation struct {
		Sector    string  `json:"sector"`
		Value     float64 `json:"value"`
		WeightPct float64 `json:"weight_pct"`
	}
	allocations := make([]allocation, 0, len(sectors))
	for sector, value := range sectors {
		a := allocation{Sector: sector, Value: models.Round2(value)}
		if portfolio.TotalCurrentValue > 0 {
			a.WeightPct = models.Round2(value / portfolio.TotalCurrentValue * 100)
		}
		allocations = append(allocations, a)
	}
	sort.Slice(allocations, func(i, j int) bool {
		return allocations[i].Value > allocations[j].Value
	})

	return toolJSON(allocations)
}

func (s *Service) toolLivePrice(ctx context.Context, args map[string]string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(args["ticker"]))
	if ticker == "" {
		return toolError("ticker is required")
	}

	price, fresh := s.fetcher.FetchPrice(ctx, ticker, 0)
	if !fresh {
		return toolError("no live price available for %s", ticker)
	}

	return toolJSON(map[string]interface{}{
		"ticker": ticker,
		"symbol": resolver.YahooSymbol(ticker),
		"price":  price,
	})
}

func (s *Service) toolPriceHistory(ctx context.Context, args map[string]string) (string, error) {
	ticker := strings.ToUpper(strings.TrimSpace(args["ticker"]))
	if ticker == "" {
		return toolError("ticker is required")
	}

	chart, err := s.market.GetDailyBars(ctx, resolver.YahooSymbol(ticker), 5)
	if err != nil {
		return toolError("no history available for %s: %v", ticker, err)
	}

	type day struct {
		Date  string  `json:"date"`
		Close float64 `json:"close"`
	}
	days := make([]day, 0, len(chart.Bars))
	for _, bar := range chart.Bars {
		if bar.Close > 0 {
			days = append(days, day{Date: bar.Date.Format("2006-01-02"), Close: models.Round2(bar.Close)})
		}
	}

	return toolJSON(map[string]interface{}{"ticker": ticker, "closes": days})
}

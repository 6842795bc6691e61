// Package market provides tiered price retrieval over the market-data provider.
package market

import (
	"context"
	"strings"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/models"
	"github.com/rsmishra/nivesh/internal/resolver"
)

// historyWindowDays is the trailing window scanned for the most recent
// daily close when live quotes are unavailable.
const historyWindowDays = 5

// priceSource attempts one data tier for a symbol. It returns (price, true)
// only for a strictly positive price; anything else means "source did not
// answer" and the fetcher moves on.
type priceSource func(ctx context.Context, symbol string) (float64, bool)

// Fetcher retrieves the most recent tradable price for a symbol from a
// tiered sequence of sources. It never returns an error: total failure
// yields the caller-supplied fallback with fresh == false.
type Fetcher struct {
	client  interfaces.MarketDataClient
	logger  *common.Logger
	sources []priceSource
}

// NewFetcher creates a price fetcher over the given market-data client.
func NewFetcher(client interfaces.MarketDataClient, logger *common.Logger) *Fetcher {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	f := &Fetcher{client: client, logger: logger}
	f.sources = []priceSource{
		f.fromQuote,
		f.fromPriceSummary,
		f.fromDailyBars,
	}
	return f
}

// FetchPrice tries each source in order for the NSE symbol, then for the BSE
// equivalent when the symbol carries the .NS suffix. Empty tickers and the
// UNKNOWN sentinel short-circuit straight to the fallback.
func (f *Fetcher) FetchPrice(ctx context.Context, ticker string, fallback float64) (float64, bool) {
	if ticker == "" || ticker == models.UnknownTicker {
		return fallback, false
	}

	symbol := resolver.YahooSymbol(ticker)

	if price, ok := f.trySources(ctx, symbol); ok {
		return price, true
	}

	// Thinly traded instruments sometimes only quote on the BSE.
	if strings.HasSuffix(symbol, ".NS") {
		bseSymbol := strings.TrimSuffix(symbol, ".NS") + ".BO"
		if price, ok := f.trySources(ctx, bseSymbol); ok {
			return price, true
		}
	}

	f.logger.Warn().Str("symbol", symbol).Msg("All price sources failed, using fallback")
	return fallback, false
}

func (f *Fetcher) trySources(ctx context.Context, symbol string) (float64, bool) {
	for _, source := range f.sources {
		if price, ok := source(ctx, symbol); ok {
			return models.Round2(price), true
		}
	}
	return 0, false
}

func (f *Fetcher) fromQuote(ctx context.Context, symbol string) (float64, bool) {
	quote, err := f.client.GetQuote(ctx, symbol)
	if err != nil {
		f.logger.Debug().Err(err).Str("symbol", symbol).Msg("Quote source failed")
		return 0, false
	}
	return firstPositive(quote.PriceCandidates())
}

func (f *Fetcher) fromPriceSummary(ctx context.Context, symbol string) (float64, bool) {
	quote, err := f.client.GetPriceSummary(ctx, symbol)
	if err != nil {
		f.logger.Debug().Err(err).Str("symbol", symbol).Msg("Price summary source failed")
		return 0, false
	}
	return firstPositive(quote.PriceCandidates())
}

func (f *Fetcher) fromDailyBars(ctx context.Context, symbol string) (float64, bool) {
	chart, err := f.client.GetDailyBars(ctx, symbol, historyWindowDays)
	if err != nil {
		f.logger.Debug().Err(err).Str("symbol", symbol).Msg("Daily bars source failed")
		return 0, false
	}
	return chart.LatestClose()
}

// firstPositive returns the first strictly positive value, scanning in
// priority order. Zero, negative and NaN-decoded-to-zero values are skipped.
func firstPositive(candidates []float64) (float64, bool) {
	for _, price := range candidates {
		if price > 0 {
			return price, true
		}
	}
	return 0, false
}

// Ensure Fetcher implements PriceFetcher
var _ interfaces.PriceFetcher = (*Fetcher)(nil)

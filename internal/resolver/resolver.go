package resolver

import (
	"strings"

	"github.com/rsmishra/nivesh/internal/common"
)

// knownSuffixes are the exchange suffixes recognised during normalization
// and by YahooSymbol. NSE first, then BSE.
var knownSuffixes = []string{".NS", ".BO"}

// Resolver resolves raw identifiers to canonical NSE symbols using injected
// read-only tables.
type Resolver struct {
	tables Tables
	logger *common.Logger
}

// New creates a Resolver over the given tables.
func New(tables Tables, logger *common.Logger) *Resolver {
	if logger == nil {
		logger = common.NewSilentLogger()
	}
	r := &Resolver{tables: tables, logger: logger}
	r.logger.Debug().
		Int("equity", len(tables.Equity)).
		Int("funds", len(tables.Funds)).
		Int("fixes", len(tables.Fixes)).
		Msg("Resolver tables loaded")
	return r
}

// Resolve maps an ISIN and/or ticker hint to a canonical ticker.
//
// Precedence, first match wins:
//  1. ISIN in the fund table — returned verbatim (already suffixed).
//  2. ISIN in the equity master list — root ticker, no suffix.
//  3. Ticker hint, normalized, through the correction table; an uncorrected
//     hint is returned normalized.
//
// ISIN always beats the hint: it is globally unique while hints come from
// error-prone text extraction. Returns ("", false) when nothing matches;
// resolution never fails.
func (r *Resolver) Resolve(isin, tickerHint string) (string, bool) {
	if isin != "" {
		if symbol, ok := r.tables.Funds[isin]; ok {
			return symbol, true
		}
		if ticker, ok := r.tables.Equity[isin]; ok {
			return ticker, true
		}
	}

	if tickerHint != "" {
		clean := normalizeHint(tickerHint)
		if clean == "" {
			return "", false
		}
		if fixed, ok := r.tables.Fixes[clean]; ok {
			return fixed, true
		}
		return clean, true
	}

	return "", false
}

// normalizeHint trims, uppercases and strips known exchange suffixes.
// Only trailing suffixes are removed; a dot-NS or dot-BO sequence inside
// the ticker body is part of the name and stays.
func normalizeHint(hint string) string {
	clean := strings.ToUpper(strings.TrimSpace(hint))
	for stripped := true; stripped; {
		stripped = false
		for _, suffix := range knownSuffixes {
			if strings.HasSuffix(clean, suffix) {
				clean = strings.TrimSuffix(clean, suffix)
				stripped = true
			}
		}
	}
	return clean
}

// YahooSymbol converts a root ticker to the exchange-suffixed form the
// market-data provider expects. A ticker already carrying a recognised
// suffix is returned unchanged, so the function is idempotent. Empty in,
// empty out.
func YahooSymbol(ticker string) string {
	if ticker == "" {
		return ""
	}

	for _, suffix := range knownSuffixes {
		if strings.HasSuffix(ticker, suffix) {
			return ticker
		}
	}

	return ticker + ".NS"
}

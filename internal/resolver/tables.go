// Package resolver maps statement identifiers (ISIN codes, free-text ticker
// hints) to canonical NSE symbols.
package resolver

import (
	"encoding/json"
	"fmt"
	"os"
)

// tickerFixes corrects ticker hints the statement extractor gets wrong in
// predictable ways: abbreviations, legacy names, brand names. Curated, not a
// fuzzy matcher.
var tickerFixes = map[string]string{
	"ART":        "ANANDRATHI",
	"ARATHI":     "ANANDRATHI",
	"BARODA":     "BANKBARODA",
	"BOB":        "BANKBARODA",
	"CANB":       "CANBK",
	"JFS":        "JIOFIN",
	"JIOFINANCE": "JIOFIN",
	"ONE97":      "PAYTM",
	"LIC":        "LICI",
	"BHSL":       "BAJAJHIND",
	"BFIL":       "BALUFORGE",
	"AZE":        "AZAD",
	"ETNL":       "ETERNAL",
	"MOFSL":      "MOTILALOFS",
	"NSDL":       "NSDL",
}

// fundSymbols maps ETF/fund ISINs to full Yahoo symbols. Funds need the full
// suffixed symbol because their naming does not follow the equity-root
// convention. Takes precedence over the equity master list.
var fundSymbols = map[string]string{
	"INF247L01DJ0": "MODEFENCE.NS",
	"INF247L01EV3": "MOCAPITAL.NS",
	"INF204KB17I5": "GOLDBEES.NS",
	"INF204KC1402": "SILVERBEES.NS",
}

// Tables holds the identifier lookup tables. Built once at startup and
// treated as immutable afterwards; concurrent readers need no locking.
type Tables struct {
	// Equity maps ISIN to NSE root ticker, sourced from the exchange
	// master list (refreshed out-of-band).
	Equity map[string]string
	// Funds maps ETF/fund ISIN to a full exchange-suffixed symbol.
	Funds map[string]string
	// Fixes maps a normalized ticker hint to its corrected root.
	Fixes map[string]string
}

// DefaultTables returns tables with the curated fund and fix entries and an
// empty equity map.
func DefaultTables() Tables {
	return Tables{
		Equity: map[string]string{},
		Funds:  fundSymbols,
		Fixes:  tickerFixes,
	}
}

// LoadTables builds the lookup tables, reading the equity master list from a
// JSON file of ISIN -> NSE symbol. A missing or unreadable file is an error;
// callers that can run without equity mappings use DefaultTables instead.
func LoadTables(equityMappingPath string) (Tables, error) {
	t := DefaultTables()

	data, err := os.ReadFile(equityMappingPath)
	if err != nil {
		return t, fmt.Errorf("failed to read ISIN mapping %s: %w", equityMappingPath, err)
	}

	if err := json.Unmarshal(data, &t.Equity); err != nil {
		return t, fmt.Errorf("failed to parse ISIN mapping %s: %w", equityMappingPath, err)
	}

	return t, nil
}

package resolver

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testTables() Tables {
	t := DefaultTables()
	t.Equity = map[string]string{
		"INE066F01020": "HAL",
		"INE040A01034": "HDFCBANK",
		// Same ISIN as the GOLDBEES fund entry — the fund table must win.
		"INF204KB17I5": "NIPPONGOLD",
	}
	return t
}

func TestResolvePrecedence(t *testing.T) {
	r := New(testTables(), nil)

	tests := []struct {
		name string
		isin string
		hint string
		want string
		ok   bool
	}{
		{name: "fund table wins over equity table", isin: "INF204KB17I5", want: "GOLDBEES.NS", ok: true},
		{name: "equity ISIN returns root ticker", isin: "INE066F01020", want: "HAL", ok: true},
		{name: "ISIN beats hint", isin: "INE040A01034", hint: "HDFC", want: "HDFCBANK", ok: true},
		{name: "unknown ISIN falls through to hint", isin: "INE999Z99999", hint: "RELIANCE", want: "RELIANCE", ok: true},
		{name: "hint correction", hint: "BOB", want: "BANKBARODA", ok: true},
		{name: "hint correction JFS", hint: "JFS", want: "JIOFIN", ok: true},
		{name: "hint normalized before correction", hint: "  bob.ns ", want: "BANKBARODA", ok: true},
		{name: "uncorrected hint returned normalized", hint: "tcs.NS", want: "TCS", ok: true},
		{name: "suffix stripped BSE", hint: "INFY.BO", want: "INFY", ok: true},
		{name: "stacked suffixes stripped", hint: "TCS.NS.NS", want: "TCS", ok: true},
		{name: "suffix-like sequence mid-name kept", hint: "ABC.NSE", want: "ABC.NSE", ok: true},
		{name: "nothing to resolve", ok: false},
		{name: "whitespace-only hint", hint: "   ", ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := r.Resolve(tt.isin, tt.hint)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveFundSymbolVerbatim(t *testing.T) {
	r := New(DefaultTables(), nil)

	got, ok := r.Resolve("INF204KC1402", "")
	require.True(t, ok)
	// Fund symbols come back with their suffix intact.
	assert.Equal(t, "SILVERBEES.NS", got)
}

func TestYahooSymbol(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"HAL", "HAL.NS"},
		{"GOLDBEES.NS", "GOLDBEES.NS"},
		{"INFY.BO", "INFY.BO"},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, YahooSymbol(tt.in))
	}
}

func TestYahooSymbolIdempotent(t *testing.T) {
	for _, root := range []string{"HAL", "BANKBARODA", "TCS.NS", "X.BO", ""} {
		once := YahooSymbol(root)
		assert.Equal(t, once, YahooSymbol(once))
	}
}

func TestLoadTables(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "isin_mapping.json")

	mapping := map[string]string{"INE066F01020": "HAL"}
	data, err := json.Marshal(mapping)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, data, 0644))

	tables, err := LoadTables(path)
	require.NoError(t, err)

	assert.Equal(t, "HAL", tables.Equity["INE066F01020"])
	// Curated tables ride along regardless of the file contents.
	assert.Equal(t, "GOLDBEES.NS", tables.Funds["INF204KB17I5"])
	assert.Equal(t, "BANKBARODA", tables.Fixes["BOB"])
}

func TestLoadTablesMissingFile(t *testing.T) {
	tables, err := LoadTables("no/such/file.json")
	assert.Error(t, err)
	// Curated entries are still usable by callers that tolerate the error.
	assert.NotEmpty(t, tables.Funds)
}

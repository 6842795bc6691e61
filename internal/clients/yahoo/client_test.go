package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(WithBaseURL(srv.URL), WithUnlimitedRate())
}

func TestGetQuote(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v7/finance/quote", r.URL.Path)
		assert.Equal(t, "HAL.NS", r.URL.Query().Get("symbols"))
		w.Write([]byte(`{"quoteResponse":{"result":[{
			"symbol":"HAL.NS",
			"regularMarketPrice":4250.35,
			"regularMarketPreviousClose":4210.10,
			"currency":"INR",
			"fullExchangeName":"NSE"
		}],"error":null}}`))
	})

	quote, err := client.GetQuote(context.Background(), "HAL.NS")
	require.NoError(t, err)

	assert.Equal(t, "HAL.NS", quote.Symbol)
	assert.Equal(t, 4250.35, quote.RegularMarketPrice)
	assert.Equal(t, 4210.10, quote.PreviousClose)
	assert.Equal(t, "INR", quote.Currency)
}

func TestGetQuoteStringPrice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[{
			"symbol":"X.NS","regularMarketPrice":"101.50","postMarketPrice":"N/A"
		}],"error":null}}`))
	})

	quote, err := client.GetQuote(context.Background(), "X.NS")
	require.NoError(t, err)
	assert.Equal(t, 101.50, quote.RegularMarketPrice)
	assert.Equal(t, 0.0, quote.PostMarketPrice)
}

func TestGetQuoteEmptyResult(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"quoteResponse":{"result":[],"error":null}}`))
	})

	_, err := client.GetQuote(context.Background(), "NOPE.NS")
	assert.Error(t, err)
}

func TestGetQuoteHTTPError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not found", http.StatusNotFound)
	})

	_, err := client.GetQuote(context.Background(), "NOPE.NS")
	require.Error(t, err)

	apiErr, ok := err.(*APIError)
	require.True(t, ok)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
}

func TestGetPriceSummary(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v10/finance/quoteSummary/GOLDBEES.NS", r.URL.Path)
		assert.Equal(t, "price", r.URL.Query().Get("modules"))
		w.Write([]byte(`{"quoteSummary":{"result":[{"price":{
			"symbol":"GOLDBEES.NS",
			"regularMarketPrice":{"raw":81.42,"fmt":"81.42"},
			"regularMarketPreviousClose":{"raw":80.95,"fmt":"80.95"},
			"currency":"INR","exchangeName":"NSE"
		}}],"error":null}}`))
	})

	quote, err := client.GetPriceSummary(context.Background(), "GOLDBEES.NS")
	require.NoError(t, err)

	assert.Equal(t, 81.42, quote.RegularMarketPrice)
	assert.Equal(t, 80.95, quote.PreviousClose)
}

func TestGetDailyBars(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v8/finance/chart/HAL.NS", r.URL.Path)
		assert.Equal(t, "5d", r.URL.Query().Get("range"))
		assert.Equal(t, "1d", r.URL.Query().Get("interval"))
		w.Write([]byte(`{"chart":{"result":[{
			"meta":{"symbol":"HAL.NS"},
			"timestamp":[1714368600,1714455000],
			"indicators":{"quote":[{
				"open":[4190.0,4215.0],
				"high":[4230.0,4260.0],
				"low":[4180.0,4205.0],
				"close":[4210.1,4250.35],
				"volume":[1200000,980000]
			}]}
		}],"error":null}}`))
	})

	chart, err := client.GetDailyBars(context.Background(), "HAL.NS", 5)
	require.NoError(t, err)
	require.Len(t, chart.Bars, 2)

	assert.Equal(t, 4250.35, chart.Bars[1].Close)

	latest, ok := chart.LatestClose()
	require.True(t, ok)
	assert.Equal(t, 4250.35, latest)
}

func TestGetDailyBarsProviderError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`))
	})

	_, err := client.GetDailyBars(context.Background(), "DEAD.NS", 5)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "delisted")
}

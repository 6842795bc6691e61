// Package yahoo provides a client for the Yahoo Finance API
package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/interfaces"
	"github.com/rsmishra/nivesh/internal/models"
)

const (
	DefaultBaseURL   = "https://query1.finance.yahoo.com"
	DefaultTimeout   = 15 * time.Second
	DefaultRateLimit = 2 // requests per second

	userAgent = "Mozilla/5.0 (X11; Linux x86_64) nivesh/1.0"
)

// Client implements the MarketDataClient interface
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *common.Logger
	limiter    *rate.Limiter
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithLogger sets the logger
func WithLogger(logger *common.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
	}
}

// WithUnlimitedRate disables rate limiting (tests).
func WithUnlimitedRate() ClientOption {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Inf, 0)
	}
}

// WithTimeout sets the HTTP timeout
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.httpClient.Timeout = timeout
	}
}

// NewClient creates a new Yahoo Finance client
func NewClient(opts ...ClientOption) *Client {
	c := &Client{
		baseURL: DefaultBaseURL,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  common.NewSilentLogger(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents an API error
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("Yahoo Finance API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// get performs a rate-limited GET request
func (c *Client) get(ctx context.Context, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limit wait: %w", err)
	}

	reqURL := c.baseURL + path
	if len(params) > 0 {
		reqURL += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	c.logger.Debug().Str("url", c.baseURL+path).Msg("Yahoo Finance API request")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return &APIError{
			StatusCode: resp.StatusCode,
			Message:    string(body),
			Endpoint:   path,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(result); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}

	return nil
}

// quoteResponse represents the /v7/finance/quote envelope
type quoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string             `json:"symbol"`
			RegularMarketPrice         models.FlexFloat64 `json:"regularMarketPrice"`
			PostMarketPrice            models.FlexFloat64 `json:"postMarketPrice"`
			PreMarketPrice             models.FlexFloat64 `json:"preMarketPrice"`
			RegularMarketPreviousClose models.FlexFloat64 `json:"regularMarketPreviousClose"`
			Currency                   string             `json:"currency"`
			FullExchangeName           string             `json:"fullExchangeName"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"quoteResponse"`
}

type apiErrorBody struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

// GetQuote retrieves the live quote for a symbol
func (c *Client) GetQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("symbols", symbol)

	var resp quoteResponse
	if err := c.get(ctx, "/v7/finance/quote", params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteResponse.Error != nil {
		return nil, fmt.Errorf("quote request failed: %s", resp.QuoteResponse.Error.Description)
	}
	if len(resp.QuoteResponse.Result) == 0 {
		return nil, fmt.Errorf("no quote returned for %s", symbol)
	}

	r := resp.QuoteResponse.Result[0]
	return &models.Quote{
		Symbol:             r.Symbol,
		RegularMarketPrice: float64(r.RegularMarketPrice),
		PostMarketPrice:    float64(r.PostMarketPrice),
		PreMarketPrice:     float64(r.PreMarketPrice),
		PreviousClose:      float64(r.RegularMarketPreviousClose),
		Currency:           r.Currency,
		Exchange:           r.FullExchangeName,
	}, nil
}

// rawValue is Yahoo's {"raw": 123.4, "fmt": "123.40"} number wrapper
type rawValue struct {
	Raw models.FlexFloat64 `json:"raw"`
}

// priceSummaryResponse represents the /v10/finance/quoteSummary envelope
// restricted to the price module.
type priceSummaryResponse struct {
	QuoteSummary struct {
		Result []struct {
			Price struct {
				Symbol                     string   `json:"symbol"`
				RegularMarketPrice         rawValue `json:"regularMarketPrice"`
				PostMarketPrice            rawValue `json:"postMarketPrice"`
				PreMarketPrice             rawValue `json:"preMarketPrice"`
				RegularMarketPreviousClose rawValue `json:"regularMarketPreviousClose"`
				Currency                   string   `json:"currency"`
				ExchangeName               string   `json:"exchangeName"`
			} `json:"price"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"quoteSummary"`
}

// GetPriceSummary retrieves the lighter quote-summary price block
func (c *Client) GetPriceSummary(ctx context.Context, symbol string) (*models.Quote, error) {
	params := url.Values{}
	params.Set("modules", "price")

	path := fmt.Sprintf("/v10/finance/quoteSummary/%s", url.PathEscape(symbol))

	var resp priceSummaryResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.QuoteSummary.Error != nil {
		return nil, fmt.Errorf("quoteSummary request failed: %s", resp.QuoteSummary.Error.Description)
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("no price summary returned for %s", symbol)
	}

	p := resp.QuoteSummary.Result[0].Price
	return &models.Quote{
		Symbol:             p.Symbol,
		RegularMarketPrice: float64(p.RegularMarketPrice.Raw),
		PostMarketPrice:    float64(p.PostMarketPrice.Raw),
		PreMarketPrice:     float64(p.PreMarketPrice.Raw),
		PreviousClose:      float64(p.RegularMarketPreviousClose.Raw),
		Currency:           p.Currency,
		Exchange:           p.ExchangeName,
	}, nil
}

// chartResponse represents the /v8/finance/chart envelope
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol string `json:"symbol"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *apiErrorBody `json:"error"`
	} `json:"chart"`
}

// GetDailyBars retrieves a trailing window of daily bars, oldest first.
func (c *Client) GetDailyBars(ctx context.Context, symbol string, days int) (*models.ChartResponse, error) {
	if days <= 0 {
		days = 5
	}

	params := url.Values{}
	params.Set("range", fmt.Sprintf("%dd", days))
	params.Set("interval", "1d")

	path := fmt.Sprintf("/v8/finance/chart/%s", url.PathEscape(symbol))

	var resp chartResponse
	if err := c.get(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	if resp.Chart.Error != nil {
		return nil, fmt.Errorf("chart request failed: %s", resp.Chart.Error.Description)
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("no chart data returned for %s", symbol)
	}

	r := resp.Chart.Result[0]
	if len(r.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("chart response for %s has no quote series", symbol)
	}
	q := r.Indicators.Quote[0]

	result := &models.ChartResponse{Symbol: symbol}
	for i, ts := range r.Timestamp {
		bar := models.DailyBar{Date: time.Unix(ts, 0).UTC()}
		if i < len(q.Open) {
			bar.Open = q.Open[i]
		}
		if i < len(q.High) {
			bar.High = q.High[i]
		}
		if i < len(q.Low) {
			bar.Low = q.Low[i]
		}
		if i < len(q.Close) {
			bar.Close = q.Close[i]
		}
		if i < len(q.Volume) {
			bar.Volume = q.Volume[i]
		}
		result.Bars = append(result.Bars, bar)
	}

	return result, nil
}

// Ensure Client implements MarketDataClient
var _ interfaces.MarketDataClient = (*Client)(nil)

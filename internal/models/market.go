package models

import (
	"encoding/json"
	"fmt"
	"strconv"
	"time"
)

// FlexFloat64 handles JSON values that may be either a number or a string.
// Yahoo occasionally serialises prices as strings, and empty/"N/A" fields
// decode to zero rather than failing the whole payload.
type FlexFloat64 float64

func (f *FlexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = FlexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		if s == "" || s == "N/A" {
			*f = 0
			return nil
		}
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = FlexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Quote is a market quote for a single symbol. The price fields are aliases
// of each other in provider responses; callers scan them in priority order.
type Quote struct {
	Symbol             string  `json:"symbol"`
	RegularMarketPrice float64 `json:"regular_market_price"`
	PostMarketPrice    float64 `json:"post_market_price"`
	PreMarketPrice     float64 `json:"pre_market_price"`
	PreviousClose      float64 `json:"previous_close"`
	Currency           string  `json:"currency"`
	Exchange           string  `json:"exchange"`
}

// PriceCandidates returns the quote's price fields in fallback priority
// order: live price first, then post/pre market, then previous close.
func (q *Quote) PriceCandidates() []float64 {
	return []float64{
		q.RegularMarketPrice,
		q.PostMarketPrice,
		q.PreMarketPrice,
		q.PreviousClose,
	}
}

// DailyBar is one trading day of OHLCV data.
type DailyBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume int64     `json:"volume"`
}

// ChartResponse holds a short trailing window of daily bars, most recent last.
type ChartResponse struct {
	Symbol string     `json:"symbol"`
	Bars   []DailyBar `json:"bars"`
}

// LatestClose returns the most recent positive close in the window.
func (c *ChartResponse) LatestClose() (float64, bool) {
	for i := len(c.Bars) - 1; i >= 0; i-- {
		if c.Bars[i].Close > 0 {
			return c.Bars[i].Close, true
		}
	}
	return 0, false
}

// Package market provides daily price history download and storage.
// History comes from the Yahoo Finance chart API; rows land in the stockprices table.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/time/rate"

	"stocklens/pkg/database"
)

const (
	// DefaultBaseURL is the Yahoo Finance API host
	DefaultBaseURL = "https://query1.finance.yahoo.com"
	// DefaultPeriod is the history window requested per symbol
	DefaultPeriod = "5y"

	requestTimeout = 30 * time.Second
)

// Bar is one daily OHLCV row for a symbol
type Bar struct {
	Symbol   string
	Date     database.Date
	Open     decimal.Decimal
	High     decimal.Decimal
	Low      decimal.Decimal
	Close    decimal.Decimal
	AdjClose decimal.Decimal
	Volume   int64
}

// yahooChart is the response structure of the v8 chart endpoint
type yahooChart struct {
	Chart struct {
		Result []struct {
			Meta struct {
				Symbol    string `json:"symbol"`
				GMTOffset int64  `json:"gmtoffset"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
				AdjClose []struct {
					AdjClose []*float64 `json:"adjclose"`
				} `json:"adjclose"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// Fetcher downloads daily history from Yahoo Finance
type Fetcher struct {
	baseURL    string
	period     string
	httpClient *http.Client
	limiter    *rate.Limiter
}

// FetcherOption configures the Fetcher
type FetcherOption func(*Fetcher)

// WithBaseURL points the fetcher at another host (tests, proxies)
func WithBaseURL(baseURL string) FetcherOption {
	return func(f *Fetcher) {
		f.baseURL = baseURL
	}
}

// WithHTTPClient sets a custom HTTP client
func WithHTTPClient(c *http.Client) FetcherOption {
	return func(f *Fetcher) {
		f.httpClient = c
	}
}

// WithPeriod sets the Yahoo range parameter, e.g. "5y" or "1y"
func WithPeriod(period string) FetcherOption {
	return func(f *Fetcher) {
		f.period = period
	}
}

// WithRateLimit caps requests per second
func WithRateLimit(perSecond float64) FetcherOption {
	return func(f *Fetcher) {
		f.limiter = rate.NewLimiter(rate.Limit(perSecond), 1)
	}
}

// NewFetcher creates a new history fetcher
func NewFetcher(opts ...FetcherOption) *Fetcher {
	f := &Fetcher{
		baseURL: DefaultBaseURL,
		period:  DefaultPeriod,
		httpClient: &http.Client{
			Timeout: requestTimeout,
		},
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// FetchHistory downloads daily bars for the configured period, oldest first
func (f *Fetcher) FetchHistory(ctx context.Context, symbol string) ([]Bar, error) {
	if err := f.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit: %w", err)
	}

	u := fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=%s&includeAdjustedClose=true",
		f.baseURL, url.PathEscape(symbol), url.QueryEscape(f.period))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", "Mozilla/5.0")

	log.Printf("Fetching %s history for %s...", f.period, symbol)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch history: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chart yahooChart
	if err := json.Unmarshal(body, &chart); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
		}
		return nil, fmt.Errorf("unmarshal chart: %w", err)
	}
	if chart.Chart.Error != nil {
		return nil, fmt.Errorf("yahoo api error for %s: %s", symbol, chart.Chart.Error.Description)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status: %d", resp.StatusCode)
	}

	bars, err := parseChart(symbol, &chart)
	if err != nil {
		return nil, fmt.Errorf("parse chart: %w", err)
	}

	log.Printf("Fetched %d bars for %s", len(bars), symbol)
	return bars, nil
}

// parseChart converts the API response to bars, skipping null rows (holidays, halts)
func parseChart(symbol string, chart *yahooChart) ([]Bar, error) {
	if len(chart.Chart.Result) == 0 || len(chart.Chart.Result[0].Timestamp) == 0 {
		return nil, fmt.Errorf("no data returned for %s", symbol)
	}

	result := chart.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote indicators for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	var adj []*float64
	if len(result.Indicators.AdjClose) > 0 {
		adj = result.Indicators.AdjClose[0].AdjClose
	}

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		open, high, low, closePx := at(quote.Open, i), at(quote.High, i), at(quote.Low, i), at(quote.Close, i)
		if open == nil || high == nil || low == nil || closePx == nil {
			continue
		}

		adjClose := closePx
		if v := at(adj, i); v != nil {
			adjClose = v
		}

		var volume int64
		if v := at(quote.Volume, i); v != nil {
			volume = int64(math.Round(*v))
		}

		// Daily bars are stamped at the session open; shifting by the exchange
		// offset keeps the trading day for markets east of UTC.
		day := time.Unix(ts+result.Meta.GMTOffset, 0).UTC()

		bars = append(bars, Bar{
			Symbol:   symbol,
			Date:     database.NewDate(day),
			Open:     decimal.NewFromFloat(*open),
			High:     decimal.NewFromFloat(*high),
			Low:      decimal.NewFromFloat(*low),
			Close:    decimal.NewFromFloat(*closePx),
			AdjClose: decimal.NewFromFloat(*adjClose),
			Volume:   volume,
		})
	}

	sort.SliceStable(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date.Time) })
	return bars, nil
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

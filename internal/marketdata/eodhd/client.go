// Package eodhd reads bar series from the EODHD API
package eodhd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
)

const (
	// Vendor is the name used in errors and cache keys
	Vendor = "eodhd"

	DefaultBaseURL   = "https://eodhd.com/api"
	DefaultRateLimit = 10 // requests per second
	DefaultExchange  = "US"
)

// regular US session, used when extended hours are not requested
const (
	regularOpen  = 9*time.Hour + 30*time.Minute
	regularClose = 16 * time.Hour
)

// flexFloat64 handles JSON values that may be either a number or a string ("NA")
type flexFloat64 float64

func (f *flexFloat64) UnmarshalJSON(data []byte) error {
	var num float64
	if err := json.Unmarshal(data, &num); err == nil {
		*f = flexFloat64(num)
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		num, err := strconv.ParseFloat(s, 64)
		if err != nil {
			*f = 0
			return nil
		}
		*f = flexFloat64(num)
		return nil
	}
	return fmt.Errorf("cannot unmarshal %s into float64", string(data))
}

// Client implements contracts.MarketDataPort over the EODHD REST API
type Client struct {
	baseURL string
	apiKey  string
	http    *httputil.Client
	limiter *rate.Limiter
	logger  *logger.Logger
	loc     *time.Location
}

// ClientOption configures the client
type ClientOption func(*Client)

// WithBaseURL sets the base URL
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithRateLimit sets the rate limit
func WithRateLimit(requestsPerSecond int) ClientOption {
	return func(c *Client) {
		if requestsPerSecond > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), requestsPerSecond)
		}
	}
}

// WithLogger sets the logger
func WithLogger(log *logger.Logger) ClientOption {
	return func(c *Client) {
		c.logger = log.WithField("vendor", Vendor)
	}
}

// NewClient creates a new EODHD client
func NewClient(apiKey string, httpClient *httputil.Client, opts ...ClientOption) *Client {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		loc = time.FixedZone("EST", -5*60*60)
	}

	c := &Client{
		baseURL: DefaultBaseURL,
		apiKey:  apiKey,
		http:    httpClient,
		limiter: rate.NewLimiter(rate.Limit(DefaultRateLimit), DefaultRateLimit),
		logger:  logger.NewNop(),
		loc:     loc,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// APIError represents a non-200 answer
type APIError struct {
	StatusCode int
	Message    string
	Endpoint   string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("EODHD API error: %s (status: %d, endpoint: %s)", e.Message, e.StatusCode, e.Endpoint)
}

// Ticker maps a bare symbol onto EODHD's CODE.EXCHANGE form
func Ticker(symbol string) string {
	symbol = contracts.NormalizeSymbol(symbol)
	if strings.Contains(symbol, ".") {
		return symbol
	}
	return symbol + "." + DefaultExchange
}

// get performs a rate-limited GET and decodes the JSON body into result
func (c *Client) get(ctx context.Context, symbol, path string, params url.Values, result interface{}) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork, fmt.Errorf("rate limit wait: %w", err))
	}

	if params == nil {
		params = url.Values{}
	}
	params.Set("api_token", c.apiKey)
	params.Set("fmt", "json")

	reqURL := fmt.Sprintf("%s%s?%s", c.baseURL, path, params.Encode())

	status, body, err := c.http.GetBody(ctx, reqURL)
	if err != nil {
		return contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork, err)
	}

	if status != http.StatusOK {
		apiErr := &APIError{StatusCode: status, Message: strings.TrimSpace(string(body)), Endpoint: path}
		switch status {
		case http.StatusNotFound:
			return contracts.NewFetchError(Vendor, symbol, contracts.ErrSymbolNotFound, apiErr)
		case http.StatusTooManyRequests, http.StatusPaymentRequired:
			return contracts.NewFetchError(Vendor, symbol, contracts.ErrRateLimited, apiErr)
		default:
			return contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork, apiErr)
		}
	}

	if err := json.Unmarshal(body, result); err != nil {
		return contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork, fmt.Errorf("failed to decode response: %w", err))
	}

	return nil
}

// eodBarResponse represents the API response for EOD data
type eodBarResponse struct {
	Date          string  `json:"date"`
	Open          float64 `json:"open"`
	High          float64 `json:"high"`
	Low           float64 `json:"low"`
	Close         float64 `json:"close"`
	AdjustedClose float64 `json:"adjusted_close"`
	Volume        int64   `json:"volume"`
}

// FetchDaily implements contracts.MarketDataPort; end is exclusive
func (c *Client) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (contracts.Series, error) {
	params := url.Values{}
	params.Set("period", "d")
	params.Set("order", "a")
	params.Set("from", start.In(c.loc).Format("2006-01-02"))
	params.Set("to", end.In(c.loc).AddDate(0, 0, -1).Format("2006-01-02"))

	var rows []eodBarResponse
	if err := c.get(ctx, symbol, "/eod/"+Ticker(symbol), params, &rows); err != nil {
		return contracts.Series{}, err
	}

	bars := make([]contracts.Bar, 0, len(rows))
	for _, r := range rows {
		date, err := time.ParseInLocation("2006-01-02", r.Date, c.loc)
		if err != nil {
			c.logger.WithSymbol(symbol).WithField("date", r.Date).Warn("Skipping EOD bar with bad date")
			continue
		}
		bars = append(bars, contracts.Bar{
			Timestamp: date,
			Open:      r.Open,
			High:      r.High,
			Low:       r.Low,
			Close:     r.Close,
			Volume:    r.Volume,
		})
	}

	return contracts.NewSeries(bars), nil
}

// intradayBarResponse is one element of /intraday
type intradayBarResponse struct {
	Timestamp int64       `json:"timestamp"`
	Open      flexFloat64 `json:"open"`
	High      flexFloat64 `json:"high"`
	Low       flexFloat64 `json:"low"`
	Close     flexFloat64 `json:"close"`
	Volume    flexFloat64 `json:"volume"`
}

// FetchIntraday implements contracts.MarketDataPort with one-minute bars.
// EODHD always includes extended hours; they are dropped unless includePrePost.
func (c *Client) FetchIntraday(ctx context.Context, symbol string, start, end time.Time, includePrePost bool) (contracts.Series, error) {
	params := url.Values{}
	params.Set("interval", "1m")
	params.Set("from", strconv.FormatInt(start.Unix(), 10))
	params.Set("to", strconv.FormatInt(end.Unix(), 10))

	var rows []intradayBarResponse
	if err := c.get(ctx, symbol, "/intraday/"+Ticker(symbol), params, &rows); err != nil {
		return contracts.Series{}, err
	}

	bars := make([]contracts.Bar, 0, len(rows))
	for _, r := range rows {
		if r.Close == 0 {
			continue
		}
		ts := time.Unix(r.Timestamp, 0).In(c.loc)
		if !includePrePost && !c.regularSession(ts) {
			continue
		}
		bars = append(bars, contracts.Bar{
			Timestamp: ts,
			Open:      float64(r.Open),
			High:      float64(r.High),
			Low:       float64(r.Low),
			Close:     float64(r.Close),
			Volume:    int64(r.Volume),
		})
	}

	return contracts.NewSeries(bars).Between(start, end), nil
}

func (c *Client) regularSession(t time.Time) bool {
	y, m, d := t.Date()
	midnight := time.Date(y, m, d, 0, 0, 0, 0, c.loc)
	return !t.Before(midnight.Add(regularOpen)) && t.Before(midnight.Add(regularClose))
}

// realTimeResponse is the /real-time quote; unknown tickers carry "NA" prices
type realTimeResponse struct {
	Code  string      `json:"code"`
	Close flexFloat64 `json:"close"`
}

// ValidateSymbol reports whether EODHD quotes a price for symbol
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	var quote realTimeResponse
	if err := c.get(ctx, symbol, "/real-time/"+Ticker(symbol), nil, &quote); err != nil {
		if errors.Is(err, contracts.ErrSymbolNotFound) {
			return false, nil
		}
		return false, err
	}
	return quote.Close > 0, nil
}

// Package yahoo reads bar series from the Yahoo Finance chart API.
package yahoo

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

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
)

const (
	// Vendor is the name used in errors and cache keys
	Vendor = "yahoo"

	DefaultBaseURL = "https://query1.finance.yahoo.com"
)

// Client implements contracts.MarketDataPort over /v8/finance/chart
type Client struct {
	http    *httputil.Client
	baseURL string
	logger  *logger.Logger
}

// NewClient creates a new Yahoo client; an empty baseURL selects the public API
func NewClient(httpClient *httputil.Client, baseURL string, log *logger.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		http:    httpClient,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  log.WithField("vendor", Vendor),
	}
}

// chartResponse is the response structure from the chart API.
// Quote values are pointers because Yahoo sends null for missing bars.
type chartResponse struct {
	Chart struct {
		Result []chartResult `json:"result"`
		Error  *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type chartResult struct {
	Meta struct {
		Symbol               string   `json:"symbol"`
		Currency             string   `json:"currency"`
		ExchangeTimezoneName string   `json:"exchangeTimezoneName"`
		RegularMarketPrice   *float64 `json:"regularMarketPrice"`
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
	} `json:"indicators"`
}

// FetchDaily implements contracts.MarketDataPort.
// Bars are stamped at local midnight of the exchange's timezone.
func (c *Client) FetchDaily(ctx context.Context, symbol string, start, end time.Time) (contracts.Series, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("includePrePost", "false")
	params.Set("events", "div,splits")

	res, err := c.chart(ctx, symbol, params)
	if err != nil {
		return contracts.Series{}, err
	}
	return contracts.NewSeries(toBars(res, true)), nil
}

// FetchIntraday implements contracts.MarketDataPort with one-minute bars
func (c *Client) FetchIntraday(ctx context.Context, symbol string, start, end time.Time, includePrePost bool) (contracts.Series, error) {
	params := url.Values{}
	params.Set("interval", "1m")
	params.Set("period1", strconv.FormatInt(start.Unix(), 10))
	params.Set("period2", strconv.FormatInt(end.Unix(), 10))
	params.Set("includePrePost", strconv.FormatBool(includePrePost))

	res, err := c.chart(ctx, symbol, params)
	if err != nil {
		return contracts.Series{}, err
	}
	return contracts.NewSeries(toBars(res, false)).Between(start, end), nil
}

// ValidateSymbol reports whether Yahoo quotes a regular market price for symbol
func (c *Client) ValidateSymbol(ctx context.Context, symbol string) (bool, error) {
	params := url.Values{}
	params.Set("interval", "1d")
	params.Set("range", "1d")

	res, err := c.chart(ctx, symbol, params)
	if err != nil {
		if errors.Is(err, contracts.ErrSymbolNotFound) {
			return false, nil
		}
		return false, err
	}
	return res.Meta.RegularMarketPrice != nil, nil
}

func (c *Client) chart(ctx context.Context, symbol string, params url.Values) (*chartResult, error) {
	symbol = contracts.NormalizeSymbol(symbol)
	u := fmt.Sprintf("%s/v8/finance/chart/%s?%s", c.baseURL, url.PathEscape(symbol), params.Encode())

	status, body, err := c.http.GetBody(ctx, u)
	if err != nil {
		return nil, contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork, err)
	}

	switch {
	case status == http.StatusNotFound:
		return nil, contracts.NewFetchError(Vendor, symbol, contracts.ErrSymbolNotFound, nil)
	case status == http.StatusTooManyRequests:
		return nil, contracts.NewFetchError(Vendor, symbol, contracts.ErrRateLimited, nil)
	case status != http.StatusOK:
		return nil, contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork,
			fmt.Errorf("unexpected status %d", status))
	}

	var resp chartResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, contracts.NewFetchError(Vendor, symbol, contracts.ErrNetwork,
			fmt.Errorf("decode chart: %w", err))
	}

	if e := resp.Chart.Error; e != nil {
		kind := contracts.ErrNetwork
		if e.Code == "Not Found" || strings.Contains(e.Description, "No data found") {
			kind = contracts.ErrSymbolNotFound
		}
		return nil, contracts.NewFetchError(Vendor, symbol, kind, errors.New(e.Description))
	}
	if len(resp.Chart.Result) == 0 {
		return nil, contracts.NewFetchError(Vendor, symbol, contracts.ErrSymbolNotFound, nil)
	}

	return &resp.Chart.Result[0], nil
}

// toBars converts the columnar quote arrays, skipping bars with a null close
func toBars(res *chartResult, daily bool) []contracts.Bar {
	if len(res.Indicators.Quote) == 0 {
		return nil
	}
	q := res.Indicators.Quote[0]

	loc := time.UTC
	if res.Meta.ExchangeTimezoneName != "" {
		if l, err := time.LoadLocation(res.Meta.ExchangeTimezoneName); err == nil {
			loc = l
		}
	}

	bars := make([]contracts.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		closeVal := at(q.Close, i)
		if closeVal == nil {
			continue
		}

		t := time.Unix(ts, 0).In(loc)
		if daily {
			y, m, d := t.Date()
			t = time.Date(y, m, d, 0, 0, 0, 0, loc)
		}

		bar := contracts.Bar{
			Timestamp: t,
			Open:      value(at(q.Open, i), *closeVal),
			High:      value(at(q.High, i), *closeVal),
			Low:       value(at(q.Low, i), *closeVal),
			Close:     *closeVal,
		}
		if v := at(q.Volume, i); v != nil {
			bar.Volume = int64(*v)
		}
		bars = append(bars, bar)
	}
	return bars
}

func at(values []*float64, i int) *float64 {
	if i >= len(values) {
		return nil
	}
	return values[i]
}

func value(v *float64, fallback float64) float64 {
	if v == nil {
		return fallback
	}
	return *v
}

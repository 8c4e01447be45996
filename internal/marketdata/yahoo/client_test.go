package yahoo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
)

// 2024-03-14 and 2024-03-15 13:30 UTC (09:30 New York), one null bar between
const dailyChart = `{"chart":{"result":[{
  "meta":{"symbol":"AAPL","currency":"USD","exchangeTimezoneName":"America/New_York","regularMarketPrice":172.62},
  "timestamp":[1710423000,1710466200,1710509400],
  "indicators":{"quote":[{
    "open":[173.0,null,171.5],
    "high":[174.2,null,172.9],
    "low":[172.1,null,170.8],
    "close":[173.0,null,172.62],
    "volume":[1000,null,2000]
  }]}
}],"error":null}}`

const notFoundChart = `{"chart":{"result":null,"error":{"code":"Not Found","description":"No data found, symbol may be delisted"}}}`

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	log := logger.NewNop()
	return NewClient(httputil.New(log, 5*time.Second).DisableRetry(), srv.URL, log)
}

func TestFetchDaily(t *testing.T) {
	var gotPath, gotInterval, gotPeriod1 string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotInterval = r.URL.Query().Get("interval")
		gotPeriod1 = r.URL.Query().Get("period1")
		_, _ = w.Write([]byte(dailyChart))
	})

	start := time.Unix(1710374400, 0)
	s, err := c.FetchDaily(context.Background(), "aapl", start, start.Add(72*time.Hour))
	require.NoError(t, err)

	assert.Equal(t, "/v8/finance/chart/AAPL", gotPath)
	assert.Equal(t, "1d", gotInterval)
	assert.Equal(t, "1710374400", gotPeriod1)

	require.Equal(t, 2, s.Len())
	prev, _ := s.Previous()
	latest, _ := s.Latest()
	assert.Equal(t, 173.0, prev.Close)
	assert.Equal(t, 171.5, latest.Open)
	assert.Equal(t, 172.62, latest.Close)
	assert.Equal(t, int64(2000), latest.Volume)
	assert.Equal(t, 0, latest.Timestamp.Hour())
}

func TestFetchIntraday_FiltersRequestedRange(t *testing.T) {
	var includePrePost string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		includePrePost = r.URL.Query().Get("includePrePost")
		_, _ = w.Write([]byte(`{"chart":{"result":[{
		  "meta":{"symbol":"AAPL","exchangeTimezoneName":"America/New_York"},
		  "timestamp":[1710489600,1710489660,1710509400],
		  "indicators":{"quote":[{"open":[1,2,3],"high":[1,2,3],"low":[1,2,3],"close":[1,2,3],"volume":[1,1,1]}]}
		}]}}`))
	})

	start := time.Unix(1710489600, 0)
	s, err := c.FetchIntraday(context.Background(), "AAPL", start, start.Add(5*time.Hour), true)
	require.NoError(t, err)

	assert.Equal(t, "true", includePrePost)
	require.Equal(t, 2, s.Len())
	latest, _ := s.Latest()
	assert.Equal(t, 2.0, latest.Close)
}

func TestFetch_ErrorKinds(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		kind   error
	}{
		{"http 404", http.StatusNotFound, notFoundChart, contracts.ErrSymbolNotFound},
		{"chart error body", http.StatusOK, notFoundChart, contracts.ErrSymbolNotFound},
		{"rate limited", http.StatusTooManyRequests, "", contracts.ErrRateLimited},
		{"server error", http.StatusBadGateway, "", contracts.ErrNetwork},
		{"garbage", http.StatusOK, "<html>", contracts.ErrNetwork},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			_, err := c.FetchDaily(context.Background(), "ZZZZ", time.Now().Add(-48*time.Hour), time.Now())
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.ErrorIs(t, err, contracts.ErrExternalService)
		})
	}
}

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		want    bool
		wantErr bool
	}{
		{"quoted", http.StatusOK, dailyChart, true, false},
		{"no market price", http.StatusOK, `{"chart":{"result":[{"meta":{"symbol":"X"}}]}}`, false, false},
		{"unknown", http.StatusNotFound, notFoundChart, false, false},
		{"vendor down", http.StatusServiceUnavailable, "", false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "1d", r.URL.Query().Get("range"))
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			})

			ok, err := c.ValidateSymbol(context.Background(), "X")
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

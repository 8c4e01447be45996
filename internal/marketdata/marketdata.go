// Package marketdata selects and decorates the configured MarketDataPort vendor.
package marketdata

import (
	"fmt"

	"github.com/wonny/stocktracker/internal/contracts"
	"github.com/wonny/stocktracker/internal/marketdata/eodhd"
	"github.com/wonny/stocktracker/internal/marketdata/yahoo"
	"github.com/wonny/stocktracker/pkg/config"
	"github.com/wonny/stocktracker/pkg/httputil"
	"github.com/wonny/stocktracker/pkg/logger"
	"github.com/wonny/stocktracker/pkg/redis"
)

// New builds the vendor named by cfg.MarketData.Vendor.
// When rc is enabled the port is wrapped in a CachedPort and requests share a
// Redis sliding-window budget across processes.
// ⭐ SSOT: vendor selection happens here only
func New(cfg *config.Config, rc *redis.Client, log *logger.Logger) (contracts.MarketDataPort, error) {
	md := cfg.MarketData
	httpClient := httputil.New(log.WithComponent("http"), cfg.Batch.FetchTimeout)

	if rc != nil && rc.Enabled() {
		limiter := redis.NewRateLimiter(rc, "stocktracker")
		httpClient.WithRateLimiter(limiter, redis.VendorRateLimit(md.Vendor, md.RateLimit))
	}

	var port contracts.MarketDataPort
	switch md.Vendor {
	case config.VendorYahoo:
		httpClient.WithLocalRateLimit(md.RateLimit)
		port = yahoo.NewClient(httpClient, md.YahooBaseURL, log)
	case config.VendorEODHD:
		port = eodhd.NewClient(md.EODHDAPIKey, httpClient,
			eodhd.WithBaseURL(md.EODHDBaseURL),
			eodhd.WithRateLimit(md.RateLimit),
			eodhd.WithLogger(log),
		)
	default:
		return nil, fmt.Errorf("unknown market data vendor %q", md.Vendor)
	}

	if rc != nil && rc.Enabled() {
		cache := redis.NewCache(rc, "stocktracker")
		port = NewCachedPort(port, cache, md.Vendor, md.CacheTTL, log)
	}

	log.WithFields(map[string]interface{}{
		"vendor": md.Vendor,
		"cached": rc != nil && rc.Enabled(),
	}).Info("Market data port ready")

	return port, nil
}

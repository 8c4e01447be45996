package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the tracker
// ⭐ SSOT: every environment variable is read here and nowhere else
type Config struct {
	// Server
	Port      string
	Env       string // development, staging, production
	APIPrefix string

	// Database
	Database DatabaseConfig

	// Redis
	Redis RedisConfig

	// Market data vendors
	MarketData MarketDataConfig

	// Batch runner
	Batch BatchConfig

	// Premarket window
	Premarket PremarketConfig

	// Logging
	LogLevel  string
	LogFormat string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
	Enabled  bool
}

// DatabaseConfig holds PostgreSQL configuration
type DatabaseConfig struct {
	URL string

	// Connection Pool
	MaxConns        int
	MinConns        int
	MaxConnLifetime time.Duration
	MaxConnIdleTime time.Duration
}

// MarketDataConfig selects and tunes the market data vendor
type MarketDataConfig struct {
	Vendor       string // yahoo, eodhd
	YahooBaseURL string
	EODHDAPIKey  string
	EODHDBaseURL string
	RateLimit    int // requests per second
	CacheTTL     time.Duration
}

// BatchConfig bounds the per-symbol fan-out of the premarket batch
type BatchConfig struct {
	Workers      int
	FetchTimeout time.Duration
}

// PremarketConfig describes the local-exchange premarket window
type PremarketConfig struct {
	Timezone string
	Start    string // HH:MM
	End      string // HH:MM
	Schedule string // cron expression with seconds
}

// Supported vendors
const (
	VendorYahoo = "yahoo"
	VendorEODHD = "eodhd"
)

// Load reads configuration from environment variables
// ⭐ SSOT: the only caller of os.Getenv()
func Load() (*Config, error) {
	return load(true)
}

// LoadOffline is Load without the DATABASE_URL requirement, for commands
// that evaluate ad-hoc positions in memory
func LoadOffline() (*Config, error) {
	return load(false)
}

func load(requireDB bool) (*Config, error) {
	loadEnvFile()

	cfg := &Config{
		Port:      getEnv("PORT", "8000"),
		Env:       getEnv("ENV", "development"),
		APIPrefix: getEnv("API_PREFIX", "/api/v1"),

		Database: DatabaseConfig{
			URL:             getEnv("DATABASE_URL", ""),
			MaxConns:        getEnvAsInt("DB_MAX_CONNS", 10),
			MinConns:        getEnvAsInt("DB_MIN_CONNS", 2),
			MaxConnLifetime: getEnvAsDuration("DB_MAX_CONN_LIFETIME", "1h"),
			MaxConnIdleTime: getEnvAsDuration("DB_MAX_CONN_IDLE_TIME", "30m"),
		},

		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost"),
			Port:     getEnv("REDIS_PORT", "6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
			Enabled:  getEnvAsBool("REDIS_ENABLED", false),
		},

		MarketData: MarketDataConfig{
			Vendor:       strings.ToLower(getEnv("MARKET_DATA_VENDOR", VendorYahoo)),
			YahooBaseURL: getEnv("YAHOO_BASE_URL", "https://query1.finance.yahoo.com"),
			EODHDAPIKey:  getEnv("EODHD_API_KEY", ""),
			EODHDBaseURL: getEnv("EODHD_BASE_URL", "https://eodhd.com/api"),
			RateLimit:    getEnvAsInt("MARKET_DATA_RATE_LIMIT", 5),
			CacheTTL:     getEnvAsDuration("MARKET_DATA_CACHE_TTL", "1m"),
		},

		Batch: BatchConfig{
			Workers:      getEnvAsInt("BATCH_WORKERS", 5),
			FetchTimeout: getEnvAsDuration("BATCH_FETCH_TIMEOUT", "10s"),
		},

		Premarket: PremarketConfig{
			Timezone: getEnv("PREMARKET_TZ", "America/New_York"),
			Start:    getEnv("PREMARKET_START", "04:00"),
			End:      getEnv("PREMARKET_END", "09:30"),
			Schedule: getEnv("PREMARKET_SCHEDULE", "0 */5 4-9 * * MON-FRI"),
		},

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "json"),
	}

	if err := cfg.validate(requireDB); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// validate checks if required configuration values are set
func (c *Config) validate(requireDB bool) error {
	if requireDB && c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.Env != "development" && c.Env != "staging" && c.Env != "production" {
		return fmt.Errorf("ENV must be one of: development, staging, production")
	}

	switch c.MarketData.Vendor {
	case VendorYahoo:
	case VendorEODHD:
		if c.MarketData.EODHDAPIKey == "" {
			return fmt.Errorf("EODHD_API_KEY is required when MARKET_DATA_VENDOR=eodhd")
		}
	default:
		return fmt.Errorf("MARKET_DATA_VENDOR must be one of: yahoo, eodhd")
	}

	if c.Batch.Workers < 1 {
		return fmt.Errorf("BATCH_WORKERS must be at least 1")
	}

	if _, err := time.LoadLocation(c.Premarket.Timezone); err != nil {
		return fmt.Errorf("PREMARKET_TZ: %w", err)
	}

	start, err := ParseClock(c.Premarket.Start)
	if err != nil {
		return fmt.Errorf("PREMARKET_START: %w", err)
	}
	end, err := ParseClock(c.Premarket.End)
	if err != nil {
		return fmt.Errorf("PREMARKET_END: %w", err)
	}
	if end <= start {
		return fmt.Errorf("PREMARKET_END must be after PREMARKET_START")
	}

	return nil
}

// ParseClock parses "HH:MM" into an offset from midnight
func ParseClock(s string) (time.Duration, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time of day %q (expected HH:MM)", s)
	}
	return time.Duration(t.Hour())*time.Hour + time.Duration(t.Minute())*time.Minute, nil
}

// loadEnvFile tries to load .env from multiple locations
func loadEnvFile() {
	paths := []string{".env"}

	if exe, err := os.Executable(); err == nil {
		exeDir := filepath.Dir(exe)
		paths = append(paths,
			filepath.Join(exeDir, ".env"),
			filepath.Join(exeDir, "..", ".env"),
		)
	}

	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			return
		}
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}

func getEnvAsDuration(key string, defaultValue string) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		valueStr = defaultValue
	}

	duration, err := time.ParseDuration(valueStr)
	if err != nil {
		duration, _ = time.ParseDuration(defaultValue)
	}

	return duration
}

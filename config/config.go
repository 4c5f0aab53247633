package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"sjmori/vacancywatcher/pkg/errors"
)

// Config represents the application configuration
type Config struct {
	// Dates being watched, ISO format (YYYY-MM-DD)
	TargetDates []string

	// Sources: a listing page to crawl and/or direct booking deep links
	ListingURL  string
	BookingURLs []string

	// Check cycle configuration
	CheckInterval  time.Duration
	MaxConcurrent  int
	NavMaxAttempts int
	SettleTimeout  time.Duration
	CrawlDelay     time.Duration
	ShutdownGrace  time.Duration
	Headless       bool

	// Notification configuration
	NotifyEndpoint string
	NotifyRetries  int
	NotifySuppress time.Duration

	// Redis configuration
	RedisAddr            string
	RedisDB              int
	RedisStream          string
	RedisStreamCount     int
	RedisStreamMaxLength int

	// Memcache configuration
	MemcacheAddr string

	// History store (PostgreSQL) configuration
	PostgresHost     string
	PostgresPort     int
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	// Status dashboard
	StatusAddr string

	// Environment
	Environment string
}

// LoadConfig loads the configuration from environment variables with defaults
func LoadConfig() Config {
	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))
	streamCount, _ := strconv.Atoi(getEnv("REDIS_STREAM_COUNT", "1"))
	streamMaxLen, _ := strconv.Atoi(getEnv("REDIS_STREAM_MAXLEN", "500"))
	checkInterval, _ := strconv.Atoi(getEnv("CHECK_INTERVAL_SECONDS", "300"))
	maxConcurrent, _ := strconv.Atoi(getEnv("MAX_CONCURRENT_CHECKS", "4"))
	navAttempts, _ := strconv.Atoi(getEnv("NAV_MAX_ATTEMPTS", "15"))
	settleTimeout, _ := strconv.Atoi(getEnv("SETTLE_TIMEOUT_SECONDS", "3"))
	crawlDelay, _ := strconv.Atoi(getEnv("CRAWL_DELAY_SECONDS", "2"))
	shutdownGrace, _ := strconv.Atoi(getEnv("SHUTDOWN_GRACE_SECONDS", "30"))
	notifyRetries, _ := strconv.Atoi(getEnv("NOTIFY_RETRY_ATTEMPTS", "3"))
	notifySuppress, _ := strconv.Atoi(getEnv("NOTIFY_SUPPRESS_SECONDS", "86400"))
	pgPort, _ := strconv.Atoi(getEnv("POSTGRES_PORT", "5432"))
	headless, _ := strconv.ParseBool(getEnv("HEADLESS", "true"))

	return Config{
		TargetDates:          splitList(getEnv("TARGET_DATES", "")),
		ListingURL:           getEnv("LISTING_URL", "https://shirakawa-go.gr.jp/en/stay/?tag%5B%5D=1&category%5B%5D=3"),
		BookingURLs:          splitList(getEnv("BOOKING_URLS", "")),
		CheckInterval:        time.Duration(checkInterval) * time.Second,
		MaxConcurrent:        maxConcurrent,
		NavMaxAttempts:       navAttempts,
		SettleTimeout:        time.Duration(settleTimeout) * time.Second,
		CrawlDelay:           time.Duration(crawlDelay) * time.Second,
		ShutdownGrace:        time.Duration(shutdownGrace) * time.Second,
		Headless:             headless,
		NotifyEndpoint:       getEnv("NOTIFY_ENDPOINT", ""),
		NotifyRetries:        notifyRetries,
		NotifySuppress:       time.Duration(notifySuppress) * time.Second,
		RedisAddr:            getEnv("REDIS_ADDR", "localhost:6379"),
		RedisDB:              redisDB,
		RedisStream:          getEnv("REDIS_STREAM", "vacancies"),
		RedisStreamCount:     streamCount,
		RedisStreamMaxLength: streamMaxLen,
		MemcacheAddr:         getEnv("MEMCACHE_ADDR", "localhost:11211"),
		PostgresHost:         getEnv("POSTGRES_HOST", "localhost"),
		PostgresPort:         pgPort,
		PostgresUser:         getEnv("POSTGRES_USER", "postgres"),
		PostgresPassword:     getEnv("POSTGRES_PASSWORD", "postgres"),
		PostgresDB:           getEnv("POSTGRES_DB", "vacancywatcher"),
		StatusAddr:           getEnv("STATUS_ADDR", ":8080"),
		Environment:          getEnv("VACANCY_ENVIRONMENT", "development"),
	}
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if len(c.TargetDates) == 0 {
		return errors.NewValidation("config", "at least one target date is required")
	}
	for _, d := range c.TargetDates {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return errors.NewValidation("config", "invalid target date: "+d+" (expected YYYY-MM-DD)")
		}
	}
	if c.ListingURL == "" && len(c.BookingURLs) == 0 {
		return errors.NewValidation("config", "either LISTING_URL or BOOKING_URLS must be set")
	}
	if c.CheckInterval < 60*time.Second {
		return errors.NewValidation("config", "CHECK_INTERVAL_SECONDS must be at least 60")
	}
	if c.NavMaxAttempts < 1 || c.NavMaxAttempts > 50 {
		return errors.NewValidation("config", "NAV_MAX_ATTEMPTS must be between 1 and 50")
	}
	if c.MaxConcurrent < 1 {
		return errors.NewValidation("config", "MAX_CONCURRENT_CHECKS must be at least 1")
	}
	if c.NotifyRetries < 1 || c.NotifyRetries > 10 {
		return errors.NewValidation("config", "NOTIFY_RETRY_ATTEMPTS must be between 1 and 10")
	}
	return nil
}

// getEnv retrieves an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// splitList splits a comma-separated environment value into trimmed entries
func splitList(value string) []string {
	if value == "" {
		return nil
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

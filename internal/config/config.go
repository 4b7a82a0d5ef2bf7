package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	// HTTP Server
	Port string

	// AMQP (optional; empty URL disables the event bus)
	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string

	// External analytics service (optional; empty URL means the naive
	// built-in forecast is always used)
	InsightsURL     string
	InsightsTimeout time.Duration

	// Summary cache
	SummaryCacheSize int
	SummaryCacheTTL  time.Duration

	// Upload rate limiting
	UploadRequestsPerMinute int
}

func Load() *Config {
	return &Config{
		Port: getEnv("PORT", "8082"),

		AMQPURL:      getEnv("AMQP_URL", ""),
		AMQPExchange: getEnv("AMQP_EXCHANGE", "ledger"),
		AMQPQueue:    getEnv("AMQP_QUEUE", "alert_events"),

		InsightsURL:     getEnv("INSIGHTS_URL", ""),
		InsightsTimeout: getEnvDuration("INSIGHTS_TIMEOUT", 10*time.Second),

		SummaryCacheSize: getEnvInt("SUMMARY_CACHE_SIZE", 256),
		SummaryCacheTTL:  getEnvDuration("SUMMARY_CACHE_TTL", 30*time.Second),

		UploadRequestsPerMinute: getEnvInt("UPLOAD_RPM", 30),
	}
}

// Validate checks the configuration and returns one combined error
// listing every problem found.
func (c *Config) Validate() error {
	var errs []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errs = append(errs, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errs = append(errs, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if c.AMQPURL != "" {
		if parsedURL, err := url.Parse(c.AMQPURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL '%s': %v", c.AMQPURL, err))
		} else if parsedURL.Scheme != "amqp" && parsedURL.Scheme != "amqps" {
			errs = append(errs, fmt.Sprintf("invalid AMQP URL scheme '%s': must be 'amqp' or 'amqps'", parsedURL.Scheme))
		}
		if c.AMQPExchange == "" {
			errs = append(errs, "AMQP exchange name cannot be empty when AMQP URL is provided")
		}
		if c.AMQPQueue == "" {
			errs = append(errs, "AMQP queue name cannot be empty when AMQP URL is provided")
		}
	}

	if c.InsightsURL != "" {
		if parsedURL, err := url.Parse(c.InsightsURL); err != nil {
			errs = append(errs, fmt.Sprintf("invalid insights URL '%s': %v", c.InsightsURL, err))
		} else if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
			errs = append(errs, fmt.Sprintf("invalid insights URL scheme '%s': must be 'http' or 'https'", parsedURL.Scheme))
		}
	}
	if c.InsightsTimeout < time.Second {
		errs = append(errs, fmt.Sprintf("invalid insights timeout %v: must be at least 1 second", c.InsightsTimeout))
	}

	if c.SummaryCacheSize < 1 {
		errs = append(errs, fmt.Sprintf("invalid summary cache size %d: must be at least 1", c.SummaryCacheSize))
	}
	if c.SummaryCacheTTL < time.Second {
		errs = append(errs, fmt.Sprintf("invalid summary cache TTL %v: must be at least 1 second", c.SummaryCacheTTL))
	}

	if c.UploadRequestsPerMinute < 1 {
		errs = append(errs, fmt.Sprintf("invalid upload rate limit %d: must be at least 1", c.UploadRequestsPerMinute))
	}

	if len(errs) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errs, "\n- "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

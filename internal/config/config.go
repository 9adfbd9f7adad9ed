package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv string
	Port   string

	DatabaseURL string
	RedisURL    string

	ShopifyAPIKey    string
	ShopifyAPISecret string

	MuxTokenID       string
	MuxTokenSecret   string
	MuxWebhookSecret string

	// AutoGoLive enables the looser lifecycle flow where the encoder-active
	// webhook transitions the record to LIVE without a merchant action.
	AutoGoLive bool

	LatencyMode    string
	LivenessTTL    time.Duration
	AssetRetention time.Duration

	// Per-shop token bucket for the merchant API. A rate of zero disables
	// throttling.
	APIRateLimit float64
	APIRateBurst int

	LogLevel  string
	LogFormat string
}

func Load() (*Config, error) {
	// Local development convenience; missing .env is not an error.
	_ = godotenv.Load()

	cfg := &Config{
		AppEnv:           getEnv("APP_ENV", "development"),
		Port:             getEnv("PORT", "8080"),
		DatabaseURL:      getEnv("DATABASE_URL", ""),
		RedisURL:         getEnv("REDIS_URL", ""),
		ShopifyAPIKey:    getEnv("SHOPIFY_API_KEY", ""),
		ShopifyAPISecret: getEnv("SHOPIFY_API_SECRET", ""),
		MuxTokenID:       getEnv("MUX_TOKEN_ID", ""),
		MuxTokenSecret:   getEnv("MUX_TOKEN_SECRET", ""),
		MuxWebhookSecret: getEnv("MUX_WEBHOOK_SECRET", ""),
		LatencyMode:      getEnv("MUX_LATENCY_MODE", "low"),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
		LogFormat:        getEnv("LOG_FORMAT", "text"),
	}

	var err error
	if cfg.AutoGoLive, err = getBoolEnv("AUTO_GO_LIVE", false); err != nil {
		return nil, err
	}
	if cfg.LivenessTTL, err = getDurationEnv("LIVENESS_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.AssetRetention, err = getDurationEnv("ASSET_RETENTION", 90*24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.APIRateLimit, err = getFloatEnv("API_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.APIRateBurst, err = getIntEnv("API_RATE_BURST", 20); err != nil {
		return nil, err
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.RedisURL == "" {
		return nil, fmt.Errorf("REDIS_URL is required")
	}
	if cfg.ShopifyAPIKey == "" {
		return nil, fmt.Errorf("SHOPIFY_API_KEY is required")
	}
	if cfg.ShopifyAPISecret == "" {
		return nil, fmt.Errorf("SHOPIFY_API_SECRET is required")
	}
	if cfg.MuxTokenID == "" {
		return nil, fmt.Errorf("MUX_TOKEN_ID is required")
	}
	if cfg.MuxTokenSecret == "" {
		return nil, fmt.Errorf("MUX_TOKEN_SECRET is required")
	}

	// The webhook path fails closed without a secret, but a configured secret
	// still has to be plausible.
	if cfg.MuxWebhookSecret != "" {
		if len(cfg.MuxWebhookSecret) < 10 || len(cfg.MuxWebhookSecret) > 100 {
			return nil, fmt.Errorf("MUX_WEBHOOK_SECRET must be between 10 and 100 characters")
		}
	}

	switch cfg.LatencyMode {
	case "low", "reduced", "standard":
	default:
		return nil, fmt.Errorf("MUX_LATENCY_MODE must be one of low, reduced, standard; got %q", cfg.LatencyMode)
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return parsed, nil
}

func getFloatEnv(key string, defaultValue float64) (float64, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.ParseFloat(value, 64)
	if err != nil {
		return 0, fmt.Errorf("%s must be a number: %w", key, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, value)
	}
	return parsed, nil
}

func getIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	if parsed < 0 {
		return 0, fmt.Errorf("%s must not be negative, got %s", key, value)
	}
	return parsed, nil
}

func getDurationEnv(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration (e.g. 24h): %w", key, err)
	}
	if parsed <= 0 {
		return 0, fmt.Errorf("%s must be positive, got %s", key, parsed)
	}
	return parsed, nil
}

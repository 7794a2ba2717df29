package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Simplici0/printquote/internal/catalog"
)

const (
	defaultDBPath         = "./printquote.db"
	defaultPort           = "8080"
	defaultLogLevel       = "info"
	defaultLogFormat      = "json"
	defaultPricingProfile = "standard"
	defaultSessionBackend = "memory"
	defaultRedisAddr      = "localhost:6379"
	defaultSessionTTL     = 24 * time.Hour
)

// Session backends.
const (
	SessionBackendMemory = "memory"
	SessionBackendRedis  = "redis"
)

// PricingOverrides replaces individual constants of the selected pricing
// profile. Nil fields keep the profile value.
type PricingOverrides struct {
	BaseRate     *float64
	FlatFee      *int64
	MinimumPrice *int64
}

// Apply returns p with the overridden constants replaced.
func (o PricingOverrides) Apply(p catalog.PricingProfile) catalog.PricingProfile {
	if o.BaseRate != nil {
		p.BaseRate = *o.BaseRate
	}
	if o.FlatFee != nil {
		p.FlatFee = *o.FlatFee
	}
	if o.MinimumPrice != nil {
		p.MinimumPrice = *o.MinimumPrice
	}
	return p
}

// Config holds application configuration sourced from environment variables.
type Config struct {
	Port           string
	DBPath         string
	LogLevel       string
	LogFormat      string
	CatalogPath    string
	PricingProfile string
	Pricing        PricingOverrides
	SessionBackend string
	RedisAddr      string
	RedisPassword  string
	SessionTTL     time.Duration
}

// Load reads environment variables and returns a populated Config. Values from
// the dotenv file at DOTENV_PATH (default ".env") fill in unset variables.
func Load() (Config, error) {
	dotenv := envOr("DOTENV_PATH", ".env")
	if _, err := loadDotEnv(dotenv); err != nil {
		return Config{}, fmt.Errorf("load %s: %w", dotenv, err)
	}

	cfg := Config{
		Port:           envOr("PORT", defaultPort),
		DBPath:         envOr("DB_PATH", defaultDBPath),
		LogLevel:       strings.ToLower(envOr("LOG_LEVEL", defaultLogLevel)),
		LogFormat:      strings.ToLower(envOr("LOG_FORMAT", defaultLogFormat)),
		CatalogPath:    os.Getenv("CATALOG_PATH"),
		PricingProfile: envOr("PRICING_PROFILE", defaultPricingProfile),
		SessionBackend: strings.ToLower(envOr("SESSION_BACKEND", defaultSessionBackend)),
		RedisAddr:      envOr("REDIS_ADDR", defaultRedisAddr),
		RedisPassword:  os.Getenv("REDIS_PASSWORD"),
		SessionTTL:     defaultSessionTTL,
	}

	if raw := os.Getenv("SESSION_TTL"); raw != "" {
		ttl, err := time.ParseDuration(raw)
		if err != nil || ttl < 0 {
			return Config{}, fmt.Errorf("SESSION_TTL debe ser una duración válida: %q", raw)
		}
		cfg.SessionTTL = ttl
	}

	if cfg.SessionBackend != SessionBackendMemory && cfg.SessionBackend != SessionBackendRedis {
		return Config{}, fmt.Errorf("SESSION_BACKEND debe ser memory o redis: %q", cfg.SessionBackend)
	}

	var err error
	if cfg.Pricing.BaseRate, err = optionalPositiveFloat("PRICING_BASE_RATE"); err != nil {
		return Config{}, err
	}
	if cfg.Pricing.FlatFee, err = optionalNonNegativeInt("PRICING_FLAT_FEE"); err != nil {
		return Config{}, err
	}
	if cfg.Pricing.MinimumPrice, err = optionalNonNegativeInt("PRICING_MINIMUM_PRICE"); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func envOr(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func optionalPositiveFloat(key string) (*float64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("%s debe ser numérico", key)
	}
	if v <= 0 {
		return nil, fmt.Errorf("%s debe ser mayor a 0", key)
	}
	return &v, nil
}

func optionalNonNegativeInt(key string) (*int64, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return nil, nil
	}
	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("%s debe ser un entero", key)
	}
	if v < 0 {
		return nil, fmt.Errorf("%s debe ser mayor o igual a 0", key)
	}
	return &v, nil
}

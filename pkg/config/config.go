package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

type Config struct {
	App       AppConfig
	Redis     RedisConfig
	Content   ContentConfig
	Pricing   PricingConfig
	Cart      CartConfig
	Session   SessionConfig
	RateLimit RateLimitConfig
	CORS      CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Content.validate(); err != nil {
		return nil, err
	}
	if err := cfg.Pricing.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"HOMEPLATE_APP_ENV" required:"true"`
	Port         string `envconfig:"HOMEPLATE_APP_PORT" required:"true"`
	LogLevel     string `envconfig:"HOMEPLATE_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"HOMEPLATE_LOG_WARN_STACK" default:"false"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type RedisConfig struct {
	URL          string        `envconfig:"HOMEPLATE_REDIS_URL"`
	Address      string        `envconfig:"HOMEPLATE_REDIS_ADDR"`
	Password     string        `envconfig:"HOMEPLATE_REDIS_PASSWORD"`
	DB           int           `envconfig:"HOMEPLATE_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"HOMEPLATE_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"HOMEPLATE_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"HOMEPLATE_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"HOMEPLATE_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"HOMEPLATE_REDIS_WRITE_TIMEOUT" default:"5s"`
}

// ContentConfig points at the headless content backend that owns all records.
type ContentConfig struct {
	BaseURL      string        `envconfig:"HOMEPLATE_CONTENT_BASE_URL" required:"true"`
	ServiceToken string        `envconfig:"HOMEPLATE_CONTENT_SERVICE_TOKEN" required:"true"`
	JWTSecret    string        `envconfig:"HOMEPLATE_CONTENT_JWT_SECRET" required:"true"`
	Timeout      time.Duration `envconfig:"HOMEPLATE_CONTENT_TIMEOUT" default:"10s"`
	MaxUploadMB  int           `envconfig:"HOMEPLATE_MAX_UPLOAD_MB" default:"10"`
}

func (c ContentConfig) validate() error {
	if !strings.HasPrefix(c.BaseURL, "http://") && !strings.HasPrefix(c.BaseURL, "https://") {
		return fmt.Errorf("%s must be an http(s) url", EnvContentBaseURL)
	}
	return nil
}

type PricingConfig struct {
	TaxRatePercent        string `envconfig:"HOMEPLATE_TAX_RATE_PERCENT" default:"18"`
	ShippingFee           string `envconfig:"HOMEPLATE_SHIPPING_FEE" default:"4.99"`
	FreeShippingThreshold string `envconfig:"HOMEPLATE_FREE_SHIPPING_THRESHOLD" default:"100"`
}

// TaxRate returns the configured tax rate as a percentage.
func (p PricingConfig) TaxRate() decimal.Decimal {
	return decimal.RequireFromString(p.TaxRatePercent)
}

func (p PricingConfig) Shipping() decimal.Decimal {
	return decimal.RequireFromString(p.ShippingFee)
}

func (p PricingConfig) FreeShippingAbove() decimal.Decimal {
	return decimal.RequireFromString(p.FreeShippingThreshold)
}

func (p PricingConfig) validate() error {
	for env, raw := range map[string]string{
		EnvTaxRatePercent:        p.TaxRatePercent,
		EnvShippingFee:           p.ShippingFee,
		EnvFreeShippingThreshold: p.FreeShippingThreshold,
	} {
		value, err := decimal.NewFromString(strings.TrimSpace(raw))
		if err != nil {
			return fmt.Errorf("%s must be a decimal: %w", env, err)
		}
		if value.IsNegative() {
			return fmt.Errorf("%s must be non-negative", env)
		}
	}
	return nil
}

type CartConfig struct {
	TTL time.Duration `envconfig:"HOMEPLATE_CART_TTL" default:"720h"`
}

type SessionConfig struct {
	CookieDomain     string        `envconfig:"HOMEPLATE_COOKIE_DOMAIN"`
	CookieSecure     bool          `envconfig:"HOMEPLATE_COOKIE_SECURE" default:"true"`
	CookieMaxAge     time.Duration `envconfig:"HOMEPLATE_COOKIE_MAX_AGE" default:"720h"`
	IdentityCacheTTL time.Duration `envconfig:"HOMEPLATE_IDENTITY_CACHE_TTL" default:"5m"`
}

type RateLimitConfig struct {
	AuthWindow   time.Duration `envconfig:"HOMEPLATE_RATE_LIMIT_AUTH_WINDOW" default:"1m"`
	AuthLimit    int           `envconfig:"HOMEPLATE_RATE_LIMIT_AUTH_LIMIT" default:"10"`
	ReviewWindow time.Duration `envconfig:"HOMEPLATE_RATE_LIMIT_REVIEW_WINDOW" default:"1m"`
	ReviewLimit  int           `envconfig:"HOMEPLATE_RATE_LIMIT_REVIEW_LIMIT" default:"5"`
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"HOMEPLATE_CORS_ORIGINS" default:"http://localhost:3000"`
}

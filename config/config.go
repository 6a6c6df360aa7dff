// Package config handles loading and managing application configuration.
package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v10"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	PayPal     PayPalConfig
	Checkout   CheckoutConfig
	Storefront StorefrontConfig
	Postgres   PostgresConfig
	Redis      RedisConfig
	Kafka      KafkaConfig
	Log        LogConfig
	Security   SecurityConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `env:"PORT" envDefault:"8080"`
	GinMode         string        `env:"GIN_MODE" envDefault:"debug"` // "debug", "release", or "test"
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
}

// PayPalConfig holds the Adaptive Payments credentials and options.
type PayPalConfig struct {
	Username      string `env:"PAYPAL_API_USERNAME"`
	Password      string `env:"PAYPAL_API_PASSWORD"`
	Signature     string `env:"PAYPAL_API_SIGNATURE"`
	ApplicationID string `env:"PAYPAL_API_APPLICATION_ID"`
	SandboxMode   bool   `env:"PAYPAL_SANDBOX_MODE" envDefault:"true"`

	Currency      string        `env:"PAYPAL_CURRENCY" envDefault:"GBP"`
	PlatformEmail string        `env:"PAYPAL_PLATFORM_EMAIL"`
	FeesPayer     string        `env:"PAYPAL_FEES_PAYER" envDefault:"EACHRECEIVER"`
	IPNURL        string        `env:"PAYPAL_IPN_URL"`
	Timeout       time.Duration `env:"PAYPAL_TIMEOUT" envDefault:"30s"`
	Itemize       bool          `env:"PAYPAL_ITEMIZE" envDefault:"false"`

	// Overrides for the provider hosts, used against stubs.
	BaseURL string `env:"PAYPAL_API_BASE_URL"`
	NVPURL  string `env:"PAYPAL_NVP_URL"`
}

// CheckoutConfig holds the checkout policy.
type CheckoutConfig struct {
	CallbackBaseURL      string        `env:"CALLBACK_BASE_URL"`
	CallbackHTTPS        bool          `env:"CALLBACK_HTTPS" envDefault:"true"`
	BankFeePosition      int           `env:"BANK_FEE_POSITION" envDefault:"1"`
	InsuranceFeePosition int           `env:"INSURANCE_FEE_POSITION" envDefault:"2"`
	SessionTTL           time.Duration `env:"SESSION_TTL" envDefault:"1h"`
	PayerValidation      string        `env:"PAYER_VALIDATION" envDefault:"account"` // "account" or "none"
	SplitStrategy        string        `env:"SPLIT_STRATEGY" envDefault:"chained"`   // "chained" or "single"
}

// StorefrontConfig holds the storefront backend client configuration.
type StorefrontConfig struct {
	BaseURL string        `env:"STOREFRONT_URL" envDefault:"http://localhost:8000"`
	APIKey  string        `env:"STOREFRONT_API_KEY"`
	Timeout time.Duration `env:"STOREFRONT_TIMEOUT" envDefault:"15s"`
}

// PostgresConfig enables the PostgreSQL ledger when DSN is set.
type PostgresConfig struct {
	DSN string `env:"POSTGRES_DSN"`
}

// RedisConfig enables the Redis session store when Addr is set.
type RedisConfig struct {
	Addr     string `env:"REDIS_ADDR"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB" envDefault:"0"`
}

// KafkaConfig enables settlement events when Brokers is set.
type KafkaConfig struct {
	Brokers         []string `env:"KAFKA_BROKERS" envSeparator:","`
	SettlementTopic string   `env:"KAFKA_SETTLEMENT_TOPIC" envDefault:"checkout.settled"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Env    string `env:"APP_ENV" envDefault:"development"`
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT"`
}

// SecurityConfig holds security-related configuration.
type SecurityConfig struct {
	// ServiceAPIKey authenticates storefront calls. Empty disables the check.
	ServiceAPIKey string `env:"SERVICE_API_KEY"`
}

// Load reads configuration from environment variables and validates it.
func Load() (*Config, error) {
	return parse(env.Options{})
}

// LoadFrom reads configuration from the given variables instead of the
// process environment.
func LoadFrom(environment map[string]string) (*Config, error) {
	return parse(env.Options{Environment: environment})
}

func parse(opts env.Options) (*Config, error) {
	cfg := &Config{}
	if err := env.ParseWithOptions(cfg, opts); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	var errs []error

	required := []struct {
		name  string
		value string
	}{
		{"PAYPAL_API_USERNAME", c.PayPal.Username},
		{"PAYPAL_API_PASSWORD", c.PayPal.Password},
		{"PAYPAL_API_SIGNATURE", c.PayPal.Signature},
		{"PAYPAL_API_APPLICATION_ID", c.PayPal.ApplicationID},
		{"PAYPAL_PLATFORM_EMAIL", c.PayPal.PlatformEmail},
		{"CALLBACK_BASE_URL", c.Checkout.CallbackBaseURL},
		{"STOREFRONT_URL", c.Storefront.BaseURL},
	}
	for _, r := range required {
		if r.value == "" {
			errs = append(errs, fmt.Errorf("%s is required", r.name))
		}
	}

	if len(c.PayPal.Currency) != 3 {
		errs = append(errs, fmt.Errorf("PAYPAL_CURRENCY must be a 3-letter code, got %q", c.PayPal.Currency))
	}
	if c.PayPal.Timeout <= 0 {
		errs = append(errs, errors.New("PAYPAL_TIMEOUT must be positive"))
	}
	if c.Checkout.SessionTTL <= 0 {
		errs = append(errs, errors.New("SESSION_TTL must be positive"))
	}
	if c.Checkout.BankFeePosition == c.Checkout.InsuranceFeePosition {
		errs = append(errs, errors.New("BANK_FEE_POSITION and INSURANCE_FEE_POSITION must differ"))
	}
	switch c.Checkout.PayerValidation {
	case "account", "none":
	default:
		errs = append(errs, fmt.Errorf("PAYER_VALIDATION must be account or none, got %q", c.Checkout.PayerValidation))
	}
	switch c.Checkout.SplitStrategy {
	case "chained", "single":
	default:
		errs = append(errs, fmt.Errorf("SPLIT_STRATEGY must be chained or single, got %q", c.Checkout.SplitStrategy))
	}

	return errors.Join(errs...)
}

package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all session configuration.
type Config struct {
	Wallet   WalletConfig   `mapstructure:"wallet"`
	Location LocationConfig `mapstructure:"location"`
	Search   SearchConfig   `mapstructure:"search"`
	Payment  PaymentConfig  `mapstructure:"payment"`
	Chat     ChatConfig     `mapstructure:"chat"`
	Catalog  CatalogConfig  `mapstructure:"catalog"`
	Log      LogConfig      `mapstructure:"log"`
}

type WalletConfig struct {
	InitialBalance string `mapstructure:"initial_balance"` // decimal string, e.g. "1250.50"
	CurrencySymbol string `mapstructure:"currency_symbol"`
}

// Balance parses InitialBalance.
func (w WalletConfig) Balance() (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(w.InitialBalance))
	if err != nil {
		return decimal.Zero, fmt.Errorf("wallet.initial_balance: %w", err)
	}
	return d, nil
}

// LocationConfig is the user's position used as the default search center.
type LocationConfig struct {
	Latitude  float64 `mapstructure:"latitude"`
	Longitude float64 `mapstructure:"longitude"`
}

type SearchConfig struct {
	RadiusMiles float64 `mapstructure:"radius_miles"`
}

type PaymentConfig struct {
	ProcessingDelay time.Duration `mapstructure:"processing_delay"`
	Providers       []string      `mapstructure:"providers"`
	MaxRetries      int           `mapstructure:"max_retries"`
	MaxBackoff      time.Duration `mapstructure:"max_backoff"`
}

type ChatConfig struct {
	PreviewLength int     `mapstructure:"preview_length"`
	RatePerSecond float64 `mapstructure:"rate_per_second"` // <= 0 disables throttling
	Burst         int     `mapstructure:"burst"`
}

type CatalogConfig struct {
	Path string `mapstructure:"path"` // empty: embedded seed
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: GIG_.
// Nested keys use underscore: GIG_WALLET_INITIAL_BALANCE, GIG_PAYMENT_PROCESSING_DELAY, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("wallet.initial_balance", "1250.50")
	v.SetDefault("wallet.currency_symbol", "$")
	v.SetDefault("location.latitude", 34.0622)
	v.SetDefault("location.longitude", -118.2537)
	v.SetDefault("search.radius_miles", 15.0)
	v.SetDefault("payment.processing_delay", "2s")
	v.SetDefault("payment.providers", []string{"GPay", "PhonePe", "Paytm", "BHIM UPI"})
	v.SetDefault("payment.max_retries", 3)
	v.SetDefault("payment.max_backoff", "30s")
	v.SetDefault("chat.preview_length", 25)
	v.SetDefault("chat.rate_per_second", 5.0)
	v.SetDefault("chat.burst", 10)
	v.SetDefault("catalog.path", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	v.SetEnvPrefix("GIG")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Config file is optional; defaults and env vars suffice.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values that would otherwise surface as confusing runtime errors.
func (c *Config) Validate() error {
	var errs []error

	if bal, err := c.Wallet.Balance(); err != nil {
		errs = append(errs, err)
	} else if bal.IsNegative() {
		errs = append(errs, errors.New("wallet.initial_balance must not be negative"))
	}
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		errs = append(errs, errors.New("location.latitude must be within [-90, 90]"))
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		errs = append(errs, errors.New("location.longitude must be within [-180, 180]"))
	}
	if c.Search.RadiusMiles <= 0 {
		errs = append(errs, errors.New("search.radius_miles must be positive"))
	}
	if c.Payment.ProcessingDelay <= 0 {
		errs = append(errs, errors.New("payment.processing_delay must be positive"))
	}
	if len(c.Payment.Providers) == 0 {
		errs = append(errs, errors.New("payment.providers must not be empty"))
	}
	if c.Payment.MaxRetries < 0 {
		errs = append(errs, errors.New("payment.max_retries must not be negative"))
	}
	if c.Chat.PreviewLength <= 0 {
		errs = append(errs, errors.New("chat.preview_length must be positive"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("invalid config: %w", errors.Join(errs...))
	}
	return nil
}

// Package config loads the vth settings from the environment and an optional .env file.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds the vth settings.
type Config struct {
	DataDir  string `validate:"required"`
	LogDir   string `validate:"required"`
	LogLevel string `validate:"oneof=debug info warn error"`
	JSONLogs bool

	Base    string   `validate:"required,alphanum,min=2,max=10"`
	Fiats   []string `validate:"dive,alphanum,min=2,max=10"`
	Cryptos []string `validate:"dive,alphanum,min=2,max=10"`

	Timeout    time.Duration `validate:"gt=0"`
	TTLSeconds int           `validate:"gte=0"`

	ExchangeRateAPIKey string
	CoinGeckoURL       string `validate:"required,url"`
	ExchangeRateURL    string `validate:"required,url"`

	// MetricsFile is the node exporter textfile written after each update, none when empty.
	MetricsFile string
}

// RatesPath is the current rate document, the other paths follow.
func (c *Config) RatesPath() string      { return filepath.Join(c.DataDir, "rates.json") }
func (c *Config) HistoryPath() string    { return filepath.Join(c.DataDir, "exchange_rates.json") }
func (c *Config) PortfoliosPath() string { return filepath.Join(c.DataDir, "portfolios.json") }
func (c *Config) UsersPath() string      { return filepath.Join(c.DataDir, "users.json") }
func (c *Config) SessionPath() string    { return filepath.Join(c.DataDir, "session.json") }

// Load reads envFile if it exists, then the process environment, which takes
// precedence. An empty envFile means ".env".
func Load(envFile string) (*Config, error) {
	if envFile == "" {
		envFile = ".env"
	}
	// godotenv never overrides a variable already set.
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("cannot load %s: %w", envFile, err)
	}

	v := viper.New()
	v.SetDefault("VTH_DATA_DIR", "data")
	v.SetDefault("VTH_LOG_DIR", "logs")
	v.SetDefault("VTH_LOG_LEVEL", "info")
	v.SetDefault("VTH_JSON_LOGS", false)
	v.SetDefault("VTH_BASE", "USD")
	v.SetDefault("VTH_FIATS", "USD,EUR,RUB")
	v.SetDefault("VTH_CRYPTOS", "BTC,ETH,USDT")
	v.SetDefault("VTH_TIMEOUT", 10)
	v.SetDefault("VTH_TTL_SECONDS", 3600)
	v.SetDefault("EXCHANGERATE_API_KEY", "")
	v.SetDefault("VTH_COINGECKO_URL", "https://api.coingecko.com/api/v3")
	v.SetDefault("VTH_EXCHANGERATE_URL", "https://v6.exchangerate-api.com")
	v.SetDefault("VTH_METRICS_FILE", "")
	v.AutomaticEnv()

	cfg := &Config{
		DataDir:            v.GetString("VTH_DATA_DIR"),
		LogDir:             v.GetString("VTH_LOG_DIR"),
		LogLevel:           strings.ToLower(v.GetString("VTH_LOG_LEVEL")),
		JSONLogs:           v.GetBool("VTH_JSON_LOGS"),
		Base:               strings.ToUpper(strings.TrimSpace(v.GetString("VTH_BASE"))),
		Fiats:              symbols(v.GetString("VTH_FIATS")),
		Cryptos:            symbols(v.GetString("VTH_CRYPTOS")),
		Timeout:            time.Duration(v.GetInt("VTH_TIMEOUT")) * time.Second,
		TTLSeconds:         v.GetInt("VTH_TTL_SECONDS"),
		ExchangeRateAPIKey: v.GetString("EXCHANGERATE_API_KEY"),
		CoinGeckoURL:       v.GetString("VTH_COINGECKO_URL"),
		ExchangeRateURL:    v.GetString("VTH_EXCHANGERATE_URL"),
		MetricsFile:        v.GetString("VTH_METRICS_FILE"),
	}
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// symbols splits a comma separated list of currency codes.
func symbols(list string) []string {
	var codes []string
	for _, s := range strings.Split(list, ",") {
		if s = strings.ToUpper(strings.TrimSpace(s)); s != "" {
			codes = append(codes, s)
		}
	}
	return codes
}

package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application.
type Config struct {
	Logger     Logger     `mapstructure:"logger"`
	Database   Database   `mapstructure:"database"`
	MarketData MarketData `mapstructure:"marketdata"`
	Backtest   Backtest   `mapstructure:"backtest"`
	Optimizer  Optimizer  `mapstructure:"optimizer"`
}

// Logger holds the configuration for the logger.
type Logger struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// Database holds the configuration for the database.
type Database struct {
	DSN string `mapstructure:"dsn"`
}

// MarketData holds the configuration for the daily-bar import client.
type MarketData struct {
	BaseURL        string  `mapstructure:"base_url"`
	Interval       string  `mapstructure:"interval"`
	Limit          int     `mapstructure:"limit"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	RateLimitBurst int     `mapstructure:"rate_limit_burst"`
}

// Backtest holds the simulation parameters for a single strategy run.
type Backtest struct {
	Symbol              string   `mapstructure:"symbol"`
	Strategy            string   `mapstructure:"strategy"`
	InitialCapital      float64  `mapstructure:"initial_capital"`
	CommissionRate      float64  `mapstructure:"commission_rate"`
	Slippage            float64  `mapstructure:"slippage"`
	PositionSize        float64  `mapstructure:"position_size"`
	ConfidenceThreshold float64  `mapstructure:"confidence_threshold"`
	WarmupBars          int      `mapstructure:"warmup_bars"`
	Patterns            []string `mapstructure:"patterns"`
}

// Optimizer holds the parameters for the pattern-combination sweep.
type Optimizer struct {
	Enabled     bool `mapstructure:"enabled"`
	MinPatterns int  `mapstructure:"min_patterns"`
	MaxPatterns int  `mapstructure:"max_patterns"`
	Workers     int  `mapstructure:"workers"`
	TopN        int  `mapstructure:"top_n"`
}

// LoadConfig reads configuration from file or environment variables.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config") // name of config file (without extension)
	viper.SetConfigType("yml")    // or yaml, json

	// Allow environment variables to override config file
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Set default values
	viper.SetDefault("marketdata.interval", "1d")
	viper.SetDefault("marketdata.limit", 500)
	viper.SetDefault("marketdata.rate_limit", 20)      // requests per second
	viper.SetDefault("marketdata.rate_limit_burst", 5) // burst size
	viper.SetDefault("backtest.strategy", "pattern")
	viper.SetDefault("backtest.initial_capital", 100000)
	viper.SetDefault("backtest.commission_rate", 0.001) // 0.1%
	viper.SetDefault("backtest.slippage", 0.0005)       // 0.05%
	viper.SetDefault("backtest.position_size", 0.1)
	viper.SetDefault("backtest.confidence_threshold", 0.7)
	viper.SetDefault("backtest.warmup_bars", 100)
	viper.SetDefault("optimizer.min_patterns", 1)
	viper.SetDefault("optimizer.max_patterns", 3)
	viper.SetDefault("optimizer.workers", 4)
	viper.SetDefault("optimizer.top_n", 20)

	err = viper.ReadInConfig()
	if err != nil {
		return
	}

	err = viper.Unmarshal(&config)
	return
}

// Package config loads the quote server's configuration via viper,
// grounded on go-server-3/internal/config/config.go's defaults-then-file-
// then-env layering (SPEC_FULL.md §10.1).
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// ServerConfig holds every tunable the quote server needs at startup.
type ServerConfig struct {
	TCPAddr       string `mapstructure:"tcp_addr"`
	UDPAddr       string `mapstructure:"udp_addr"`
	KnownTickers  string `mapstructure:"known_tickers"`
	MetricsAddr   string `mapstructure:"metrics_addr"`
	LogLevel      string `mapstructure:"log_level"`
	NATSURL       string `mapstructure:"nats_url"`
	RateLimitIP   float64 `mapstructure:"rate_limit_ip"`
	RateLimitGlobal float64 `mapstructure:"rate_limit_global"`
}

// LoadServerConfig reads defaults, an optional config file named
// "odin.yaml" (or .json/.toml) on "." and "./config", and ODIN_-prefixed
// environment variables, in that order of increasing precedence.
func LoadServerConfig() (*ServerConfig, error) {
	v := viper.New()

	v.SetDefault("tcp_addr", "127.0.0.1:8080")
	v.SetDefault("udp_addr", "0.0.0.0:0")
	v.SetDefault("known_tickers", "")
	v.SetDefault("metrics_addr", "0.0.0.0:9090")
	v.SetDefault("log_level", "info")
	v.SetDefault("nats_url", "")
	v.SetDefault("rate_limit_ip", 5.0)
	v.SetDefault("rate_limit_global", 200.0)

	v.SetConfigName("odin")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	v.SetEnvPrefix("odin")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg ServerConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}
	return &cfg, nil
}

package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// ClientConfig holds every tunable the quote client needs at startup. It is
// loaded via struct tags with caarlos0/env, optionally layered over a
// ".env" file, grounded on ws/config.go's env-then-dotenv pattern.
type ClientConfig struct {
	ServerAddr  string `env:"QUOTE_SERVER_ADDR" envDefault:"127.0.0.1:8080"`
	UDPPort     int    `env:"QUOTE_UDP_PORT" envDefault:"0"`
	TickersFile string `env:"QUOTE_TICKERS_FILE" envDefault:""`
	LogLevel    string `env:"QUOTE_LOG_LEVEL" envDefault:"info"`
	PrettyLogs  bool   `env:"QUOTE_PRETTY_LOGS" envDefault:"false"`
}

// LoadClientConfig loads an optional ".env" file (missing is not an
// error) and then parses ClientConfig from the environment.
func LoadClientConfig() (*ClientConfig, error) {
	_ = godotenv.Load()

	var cfg ClientConfig
	if err := env.Parse(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

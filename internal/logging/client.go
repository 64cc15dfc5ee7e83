package logging

import (
	"os"
	"time"

	"github.com/rs/zerolog"
)

// NewClientLogger builds a zerolog logger for the given level name, the
// way ws/internal/shared/monitoring/logger.go builds its server logger:
// structured JSON by default, falling back to a pretty console writer
// when pretty is true (useful for local development).
func NewClientLogger(levelName string, pretty bool) zerolog.Logger {
	level, err := zerolog.ParseLevel(levelName)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	var output = os.Stdout
	logger := zerolog.New(output).With().Timestamp()
	if pretty {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339}).
			With().Timestamp().Str("component", "quote-client").Logger()
	}

	return logger.Str("component", "quote-client").Logger()
}

package logger

import (
	"log/slog"
	"os"
	"strings"
)

// Config holds logger configuration.
type Config struct {
	// Level is the minimum level to log: debug, info, warn, error.
	Level string `env:"LOG_LEVEL" envDefault:"info"`

	// Format selects the output encoding: json or text.
	Format string `env:"LOG_FORMAT" envDefault:"json"`
}

// New creates a stdout logger from the config with optional context
// extractors. The zero Config yields JSON output at info level.
func New(cfg Config, extractors ...ContextExtractor) *slog.Logger {
	return slog.New(NewLogHandlerDecorator(cfg.handler(), extractors...))
}

// handler builds the stdout slog.Handler described by the config.
func (c Config) handler() slog.Handler {
	opts := &slog.HandlerOptions{Level: c.level()}
	if strings.EqualFold(c.Format, "text") {
		return slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.NewJSONHandler(os.Stdout, opts)
}

// level parses the configured level, defaulting to info.
func (c Config) level() slog.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

package config

import (
	"log/slog"
	"os"
	"strings"

	"github.com/m-mizutani/clog"
	"github.com/m-mizutani/goerr/v2"
	"github.com/m-mizutani/masq"
	"github.com/urfave/cli/v3"

	"github.com/m-mizutani/dependahunt/pkg/domain/types"
)

// Logger holds logger configuration
type Logger struct {
	Level  string
	Format string
}

// Flags returns CLI flags for logger configuration
func (c *Logger) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "Log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &c.Level,
			Sources:     cli.EnvVars("DEPENDAHUNT_LOG_LEVEL"),
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "Log format (console, json, text)",
			Value:       "console",
			Destination: &c.Format,
			Sources:     cli.EnvVars("DEPENDAHUNT_LOG_FORMAT"),
		},
	}
}

// Configure configures and returns a logger. Credential-shaped attributes
// are redacted before they reach any handler.
func (c *Logger) Configure() (*slog.Logger, error) {
	var level slog.Level
	switch strings.ToLower(c.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return nil, goerr.New("invalid log level",
			goerr.Tag(types.ErrTagConfig), goerr.V("level", c.Level))
	}

	redact := masq.New(
		masq.WithContain("token"),
		masq.WithContain("api_key"),
		masq.WithContain("secret"),
	)

	var handler slog.Handler
	switch strings.ToLower(c.Format) {
	case "console":
		handler = clog.New(
			clog.WithWriter(os.Stdout),
			clog.WithLevel(level),
			clog.WithReplaceAttr(redact),
		)
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		})
	case "text":
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
			Level:       level,
			ReplaceAttr: redact,
		})
	default:
		return nil, goerr.New("invalid log format",
			goerr.Tag(types.ErrTagConfig), goerr.V("format", c.Format))
	}

	return slog.New(handler), nil
}

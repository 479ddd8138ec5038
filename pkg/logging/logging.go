package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/lmittmann/tint"
)

const (
	// KeyError is the key used for errors in log attributes.
	KeyError = "err"

	// KeyDal is the key used for the data access layer name.
	KeyDal = "dal"

	// KeyGuild is the key used for guild IDs.
	KeyGuild = "guild_id"

	// KeyChannel is the key used for channel IDs.
	KeyChannel = "channel_id"

	// KeyUser is the key used for user IDs.
	KeyUser = "user_id"

	// KeyTransition is the key used for ticket lifecycle transitions.
	KeyTransition = "transition"

	// KeyRequestID is the key used to correlate the log lines of a single interaction.
	KeyRequestID = "request_id"

	// KeyApp is the key used for the application name.
	KeyApp = "app"
)

const (
	// FormatText writes human readable, coloured output.
	FormatText = "text"

	// FormatJSON writes one JSON object per line.
	FormatJSON = "json"
)

// Name is the name of the application doing the logging.
type Name string

// Config is the configuration for a logger.
type Config struct {
	// Name is attached to every log line.
	Name Name

	// Level is the minimum level that is written.
	Level slog.Level

	// Format is either FormatText or FormatJSON.
	Format string

	// Writer is where the logs go. Defaults to stdout.
	Writer io.Writer
}

// NewConfig creates a logging config with the defaults for the given application.
func NewConfig(name Name) *Config {
	return &Config{
		Name:   name,
		Level:  slog.LevelInfo,
		Format: FormatText,
		Writer: os.Stdout,
	}
}

// ParseLevel converts a level name to a slog level. An empty string is info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
	}
}

// CommonLogger creates the logger used across the application and sets it as the default.
func CommonLogger(c *Config) (*slog.Logger, error) {
	if c == nil {
		return nil, errors.New("logging config is nil")
	}

	w := c.Writer
	if w == nil {
		w = os.Stdout
	}

	var h slog.Handler
	switch c.Format {
	case FormatJSON:
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			AddSource: true,
			Level:     c.Level,
		})
	case FormatText, "":
		h = tint.NewHandler(w, &tint.Options{
			AddSource:  true,
			Level:      c.Level,
			TimeFormat: time.DateTime,
			NoColor:    !isTerminal(w),
		})
	default:
		return nil, fmt.Errorf("unknown log format %q", c.Format)
	}

	l := slog.New(h).With(slog.String(KeyApp, string(c.Name)))
	slog.SetDefault(l)
	return l, nil
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}

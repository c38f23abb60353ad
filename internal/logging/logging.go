// Package logging sets up the bot's zerolog logger and the structured events
// it emits for alerts, deliveries and provider calls.
package logging

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// LogConfig holds logging configuration.
type LogConfig struct {
	Level      string
	Console    bool
	File       bool
	FilePath   string
	MaxSize    int // megabytes
	MaxBackups int
	MaxAge     int // days
}

// DefaultLogConfig returns the default logging configuration.
func DefaultLogConfig() LogConfig {
	home, _ := os.UserHomeDir()
	return LogConfig{
		Level:      "info",
		Console:    true,
		File:       true,
		FilePath:   filepath.Join(home, ".config", "market-bot", "logs", "marketbot.log"),
		MaxSize:    20,
		MaxBackups: 5,
		MaxAge:     14,
	}
}

// Bootstrap returns a console-only logger for use before the config is read.
func Bootstrap() zerolog.Logger {
	return NewLoggerWithConfig(LogConfig{Level: "info", Console: true})
}

// NewLoggerWithConfig builds a logger writing to stderr and/or a rotating
// file, and sets the global level from cfg.
func NewLoggerWithConfig(cfg LogConfig) zerolog.Logger {
	zerolog.SetGlobalLevel(ParseLevel(cfg.Level))

	return zerolog.New(outputs(cfg)).
		With().
		Timestamp().
		Str("service", "marketbot").
		Logger()
}

// outputs picks the sinks enabled in cfg. With none enabled, or when the log
// directory cannot be created, logs still reach stderr.
func outputs(cfg LogConfig) io.Writer {
	var writers []io.Writer

	if cfg.Console {
		writers = append(writers, zerolog.ConsoleWriter{
			Out:           os.Stderr,
			TimeFormat:    time.Kitchen,
			NoColor:       color.NoColor,
			FieldsExclude: []string{"service"},
		})
	}

	if cfg.File && cfg.FilePath != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.FilePath), 0o755); err == nil {
			writers = append(writers, &lumberjack.Logger{
				Filename:   cfg.FilePath,
				MaxSize:    cfg.MaxSize,
				MaxBackups: cfg.MaxBackups,
				MaxAge:     cfg.MaxAge,
				Compress:   true,
			})
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr
	case 1:
		return writers[0]
	default:
		return zerolog.MultiLevelWriter(writers...)
	}
}

// ParseLevel maps a config level name to a zerolog level. Unknown or empty
// names fall back to info.
func ParseLevel(level string) zerolog.Level {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		return zerolog.InfoLevel
	}
	return lvl
}

// SetDebugLevel sets the global log level to debug.
func SetDebugLevel() {
	zerolog.SetGlobalLevel(zerolog.DebugLevel)
}

// WithSymbol adds a symbol to the logger context.
func WithSymbol(logger zerolog.Logger, symbol string) zerolog.Logger {
	return logger.With().Str("symbol", symbol).Logger()
}

// WithOperation tags log lines with the job that produced them.
func WithOperation(logger zerolog.Logger, operation string) zerolog.Logger {
	return logger.With().Str("operation", operation).Logger()
}

// LogAlert logs a watchlist trigger.
func LogAlert(logger zerolog.Logger, symbol string, changePct, threshold float64) {
	logger.Info().
		Str("event", "alert").
		Str("symbol", symbol).
		Float64("change_pct", changePct).
		Float64("threshold", threshold).
		Msg("Alert triggered")
}

// LogDelivery logs the outcome of a chat message send.
func LogDelivery(logger zerolog.Logger, channel string, richText bool, length int, err error) {
	event := logger.Info()
	msg := "Message delivered"
	if err != nil {
		event = logger.Error().Err(err)
		msg = "Message delivery failed"
	}
	event.
		Str("event", "delivery").
		Str("channel", channel).
		Bool("rich_text", richText).
		Int("length", length).
		Msg(msg)
}

// LogAPICall logs a provider request at debug level.
func LogAPICall(logger zerolog.Logger, method, endpoint string, duration time.Duration, err error) {
	event := logger.Debug()
	msg := "API call completed"
	if err != nil {
		event = logger.Warn().Err(err)
		msg = "API call failed"
	}
	event.
		Str("event", "api_call").
		Str("method", method).
		Str("endpoint", endpoint).
		Dur("duration", duration).
		Msg(msg)
}

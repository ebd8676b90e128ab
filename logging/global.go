// Package logging sets up the process-wide slog logger: human readable text on
// the console and JSON lines in a weekly rotating file.
package logging

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/giygas/cardioexplain-api/config"
)

// Options controls where and how much the service logs.
type Options struct {
	Dir            string
	Env            config.Environment
	Level          string
	RetentionWeeks int
	MaxFileSize    int64
	Verbose        bool // keep console output in test runs
}

// OptionsFromConfig maps the application configuration to logger options.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Dir:            cfg.LogDir,
		Env:            cfg.Env,
		Level:          cfg.LogLevel,
		RetentionWeeks: cfg.LogRetentionWeeks,
		MaxFileSize:    cfg.MaxLogFileSize,
	}
}

type LoggingService struct {
	Logger *slog.Logger
	file   *RotatingLogger
}

var DefaultLoggingService *LoggingService

// InitLogger builds the global logger and installs it as slog's default.
// When the log directory cannot be used the service logs to the console only.
func InitLogger(opts Options) {
	if DefaultLoggingService != nil {
		_ = DefaultLoggingService.Close()
	}
	DefaultLoggingService = NewLoggingService(opts)
	slog.SetDefault(DefaultLoggingService.Logger)
}

// Close flushes and closes the global logger's file, if any.
func Close() error {
	if DefaultLoggingService == nil {
		return nil
	}
	return DefaultLoggingService.Close()
}

// NewLoggingService creates a logging service without touching global state.
func NewLoggingService(opts Options) *LoggingService {
	consoleHandler := slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: GetConsoleLogLevel(opts.Env, opts.Level, opts.Verbose),
	})

	file, err := openRotatingLogger(opts)
	if err != nil {
		logger := slog.New(consoleHandler)
		logger.Error("File logging disabled", "dir", opts.Dir, "error", err)
		return &LoggingService{Logger: logger}
	}

	fileHandler := slog.NewJSONHandler(file, &slog.HandlerOptions{
		Level: GetFileLogLevel(),
	})

	return &LoggingService{
		Logger: slog.New(&multiHandler{handlers: []slog.Handler{consoleHandler, fileHandler}}),
		file:   file,
	}
}

func openRotatingLogger(opts Options) (*RotatingLogger, error) {
	if err := os.MkdirAll(opts.Dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	retention := opts.RetentionWeeks
	if retention <= 0 {
		retention = 4
	}

	rl := NewRotatingLoggerWithSizeLimit(opts.Dir, retention, opts.MaxFileSize)
	rl.mu.Lock()
	err := rl.open(getWeekKey(time.Now()), false)
	rl.mu.Unlock()
	if err != nil {
		return nil, err
	}

	rl.startSweeper(cleanupInterval)
	return rl, nil
}

// Close stops the rotating file, if the service has one.
func (s *LoggingService) Close() error {
	if s.file == nil {
		return nil
	}
	return s.file.Close()
}

// parseLogLevel maps LOG_LEVEL to a slog level, defaulting to info.
func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// GetConsoleLogLevel picks the console level: an explicit LOG_LEVEL wins,
// otherwise dev logs info and staging/prod log warnings. Test runs stay
// quiet (errors only) unless verbose is set.
func GetConsoleLogLevel(env config.Environment, logLevel string, verbose bool) slog.Level {
	if env == config.EnvTest {
		if verbose {
			return slog.LevelInfo
		}
		return slog.LevelError
	}

	if logLevel != "" {
		return parseLogLevel(logLevel)
	}

	switch env {
	case config.EnvProduction, config.EnvStaging:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// GetFileLogLevel returns the file level. The file keeps everything.
func GetFileLogLevel() slog.Level {
	return slog.LevelDebug
}

// multiHandler fans a record out to every handler that accepts its level
type multiHandler struct {
	handlers []slog.Handler
}

func (m *multiHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range m.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (m *multiHandler) Handle(ctx context.Context, r slog.Record) error {
	var firstErr error
	for _, h := range m.handlers {
		if !h.Enabled(ctx, r.Level) {
			continue
		}
		if err := h.Handle(ctx, r.Clone()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *multiHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithAttrs(attrs)
	}
	return &multiHandler{handlers: handlers}
}

func (m *multiHandler) WithGroup(name string) slog.Handler {
	handlers := make([]slog.Handler, len(m.handlers))
	for i, h := range m.handlers {
		handlers[i] = h.WithGroup(name)
	}
	return &multiHandler{handlers: handlers}
}

// Package-level functions for direct access

func logger() *slog.Logger {
	if DefaultLoggingService == nil || DefaultLoggingService.Logger == nil {
		return fallback
	}
	return DefaultLoggingService.Logger
}

var fallback = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))

func Info(msg string, args ...any) {
	logger().Info(msg, args...)
}

func Error(msg string, args ...any) {
	logger().Error(msg, args...)
}

func Warn(msg string, args ...any) {
	logger().Warn(msg, args...)
}

func Debug(msg string, args ...any) {
	logger().Debug(msg, args...)
}

// Logger returns the global logger, or the stderr fallback before InitLogger.
func Logger() *slog.Logger {
	return logger()
}

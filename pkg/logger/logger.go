package logger

import (
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is the logging interface used throughout strand
type Logger interface {
	Debug(msg string, fields ...Field)
	Info(msg string, fields ...Field)
	Warn(msg string, fields ...Field)
	Error(msg string, fields ...Field)
	With(fields ...Field) Logger
	Named(name string) Logger
	Sync() error
}

// Config contains configuration for the logger
type Config struct {
	Level       string
	Format      string
	Development bool
}

// logger implements the Logger interface using zap
type logger struct {
	zap *zap.Logger
}

// noopLogger implements Logger but does nothing
type noopLogger struct{}

// NewLogger creates a new logger with the given configuration
func NewLogger(config Config) Logger {
	logLevel := zapcore.InfoLevel
	switch strings.ToLower(config.Level) {
	case "debug":
		logLevel = zapcore.DebugLevel
	case "info":
		logLevel = zapcore.InfoLevel
	case "warn", "warning":
		logLevel = zapcore.WarnLevel
	case "error":
		logLevel = zapcore.ErrorLevel
	}

	var zapConfig zap.Config
	if config.Development && config.Format != "json" {
		zapConfig = zap.NewDevelopmentConfig()
		zapConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	} else {
		zapConfig = zap.NewProductionConfig()
	}
	zapConfig.Level = zap.NewAtomicLevelAt(logLevel)

	zapLogger, err := zapConfig.Build(zap.AddCallerSkip(1))
	if err != nil {
		// Build only fails on invalid output paths, which the presets
		// above never produce.
		zapLogger = zap.NewNop()
	}

	return &logger{zap: zapLogger}
}

// NewDevelopmentLogger creates a colored console logger at debug level
func NewDevelopmentLogger() Logger {
	return NewLogger(Config{Level: "debug", Development: true})
}

// NewProductionLogger creates a JSON logger at info level
func NewProductionLogger() Logger {
	return NewLogger(Config{Level: "info", Format: "json"})
}

// NewNoopLogger creates a logger that does nothing
func NewNoopLogger() Logger {
	return &noopLogger{}
}

// NewTestLogger wraps an existing zap logger, useful in tests
func NewTestLogger(zl *zap.Logger) Logger {
	return &logger{zap: zl}
}

func (l *logger) Debug(msg string, fields ...Field) {
	l.zap.Debug(msg, fieldsToZap(fields)...)
}

func (l *logger) Info(msg string, fields ...Field) {
	l.zap.Info(msg, fieldsToZap(fields)...)
}

func (l *logger) Warn(msg string, fields ...Field) {
	l.zap.Warn(msg, fieldsToZap(fields)...)
}

func (l *logger) Error(msg string, fields ...Field) {
	l.zap.Error(msg, fieldsToZap(fields)...)
}

func (l *logger) With(fields ...Field) Logger {
	return &logger{zap: l.zap.With(fieldsToZap(fields)...)}
}

func (l *logger) Named(name string) Logger {
	return &logger{zap: l.zap.Named(name)}
}

func (l *logger) Sync() error {
	return l.zap.Sync()
}

func (l *noopLogger) Debug(msg string, fields ...Field) {}
func (l *noopLogger) Info(msg string, fields ...Field)  {}
func (l *noopLogger) Warn(msg string, fields ...Field)  {}
func (l *noopLogger) Error(msg string, fields ...Field) {}
func (l *noopLogger) With(fields ...Field) Logger       { return l }
func (l *noopLogger) Named(name string) Logger          { return l }
func (l *noopLogger) Sync() error                       { return nil }

// fieldsToZap converts Field values to zap.Field
func fieldsToZap(fields []Field) []zap.Field {
	zapFields := make([]zap.Field, len(fields))
	for i, field := range fields {
		zapFields[i] = field.ZapField()
	}
	return zapFields
}

// Must logs the error and panics if err is not nil
func Must(err error, log Logger, msg string, fields ...Field) {
	if err != nil {
		allFields := append(fields, Error(err))
		log.Error(msg, allFields...)
		panic(fmt.Sprintf("%s: %v", msg, err))
	}
}

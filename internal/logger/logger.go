// Package logger builds the zap logger used across the CLI.
package logger

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config selects the level and encoder.
type Config struct {
	Level    string
	Encoding string
}

// New builds a zap.Logger writing to stderr.
func New(cfg Config) *zap.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter builds a zap.Logger writing to w.
func NewWithWriter(cfg Config, w io.Writer) *zap.Logger {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "timestamp"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	level := zapcore.WarnLevel
	if err := level.Set(cfg.Level); err != nil {
		// fall back to warn level if parsing fails
		level = zapcore.WarnLevel
	}

	var encoder zapcore.Encoder
	switch cfg.Encoding {
	case "json":
		encoder = zapcore.NewJSONEncoder(encoderCfg)
	default:
		encoderCfg.EncodeLevel = zapcore.CapitalLevelEncoder
		encoder = zapcore.NewConsoleEncoder(encoderCfg)
	}

	core := zapcore.NewCore(
		encoder,
		zapcore.AddSync(zapcore.Lock(zapcore.AddSync(w))),
		level,
	)

	return zap.New(core)
}

// Level maps the CLI's --debug flag to a zap level name.
func Level(debug bool) string {
	if debug {
		return "debug"
	}
	return "warn"
}

// Package logging builds the zap loggers used by the engine and CLI.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/meenmo/cashflowrisk/config"
)

// New builds a logger writing to w. Development mode uses the console
// encoder with coloured capital levels; otherwise cfg.Encoding selects
// "json" or "console".
func New(cfg config.LoggingConfig, w io.Writer) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(strings.ToLower(cfg.Level))
	if err != nil {
		return nil, fmt.Errorf("logging level %q: %w", cfg.Level, err)
	}

	var enc zapcore.Encoder
	if cfg.Development {
		ec := zap.NewDevelopmentEncoderConfig()
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	} else {
		ec := zap.NewProductionEncoderConfig()
		ec.TimeKey = "time"
		ec.EncodeTime = zapcore.ISO8601TimeEncoder
		switch strings.ToLower(cfg.Encoding) {
		case "", "json":
			enc = zapcore.NewJSONEncoder(ec)
		case "console":
			enc = zapcore.NewConsoleEncoder(ec)
		default:
			return nil, fmt.Errorf("logging encoding %q not supported", cfg.Encoding)
		}
	}

	core := zapcore.NewCore(enc, zapcore.AddSync(w), level)
	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	if cfg.Development {
		opts = append(opts, zap.Development())
	}
	return zap.New(core, opts...), nil
}

package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/eternalApril/respkit/internal/config"
)

// New creates a configured logger
// level: "debug", "info", "warn", "error"
// format: "json" (production) or "console" (development)
// paths default to stderr, stdout carries the data the CLI produces
func New(cfg config.LogConfig) (*zap.Logger, error) {
	// Parse level
	lvl, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}

	encoding := cfg.Format
	if encoding != "json" {
		encoding = "console"
	}

	paths := cfg.Paths
	if len(paths) == 0 {
		paths = []string{"stderr"}
	}

	zcfg := zap.Config{
		Level:       zap.NewAtomicLevelAt(lvl),
		Development: encoding == "console",
		Encoding:    encoding,
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "ts",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "msg",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.SecondsDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      paths,
		ErrorOutputPaths: []string{"stderr"},
	}

	return zcfg.Build()
}

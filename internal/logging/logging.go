// Package logging builds the server's zap logger.
//
// Stdout carries the MCP protocol, so console output always goes to stderr.
// An optional log file is rotated by lumberjack and always written as JSON.
package logging

import (
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config represents the logger configuration.
type Config struct {
	// Level is the minimum level: debug, info, warn or error.
	Level string `mapstructure:"level" json:"level" default:"info" validate:"oneof=debug info warn error"`

	// Format is the stderr encoding: console or json.
	Format string `mapstructure:"format" json:"format" default:"console" validate:"oneof=console json"`

	// File enables a rotated JSON log file at this path when set.
	File string `mapstructure:"file" json:"file"`

	// MaxSize is the size in megabytes at which the file is rotated.
	MaxSize int `mapstructure:"max_size" json:"maxSize" default:"10" validate:"gte=1"`

	// MaxBackups is the number of rotated files to keep.
	MaxBackups int `mapstructure:"max_backups" json:"maxBackups" default:"3" validate:"gte=0"`

	// MaxAge is the number of days to keep rotated files.
	MaxAge int `mapstructure:"max_age" json:"maxAge" default:"28" validate:"gte=0"`

	// Compress gzips rotated files.
	Compress bool `mapstructure:"compress" json:"compress"`
}

// ZapLevel converts Level to a zapcore.Level. Unknown values mean info.
func (c Config) ZapLevel() zapcore.Level {
	switch strings.ToLower(c.Level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func encoderConfig() zapcore.EncoderConfig {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.ISO8601TimeEncoder
	ec.EncodeDuration = zapcore.StringDurationEncoder
	return ec
}

// New creates a logger writing to stderr and, when cfg.File is set, to a
// rotated file as well.
func New(cfg Config, stderr io.Writer) (*zap.Logger, error) {
	level := zap.NewAtomicLevelAt(cfg.ZapLevel())

	var enc zapcore.Encoder
	switch strings.ToLower(cfg.Format) {
	case "", "console":
		ec := encoderConfig()
		ec.EncodeLevel = zapcore.CapitalLevelEncoder
		enc = zapcore.NewConsoleEncoder(ec)
	case "json":
		enc = zapcore.NewJSONEncoder(encoderConfig())
	default:
		return nil, fmt.Errorf("unknown log format %q", cfg.Format)
	}

	cores := []zapcore.Core{zapcore.NewCore(enc, zapcore.Lock(zapcore.AddSync(stderr)), level)}
	if cfg.File != "" {
		rotator := &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    cfg.MaxSize,
			MaxBackups: cfg.MaxBackups,
			MaxAge:     cfg.MaxAge,
			Compress:   cfg.Compress,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encoderConfig()), zapcore.AddSync(rotator), level))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller(), zap.ErrorOutput(zapcore.AddSync(stderr))), nil
}

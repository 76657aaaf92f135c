package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/exp/zapslog"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Config controls the process logger. File may be empty to log to the
// console only.
type Config struct {
	Level       string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
	File        string `yaml:"file"`
	MaxSizeMB   int    `yaml:"max_size_mb" validate:"gte=0"`
	MaxBackups  int    `yaml:"max_backups" validate:"gte=0"`
	MaxAgeDays  int    `yaml:"max_age_days" validate:"gte=0"`
	JSONConsole bool   `yaml:"json_console"`
}

func DefaultConfig() Config {
	return Config{
		Level:      "info",
		MaxSizeMB:  50,
		MaxBackups: 5,
		MaxAgeDays: 28,
	}
}

// ParseLevel maps a level name onto a zap level, defaulting to info.
func ParseLevel(s string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

// New builds a zap-backed slog logger writing to console and, when
// configured, to a rotated JSON file. The returned func flushes and closes
// the sinks.
func New(conf Config, console io.Writer) (*slog.Logger, func() error) {
	if console == nil {
		console = os.Stderr
	}
	level := zap.NewAtomicLevelAt(ParseLevel(conf.Level))

	encConf := zap.NewProductionEncoderConfig()
	encConf.TimeKey = "time"
	encConf.EncodeTime = zapcore.ISO8601TimeEncoder

	var consoleEnc zapcore.Encoder
	if conf.JSONConsole {
		consoleEnc = zapcore.NewJSONEncoder(encConf)
	} else {
		devConf := encConf
		devConf.EncodeLevel = zapcore.CapitalLevelEncoder
		consoleEnc = zapcore.NewConsoleEncoder(devConf)
	}
	cores := []zapcore.Core{
		zapcore.NewCore(consoleEnc, zapcore.AddSync(console), level),
	}

	var rotator *lumberjack.Logger
	if conf.File != "" {
		rotator = &lumberjack.Logger{
			Filename:   conf.File,
			MaxSize:    conf.MaxSizeMB,
			MaxBackups: conf.MaxBackups,
			MaxAge:     conf.MaxAgeDays,
			Compress:   true,
		}
		cores = append(cores, zapcore.NewCore(zapcore.NewJSONEncoder(encConf), zapcore.AddSync(rotator), level))
	}
	core := zapcore.NewTee(cores...)
	logger := slog.New(zapslog.NewHandler(core, zapslog.WithCaller(true)))

	closer := func() error {
		_ = core.Sync()
		if rotator != nil {
			return rotator.Close()
		}
		return nil
	}
	return logger, closer
}

// Setup installs the logger from New as the slog default.
func Setup(conf Config) func() error {
	logger, closer := New(conf, os.Stderr)
	slog.SetDefault(logger)
	return closer
}

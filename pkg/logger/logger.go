package logger

import (
	"fmt"

	"github.com/GlebRadaev/finance/internal/config"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const timeLayout = "15:04:05 02-01-2006"

var logLvlMap = map[string]zapcore.Level{
	"debug": zapcore.DebugLevel,
	"info":  zapcore.InfoLevel,
	"warn":  zapcore.WarnLevel,
	"error": zapcore.ErrorLevel,
}

// InitLogger builds a logger for the configured level and format and installs
// it as the zap global, so packages log through zap.L(). An empty format
// means console.
func InitLogger(conf *config.Config) error {
	lvl, ok := logLvlMap[conf.LogLvl]
	if !ok {
		return fmt.Errorf("unsupported log lvl: %s", conf.LogLvl)
	}

	encoding := conf.LogFormat
	if encoding == "" {
		encoding = "console"
	}
	if encoding != "console" && encoding != "json" {
		return fmt.Errorf("unsupported log format: %s", conf.LogFormat)
	}

	encodeConfig := zapcore.EncoderConfig{
		TimeKey:        "ts",
		LevelKey:       "level",
		NameKey:        "logger",
		CallerKey:      "caller",
		MessageKey:     "msg",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeTime:     zapcore.TimeEncoderOfLayout(timeLayout),
		EncodeDuration: zapcore.MillisDurationEncoder,
		EncodeLevel:    zapcore.CapitalColorLevelEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}
	if encoding == "json" {
		encodeConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		encodeConfig.EncodeLevel = zapcore.LowercaseLevelEncoder
	}

	c := zap.Config{
		Level:            zap.NewAtomicLevelAt(lvl),
		Development:      lvl == zapcore.DebugLevel,
		Encoding:         encoding,
		EncoderConfig:    encodeConfig,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	logger, err := c.Build()
	if err != nil {
		return fmt.Errorf("unable to create zap logger, error: %w", err)
	}

	zap.ReplaceGlobals(logger.Named("finance"))

	return nil
}

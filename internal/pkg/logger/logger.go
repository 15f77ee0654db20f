package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New 构建 zap logger，release 模式输出 JSON，其余模式输出彩色控制台日志
func New(mode, level string) (*zap.Logger, error) {
	var cfg zap.Config

	if mode == "release" {
		cfg = zap.NewProductionConfig()
	} else {
		cfg = zap.NewDevelopmentConfig()
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	if level != "" {
		lvl, err := zapcore.ParseLevel(level)
		if err != nil {
			return nil, err
		}
		cfg.Level = zap.NewAtomicLevelAt(lvl)
	}

	return cfg.Build()
}

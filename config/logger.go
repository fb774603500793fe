package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process logger. Development gets the console encoder.
func NewLogger(s Settings) (*zap.Logger, error) {
	config := zap.NewProductionConfig()
	if s.IsDevelopment() {
		config = zap.NewDevelopmentConfig()
	}
	if s.Debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return logger.With(zap.String("app", s.AppName)), nil
}

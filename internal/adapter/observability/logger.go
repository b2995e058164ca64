// Package observability builds the structured logger the rest of the
// application logs through.
package observability

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds a sugared zap logger. Debug mode switches to the
// development config with everything from debug level up; otherwise logs go
// out at info level in console encoding.
func NewLogger(debug bool) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	if debug {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}
	cfg.Encoding = "console"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger.Sugar(), nil
}

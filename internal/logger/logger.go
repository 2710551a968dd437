package logger

import (
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a JSON production logger for "release"/"prod" mode and a console
// development logger otherwise.
func New(mode string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	if IsRelease(mode) {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}
	return cfg.Build()
}

// IsRelease reports whether mode names a production deployment.
func IsRelease(mode string) bool {
	switch strings.ToLower(strings.TrimSpace(mode)) {
	case "release", "prod", "production":
		return true
	}
	return false
}

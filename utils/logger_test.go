package utils

import (
	"testing"

	"bookline/config"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap/zapcore"
)

func TestParseLogLevel(t *testing.T) {
	saved := config.AppConfig
	defer func() { config.AppConfig = saved }()
	config.AppConfig.Env = "development"

	tests := []struct {
		level string
		want  zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"warn", zapcore.WarnLevel},
		{"warning", zapcore.WarnLevel},
		{"ERROR", zapcore.ErrorLevel},
		{"  info  ", zapcore.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseLogLevel(tt.level), tt.level)
	}

	// Unknown or unset levels keep the environment default.
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel(""))
	assert.Equal(t, zapcore.DebugLevel, parseLogLevel("verbose"))

	config.AppConfig.Env = "production"
	assert.Equal(t, zapcore.InfoLevel, parseLogLevel(""))
}

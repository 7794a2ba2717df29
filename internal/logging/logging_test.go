package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestNew_Levels(t *testing.T) {
	tests := map[string]zapcore.Level{
		"debug":   zapcore.DebugLevel,
		"info":    zapcore.InfoLevel,
		"warn":    zapcore.WarnLevel,
		"error":   zapcore.ErrorLevel,
		"verbose": zapcore.InfoLevel,
	}

	for level, want := range tests {
		for _, format := range []string{"json", "console"} {
			logger, err := New(level, format)
			require.NoError(t, err)
			assert.True(t, logger.Core().Enabled(want), "%s/%s should enable %s", level, format, want)
			if want > zapcore.DebugLevel {
				assert.False(t, logger.Core().Enabled(want-1), "%s/%s should not enable %s", level, format, want-1)
			}
		}
	}
}

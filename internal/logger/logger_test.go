package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"Groupool/internal/config"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name  string
		cfg   config.LogConfig
		debug bool
	}{
		{"debug console", config.LogConfig{Level: "DEBUG", Encoding: "console"}, true},
		{"json info", config.LogConfig{Level: "info", Encoding: "json", Sampling: true}, false},
		{"bad level falls back to info", config.LogConfig{Level: "loud"}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l, err := New(tt.cfg)
			require.NoError(t, err)
			assert.Equal(t, tt.debug, l.Core().Enabled(zapcore.DebugLevel))
			assert.True(t, l.Core().Enabled(zapcore.InfoLevel))
		})
	}
}

func TestNew_UnknownEncoding(t *testing.T) {
	_, err := New(config.LogConfig{Encoding: "xml"})
	assert.Error(t, err)
}

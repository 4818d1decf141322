package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLogger_Defaults(t *testing.T) {
	logger, err := NewLogger(nil)
	require.NoError(t, err)
	require.NotNil(t, logger)
	assert.NotNil(t, logger.Underlying())
}

func TestNewLogger_InvalidLevel(t *testing.T) {
	cfg := &Config{Level: "verbose", Format: "json"}
	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log level")
}

func TestNewLogger_InvalidFormat(t *testing.T) {
	cfg := &Config{Level: "debug", Format: "xml"}
	_, err := NewLogger(cfg)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid log format")
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "json debug", cfg: Config{Level: "debug", Format: "json"}},
		{name: "console warn", cfg: Config{Level: "warn", Format: "console"}},
		{name: "bad level", cfg: Config{Level: "loud", Format: "json"}, wantErr: true},
		{name: "bad format", cfg: Config{Level: "info", Format: "text"}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestTemporalAdapter(t *testing.T) {
	adapter := NewTemporalAdapter(NewNop())
	require.NotNil(t, adapter)

	// Must not panic with odd or empty keyvals.
	adapter.Debug("debug message", "key", "value")
	adapter.Info("info message")
	adapter.Warn("warn message", "attempt", 3)
	adapter.Error("error message", "error", assert.AnError)
}

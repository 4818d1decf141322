package research

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsTerminalActivityError(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		terminal bool
	}{
		{"nil", nil, false},
		{"forbidden", errors.New("upstream returned 403 Forbidden"), true},
		{"invalid request", errors.New("invalid_request_error: bad size parameter"), true},
		{"org verification", errors.New("Your organization must be verified to use this model"), true},
		{"quota", errors.New("insufficient_quota: billing limit reached"), true},
		{"bad key", errors.New("invalid_api_key provided"), true},
		{"serialization", errors.New("serialization error: cannot encode payload"), true},
		{"encoding", errors.New("invalid utf-8 sequence in response body"), true},
		{"wrapped", fmt.Errorf("generate image: %w", errors.New("insufficient_quota")), true},
		{"timeout", errors.New("context deadline exceeded"), false},
		{"rate limited", errors.New("429 too many requests"), false},
		{"server error", errors.New("500 internal server error"), false},
		{"connection reset", errors.New("read tcp: connection reset by peer"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.terminal, IsTerminalActivityError(tt.err))
		})
	}
}

func TestIsTerminalActivityMessage(t *testing.T) {
	assert.True(t, IsTerminalActivityMessage("request failed: 403"))
	assert.False(t, IsTerminalActivityMessage(""))
	assert.False(t, IsTerminalActivityMessage("transient network failure"))
}

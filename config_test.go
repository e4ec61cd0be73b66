package approvio

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestConfigValidate(t *testing.T) {
	testCases := []struct {
		name        string
		config      *Config
		expectError string
	}{
		{name: "defaults are valid", config: DefaultConfig()},
		{
			name: "webhook kind requires url",
			config: func() *Config {
				ret := DefaultConfig()
				ret.Notifier = NotifierConfig{Kind: NotifierWebhook}
				return ret
			}(),
			expectError: "notifier.webhookURL is required for the webhook notifier",
		},
		{
			name: "unknown notifier kind",
			config: func() *Config {
				ret := DefaultConfig()
				ret.Notifier.Kind = "carrier-pigeon"
				return ret
			}(),
			expectError: "unsupported notifier kind: carrier-pigeon",
		},
		{
			name: "zero window",
			config: func() *Config {
				ret := DefaultConfig()
				ret.Approval.WindowSec = 0
				return ret
			}(),
			expectError: "approval.windowSec must be > 0",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.config.Validate()
			if tc.expectError != "" {
				assert.EqualError(t, err, tc.expectError)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadConfig(t *testing.T) {
	location := filepath.Join(t.TempDir(), "config.yaml")
	document := `approval:
  windowSec: 3600
  sweepIntervalSec: 30
http:
  addr: ":9090"
notifier:
  kind: queue
`
	assert.NoError(t, os.WriteFile(location, []byte(document), 0o644))

	config, err := LoadConfig(context.Background(), location)
	assert.NoError(t, err)
	assert.Equal(t, time.Hour, config.Approval.Window())
	assert.Equal(t, 30*time.Second, config.Approval.SweepInterval())
	assert.Equal(t, ":9090", config.HTTP.Addr)
	assert.Equal(t, NotifierQueue, config.Notifier.Kind)
	// unset sections keep their defaults
	assert.Empty(t, config.Store.BasePath)

	_, err = LoadConfig(context.Background(), filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

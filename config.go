package approvio

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the orchestrator
// configuration. It can be populated from YAML or JSON; the zero value is
// useful, all nested fields inherit their package defaults.
type Config struct {
	Approval ApprovalConfig `json:"approval" yaml:"approval"`
	HTTP     HTTPConfig     `json:"http" yaml:"http"`
	Store    StoreConfig    `json:"store" yaml:"store"`
	Notifier NotifierConfig `json:"notifier" yaml:"notifier"`
}

// ApprovalConfig controls the decision window and the expiry sweeper.
type ApprovalConfig struct {
	// WindowSec is the suspension window: how long an instance may wait
	// for a decision before it expires.
	WindowSec int `json:"windowSec" yaml:"windowSec"`

	// SweepIntervalSec is the period of the background expiry sweeper.
	SweepIntervalSec int `json:"sweepIntervalSec" yaml:"sweepIntervalSec"`
}

// HTTPConfig controls the endpoint listener.
type HTTPConfig struct {
	Addr string `json:"addr" yaml:"addr"`
}

// StoreConfig selects the instance store. An empty BasePath keeps records
// in memory; otherwise JSON documents are persisted under the path (any
// afs-supported scheme).
type StoreConfig struct {
	BasePath string `json:"basePath,omitempty" yaml:"basePath,omitempty"`
}

// NotifierConfig selects the decision channel.
type NotifierConfig struct {
	// Kind is one of log, queue or webhook; empty defaults to log.
	Kind string `json:"kind,omitempty" yaml:"kind,omitempty"`

	// WebhookURL is required when Kind is webhook.
	WebhookURL string `json:"webhookURL,omitempty" yaml:"webhookURL,omitempty"`
}

// Notifier kinds.
const (
	NotifierLog     = "log"
	NotifierQueue   = "queue"
	NotifierWebhook = "webhook"
)

// DefaultConfig returns a Config populated with the package defaults.
func DefaultConfig() *Config {
	return &Config{
		Approval: ApprovalConfig{
			WindowSec:        int((24 * time.Hour).Seconds()),
			SweepIntervalSec: 60,
		},
		HTTP:     HTTPConfig{Addr: ":8080"},
		Notifier: NotifierConfig{Kind: NotifierLog},
	}
}

// Window returns the decision window as a duration.
func (c *ApprovalConfig) Window() time.Duration {
	return time.Duration(c.WindowSec) * time.Second
}

// SweepInterval returns the sweeper period as a duration.
func (c *ApprovalConfig) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSec) * time.Second
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.Approval.WindowSec <= 0 {
		return fmt.Errorf("approval.windowSec must be > 0")
	}
	if c.Approval.SweepIntervalSec <= 0 {
		return fmt.Errorf("approval.sweepIntervalSec must be > 0")
	}
	switch c.Notifier.Kind {
	case "", NotifierLog, NotifierQueue:
	case NotifierWebhook:
		if c.Notifier.WebhookURL == "" {
			return fmt.Errorf("notifier.webhookURL is required for the webhook notifier")
		}
	default:
		return fmt.Errorf("unsupported notifier kind: %v", c.Notifier.Kind)
	}
	return nil
}

// LoadConfig reads a YAML config document from the supplied URL/location
// (file path, or any afs-supported scheme) and overlays it on the defaults.
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %v: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to decode config %v: %w", URL, err)
	}
	if err = config.Validate(); err != nil {
		return nil, err
	}
	return config, nil
}

// Package config provides configuration loading for researchd.
package config

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/fyrsmithlabs/researchd/internal/logging"
)

// Secret is a string that redacts itself when formatted or marshaled.
// Use Value() to access the underlying secret.
type Secret string

// String implements fmt.Stringer. Always returns redacted value.
func (s Secret) String() string {
	if s == "" {
		return ""
	}
	return "[REDACTED]"
}

// GoString implements fmt.GoStringer for %#v formatting.
func (s Secret) GoString() string {
	return "Secret([REDACTED])"
}

// Value returns the actual secret value. Use sparingly.
func (s Secret) Value() string {
	return string(s)
}

// IsSet returns true if the secret has a non-empty value.
func (s Secret) IsSet() bool {
	return s != ""
}

// MarshalJSON implements json.Marshaler. Always returns redacted value.
func (s Secret) MarshalJSON() ([]byte, error) {
	if s == "" {
		return json.Marshal("")
	}
	return json.Marshal("[REDACTED]")
}

// Config is the root configuration for researchd binaries.
type Config struct {
	Temporal TemporalConfig `koanf:"temporal"`
	OpenAI   OpenAIConfig   `koanf:"openai"`
	Render   RenderConfig   `koanf:"render"`
	Logging  logging.Config `koanf:"logging"`
}

// TemporalConfig configures the connection to the Temporal server.
type TemporalConfig struct {
	HostPort  string `koanf:"host_port"`
	Namespace string `koanf:"namespace"`
	TaskQueue string `koanf:"task_queue"`
}

// OpenAIConfig configures the OpenAI-backed research agents.
type OpenAIConfig struct {
	APIKey  Secret        `koanf:"api_key"`
	BaseURL string        `koanf:"base_url"`
	Timeout time.Duration `koanf:"timeout"`

	// Per-agent model selection. The planner and writer carry the heavy
	// reasoning load; triage and search run on the cheaper model.
	TriageModel  string `koanf:"triage_model"`
	PlannerModel string `koanf:"planner_model"`
	SearchModel  string `koanf:"search_model"`
	WriterModel  string `koanf:"writer_model"`
	ImageModel   string `koanf:"image_model"`
}

// RenderConfig configures report artifact generation.
type RenderConfig struct {
	OutputDir        string `koanf:"output_dir"`
	ImageWidth       int    `koanf:"image_width"`
	ImageQuality     string `koanf:"image_quality"`
	ImageSize        string `koanf:"image_size"`
	ImageFormat      string `koanf:"image_format"`
	PDFEnabled       bool   `koanf:"pdf_enabled"`
	BrowserBinPath   string `koanf:"browser_bin_path"`
	PDFPrimaryColor  string `koanf:"pdf_primary_color"`
	PDFBaseFontSize  int    `koanf:"pdf_base_font_size"`
}

// Validate checks the configuration for values that would fail at runtime.
func (c *Config) Validate() error {
	if c.Temporal.HostPort == "" {
		return fmt.Errorf("temporal.host_port is required")
	}
	if c.Temporal.TaskQueue == "" {
		return fmt.Errorf("temporal.task_queue is required")
	}
	if c.OpenAI.Timeout < 0 {
		return fmt.Errorf("openai.timeout must not be negative")
	}
	if c.Render.ImageWidth < 0 {
		return fmt.Errorf("render.image_width must not be negative")
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

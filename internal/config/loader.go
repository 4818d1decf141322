package config

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"
)

const maxConfigFileSize = 1024 * 1024 // 1MB

// Load loads configuration from a YAML file, then overrides with
// environment variables.
//
// Configuration precedence (highest to lowest):
//  1. Environment variables (TEMPORAL_HOST_PORT, OPENAI_API_KEY, ...)
//  2. YAML config file
//  3. Hardcoded defaults
//
// The configPath parameter names the YAML file to load; if empty or the
// file does not exist, only environment variables and defaults apply.
//
// Environment variables use an underscore separator: the first segment is
// the section, the rest is the field name.
//
//	TEMPORAL_HOST_PORT -> temporal.host_port
//	OPENAI_API_KEY     -> openai.api_key
//	RENDER_OUTPUT_DIR  -> render.output_dir
func Load(configPath string) (*Config, error) {
	k := koanf.New(".")

	if configPath != "" {
		if _, err := os.Stat(configPath); err == nil {
			// Open once and read through the descriptor to avoid a TOCTOU
			// race between the size check and the parse.
			f, err := os.Open(configPath)
			if err != nil {
				return nil, fmt.Errorf("failed to open config file: %w", err)
			}
			defer f.Close()

			info, err := f.Stat()
			if err != nil {
				return nil, fmt.Errorf("failed to stat config file: %w", err)
			}
			if info.Size() > maxConfigFileSize {
				return nil, fmt.Errorf("config file too large: %d bytes (max %d)", info.Size(), maxConfigFileSize)
			}

			content, err := io.ReadAll(f)
			if err != nil {
				return nil, fmt.Errorf("failed to read config file: %w", err)
			}

			if err := k.Load(rawbytes.Provider(content), yaml.Parser()); err != nil {
				return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
			}
		}
	}

	// Environment overrides: SECTION_FIELD_NAME -> section.field_name.
	if err := k.Load(env.Provider("", ".", func(s string) string {
		lower := strings.ToLower(s)
		parts := strings.SplitN(lower, "_", 2)
		if len(parts) == 1 {
			return lower
		}
		return parts[0] + "." + parts[1]
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// applyDefaults sets default values for missing configuration fields.
func applyDefaults(cfg *Config) {
	if cfg.Temporal.HostPort == "" {
		cfg.Temporal.HostPort = "localhost:7233"
	}
	if cfg.Temporal.Namespace == "" {
		cfg.Temporal.Namespace = "default"
	}
	if cfg.Temporal.TaskQueue == "" {
		cfg.Temporal.TaskQueue = "research-queue"
	}

	if cfg.OpenAI.BaseURL == "" {
		cfg.OpenAI.BaseURL = "https://api.openai.com"
	}
	if cfg.OpenAI.Timeout == 0 {
		cfg.OpenAI.Timeout = 90 * time.Second
	}
	if cfg.OpenAI.TriageModel == "" {
		cfg.OpenAI.TriageModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.PlannerModel == "" {
		cfg.OpenAI.PlannerModel = "gpt-4o"
	}
	if cfg.OpenAI.SearchModel == "" {
		cfg.OpenAI.SearchModel = "gpt-4o-mini"
	}
	if cfg.OpenAI.WriterModel == "" {
		cfg.OpenAI.WriterModel = "o3-mini"
	}
	if cfg.OpenAI.ImageModel == "" {
		cfg.OpenAI.ImageModel = "gpt-image-1"
	}

	if cfg.Render.OutputDir == "" {
		cfg.Render.OutputDir = "research_artifacts"
	}
	if cfg.Render.ImageWidth == 0 {
		cfg.Render.ImageWidth = 600
	}
	if cfg.Render.ImageQuality == "" {
		cfg.Render.ImageQuality = "high"
	}
	if cfg.Render.ImageSize == "" {
		cfg.Render.ImageSize = "1024x1024"
	}
	if cfg.Render.ImageFormat == "" {
		cfg.Render.ImageFormat = "png"
	}
	if cfg.Render.PDFBaseFontSize == 0 {
		cfg.Render.PDFBaseFontSize = 11
	}
	if cfg.Render.PDFPrimaryColor == "" {
		cfg.Render.PDFPrimaryColor = "#1a1a2e"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "console"
	}
}

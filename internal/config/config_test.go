package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "localhost:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "default", cfg.Temporal.Namespace)
	assert.Equal(t, "research-queue", cfg.Temporal.TaskQueue)
	assert.Equal(t, "https://api.openai.com", cfg.OpenAI.BaseURL)
	assert.Equal(t, 90*time.Second, cfg.OpenAI.Timeout)
	assert.Equal(t, "gpt-4o", cfg.OpenAI.PlannerModel)
	assert.Equal(t, "o3-mini", cfg.OpenAI.WriterModel)
	assert.Equal(t, 600, cfg.Render.ImageWidth)
	assert.Equal(t, "research_artifacts", cfg.Render.OutputDir)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_YAMLFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
temporal:
  host_port: "temporal.example.com:7233"
  namespace: "research"
openai:
  api_key: "sk-test-key"
  writer_model: "gpt-4o"
render:
  image_width: 800
  pdf_enabled: true
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0600))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "temporal.example.com:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "research", cfg.Temporal.Namespace)
	assert.Equal(t, "sk-test-key", cfg.OpenAI.APIKey.Value())
	assert.Equal(t, "gpt-4o", cfg.OpenAI.WriterModel)
	assert.Equal(t, 800, cfg.Render.ImageWidth)
	assert.True(t, cfg.Render.PDFEnabled)

	// Defaults still fill the gaps.
	assert.Equal(t, "research-queue", cfg.Temporal.TaskQueue)
	assert.Equal(t, "gpt-4o-mini", cfg.OpenAI.TriageModel)
}

func TestLoad_EnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("temporal:\n  host_port: \"from-file:7233\"\n"), 0600))

	t.Setenv("TEMPORAL_HOST_PORT", "from-env:7233")
	t.Setenv("OPENAI_API_KEY", "sk-from-env")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "from-env:7233", cfg.Temporal.HostPort)
	assert.Equal(t, "sk-from-env", cfg.OpenAI.APIKey.Value())
}

func TestLoad_FileTooLarge(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	big := make([]byte, maxConfigFileSize+1)
	require.NoError(t, os.WriteFile(path, big, 0600))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too large")
}

func TestSecret_Redaction(t *testing.T) {
	s := Secret("sk-very-secret")

	assert.Equal(t, "[REDACTED]", s.String())
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%s", s))
	assert.Equal(t, "[REDACTED]", fmt.Sprintf("%v", s))
	assert.Equal(t, "Secret([REDACTED])", fmt.Sprintf("%#v", s))
	assert.Equal(t, "sk-very-secret", s.Value())
	assert.True(t, s.IsSet())

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.JSONEq(t, `"[REDACTED]"`, string(data))

	empty := Secret("")
	assert.Equal(t, "", empty.String())
	assert.False(t, empty.IsSet())
}

func TestConfig_Validate(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	cfg.Temporal.HostPort = ""
	assert.Error(t, cfg.Validate())

	cfg.Temporal.HostPort = "localhost:7233"
	cfg.Render.ImageWidth = -1
	assert.Error(t, cfg.Validate())
}

package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	assert.True(t, cfg.Transport.RequireTLS)
	assert.Empty(t, cfg.PermitList.Recipients)
	assert.Equal(t, "BLOCK", cfg.Policy.Actions["insecure_transport"])
	assert.Equal(t, "REDACT", cfg.Policy.Actions["contains_phi_not_permitted"])
	assert.Equal(t, "ALLOW", cfg.Policy.Actions["otherwise"])
	assert.Equal(t, "piisec/pii-ner-en", cfg.Model.ID)
	require.NoError(t, cfg.Validate())
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "piisec.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
transport:
  require_tls: false
permit_list:
  recipients:
    - records@hospital.example
policy:
  actions:
    insecure_transport: BLOCK
    contains_phi_not_permitted: BLOCK
    otherwise: ALLOW
model:
  id: piisec/pii-ner-en
  score_threshold: 0.75
logging:
  level: DEBUG
  format: json
`), 0o644))

	cfg, err := LoadFile(path, true)
	require.NoError(t, err)

	assert.False(t, cfg.Transport.RequireTLS)
	assert.Equal(t, []string{"records@hospital.example"}, cfg.PermitList.Recipients)
	assert.Equal(t, "BLOCK", cfg.Policy.Actions["contains_phi_not_permitted"])
	assert.Equal(t, 0.75, cfg.Model.ScoreThreshold)
	assert.Equal(t, "DEBUG", cfg.Logging.Level)
}

func TestLoadFile_MissingOptional(t *testing.T) {
	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)
	assert.Equal(t, Default().Model.ID, cfg.Model.ID)
}

func TestLoadFile_MissingRequired(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), true)
	require.Error(t, err)
}

func TestLoadFile_Malformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("transport: ["), 0o644))

	_, err := LoadFile(path, true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse config")
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvModelID, "piisec/pii-ner-en-v2")
	t.Setenv(EnvRequireTLS, "false")

	cfg, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), false)
	require.NoError(t, err)

	assert.Equal(t, "ERROR", cfg.Logging.Level)
	assert.Equal(t, "piisec/pii-ner-en-v2", cfg.Model.ID)
	assert.False(t, cfg.Transport.RequireTLS)
}

func TestValidate(t *testing.T) {
	cfg := Default()
	cfg.Model.ID = "  "
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Model.ScoreThreshold = 1.5
	require.Error(t, cfg.Validate())

	cfg = Default()
	cfg.Policy.Actions["otherwise"] = "SHRUG"
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "SHRUG")
}

func TestLogger(t *testing.T) {
	log := Logger(LoggingConfig{Level: "DEBUG", Format: "json"})
	require.NotNil(t, log)
	assert.True(t, log.Enabled(context.Background(), slog.LevelDebug))

	log = Logger(LoggingConfig{Level: "WARN"})
	assert.False(t, log.Enabled(context.Background(), slog.LevelInfo))

	log = Logger(LoggingConfig{})
	assert.True(t, log.Enabled(context.Background(), slog.LevelInfo), "unknown level defaults to INFO")
}

// Package config loads the firewall configuration.
//
// Layering, lowest to highest precedence: built-in defaults, the YAML file
// (path from PIISEC_CONFIG, default piisec.yaml, missing file is fine), then
// environment variables. A .env file is loaded best-effort before the
// environment is read.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables recognized by Load.
const (
	EnvConfigPath = "PIISEC_CONFIG"
	EnvLogLevel   = "PIISEC_LOG_LEVEL"
	EnvModelID    = "PIISEC_MODEL_ID"
	EnvRequireTLS = "PIISEC_REQUIRE_TLS"
)

// DefaultPath is the config file read when PIISEC_CONFIG is unset.
const DefaultPath = "piisec.yaml"

// Config is the full firewall configuration.
type Config struct {
	Transport  TransportConfig  `yaml:"transport"`
	PermitList PermitListConfig `yaml:"permit_list"`
	Policy     PolicyConfig     `yaml:"policy"`
	Logging    LoggingConfig    `yaml:"logging"`
	Model      ModelConfig      `yaml:"model"`
	Hub        HubConfig        `yaml:"hub"`
	Audit      AuditConfig      `yaml:"audit"`
}

// TransportConfig controls the transport security rule.
type TransportConfig struct {
	RequireTLS bool `yaml:"require_tls"`
}

// PermitListConfig lists recipients allowed to receive unredacted PII.
type PermitListConfig struct {
	Recipients []string `yaml:"recipients"`
}

// PolicyConfig maps policy reasons to actions.
type PolicyConfig struct {
	Actions map[string]string `yaml:"actions"`
}

// LoggingConfig controls the structured logger.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
}

// ModelConfig names the hosted model and tunes detection.
type ModelConfig struct {
	ID             string  `yaml:"id"`
	Revision       string  `yaml:"revision"`
	ScoreThreshold float64 `yaml:"score_threshold"`
	Stride         int     `yaml:"stride"`
}

// HubConfig tunes artifact retrieval.
type HubConfig struct {
	Endpoint string `yaml:"endpoint"`
	CacheDir string `yaml:"cache_dir"`
	Offline  bool   `yaml:"offline"`
}

// AuditConfig controls the audit trail.
type AuditConfig struct {
	// Path of the JSONL audit log. Empty logs through slog instead.
	Path string `yaml:"path"`
}

// Default returns the safe baseline configuration.
func Default() *Config {
	return &Config{
		Transport:  TransportConfig{RequireTLS: true},
		PermitList: PermitListConfig{Recipients: []string{}},
		Policy: PolicyConfig{
			Actions: map[string]string{
				"insecure_transport":         "BLOCK",
				"contains_phi_not_permitted": "REDACT",
				"otherwise":                  "ALLOW",
			},
		},
		Logging: LoggingConfig{Level: "INFO", Format: "text"},
		Model: ModelConfig{
			ID:             "piisec/pii-ner-en",
			ScoreThreshold: 0.5,
			Stride:         64,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment. A missing config file falls back to defaults silently; an
// unreadable or malformed file is an error.
func Load() (*Config, error) {
	// Best effort; a missing .env is the normal case.
	_ = godotenv.Load()

	path := strings.TrimSpace(os.Getenv(EnvConfigPath))
	explicit := path != ""
	if !explicit {
		path = DefaultPath
	}
	return LoadFile(path, explicit)
}

// LoadFile reads one YAML file over the defaults. When required is false, a
// missing file is not an error.
func LoadFile(path string, required bool) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec // G304: the config path comes from the operator.
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	case os.IsNotExist(err) && !required:
		// Defaults stand.
	default:
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnv overlays environment variables, the highest layer.
func (c *Config) applyEnv() {
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		c.Logging.Level = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvModelID)); v != "" {
		c.Model.ID = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvRequireTLS)); v != "" {
		c.Transport.RequireTLS = v == "1" || strings.EqualFold(v, "true")
	}
}

// Validate rejects configurations the firewall cannot start with.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Model.ID) == "" {
		return fmt.Errorf("config: model.id must not be empty")
	}
	if c.Model.ScoreThreshold < 0 || c.Model.ScoreThreshold > 1 {
		return fmt.Errorf("config: model.score_threshold %v outside [0, 1]", c.Model.ScoreThreshold)
	}
	for reason, action := range c.Policy.Actions {
		switch action {
		case "ALLOW", "REDACT", "BLOCK":
		default:
			return fmt.Errorf("config: policy.actions.%s: unknown action %q", reason, action)
		}
	}
	return nil
}

// Logger builds the structured logger described by the logging section.
func Logger(cfg LoggingConfig) *slog.Logger {
	var level slog.Level
	switch strings.ToUpper(strings.TrimSpace(cfg.Level)) {
	case "DEBUG":
		level = slog.LevelDebug
	case "WARN", "WARNING":
		level = slog.LevelWarn
	case "ERROR":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}
	return slog.New(handler)
}

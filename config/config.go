// Package config loads the firewall configuration.
//
// This package wraps the internal configuration loader. Layering, lowest to
// highest precedence: built-in defaults, the YAML file (path from
// PIISEC_CONFIG, default piisec.yaml), then environment variables.
//
// Example usage:
//
//	import "github.com/piisec/piisec-go/config"
//
//	cfg, err := config.Load()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	logger := config.Logger(cfg.Logging)
package config

import (
	"log/slog"

	"github.com/piisec/piisec-go/internal/config"
)

// Environment variables recognized by Load.
const (
	EnvConfigPath = config.EnvConfigPath
	EnvLogLevel   = config.EnvLogLevel
	EnvModelID    = config.EnvModelID
)

// Config is the full firewall configuration.
type Config = config.Config

// Section types of Config.
type (
	TransportConfig  = config.TransportConfig
	PermitListConfig = config.PermitListConfig
	PolicyConfig     = config.PolicyConfig
	LoggingConfig    = config.LoggingConfig
	ModelConfig      = config.ModelConfig
	HubConfig        = config.HubConfig
	AuditConfig      = config.AuditConfig
)

// Default returns the safe baseline configuration.
func Default() *Config {
	return config.Default()
}

// Load builds the configuration: defaults, then the YAML file, then the
// environment.
func Load() (*Config, error) {
	return config.Load()
}

// LoadFile reads one YAML file over the defaults. When required is false, a
// missing file is not an error.
func LoadFile(path string, required bool) (*Config, error) {
	return config.LoadFile(path, required)
}

// Logger builds the structured logger described by the logging section.
func Logger(cfg LoggingConfig) *slog.Logger {
	return config.Logger(cfg)
}

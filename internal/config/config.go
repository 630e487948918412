// Package config loads the per-project settings from .blueprint/config.yaml.
// Every key can be overridden with a BLUEPRINT_ environment variable, with dots
// replaced by underscores (BLUEPRINT_LOG_LEVEL, BLUEPRINT_DATABASE_PATH).
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// DirName is the per-project directory holding config and database.
	DirName = ".blueprint"
	// FileName is the config file inside DirName.
	FileName = "config.yaml"
	// DefaultDatabaseFile is used when database.path is unset.
	DefaultDatabaseFile = "blueprint.db"
	// DefaultExportDir is used when export.dir is unset.
	DefaultExportDir = "docs"

	envPrefix = "BLUEPRINT"
)

// Config represents the project configuration.
type Config struct {
	Database  DatabaseConfig  `mapstructure:"database" yaml:"database"`
	Gates     GatesConfig     `mapstructure:"gates" yaml:"gates"`
	Export    ExportConfig    `mapstructure:"export" yaml:"export"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
	Telemetry TelemetryConfig `mapstructure:"telemetry" yaml:"telemetry"`
	Actor     string          `mapstructure:"actor" yaml:"actor,omitempty"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"` // relative to the project root
}

type GatesConfig struct {
	// ResearchPendingSatisfies lets a PENDING research verdict count as
	// acceptable for features that require research.
	ResearchPendingSatisfies bool `mapstructure:"research_pending_satisfies" yaml:"research_pending_satisfies"`
}

type ExportConfig struct {
	Dir string `mapstructure:"dir" yaml:"dir,omitempty"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

type TelemetryConfig struct {
	Enabled bool `mapstructure:"enabled" yaml:"enabled"`
	Stdout  bool `mapstructure:"stdout" yaml:"stdout"`
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	return &Config{
		Gates:  GatesConfig{ResearchPendingSatisfies: true},
		Export: ExportConfig{Dir: DefaultExportDir},
		Log:    LogConfig{Level: "warn", Format: "text"},
	}
}

// Path returns the config file location for a project root.
func Path(dir string) string {
	return filepath.Join(dir, DirName, FileName)
}

// LoadConfig reads .blueprint/config.yaml from the specified directory.
// A missing file is not an error: defaults and environment overrides apply.
func LoadConfig(dir string) (*Config, error) {
	v := newViper()

	path := Path(dir)
	if _, err := os.Stat(path); err == nil {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat config: %w", err)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// SaveConfig writes config.yaml into the project's .blueprint directory.
func SaveConfig(dir string, cfg *Config) error {
	bpDir := filepath.Join(dir, DirName)
	if err := os.MkdirAll(bpDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s dir: %w", DirName, err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(Path(dir), data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}
	return nil
}

// Validate rejects values the logging layer cannot honour.
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log.level: %q is invalid (valid values: debug, info, warn, error)", c.Log.Level)
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("log.format: %q is invalid (valid values: text, json)", c.Log.Format)
	}
	return nil
}

// DatabasePath resolves database.path against the project root.
func (c *Config) DatabasePath(root string) string {
	p := c.Database.Path
	if p == "" {
		return filepath.Join(root, DirName, DefaultDatabaseFile)
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(root, p)
}

// ExportPath resolves export.dir against the project root.
func (c *Config) ExportPath(root string) string {
	if filepath.IsAbs(c.Export.Dir) {
		return c.Export.Dir
	}
	return filepath.Join(root, c.Export.Dir)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Every key needs a default so Unmarshal sees env-only overrides.
	d := Default()
	v.SetDefault("database.path", d.Database.Path)
	v.SetDefault("gates.research_pending_satisfies", d.Gates.ResearchPendingSatisfies)
	v.SetDefault("export.dir", d.Export.Dir)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)
	v.SetDefault("telemetry.enabled", d.Telemetry.Enabled)
	v.SetDefault("telemetry.stdout", d.Telemetry.Stdout)
	v.SetDefault("actor", d.Actor)
	return v
}

package internal

import (
	"fmt"
	"log/slog"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration.
type Config struct {
	App    ApplicationConfig `yaml:"app"`
	Vaults []string          `yaml:"vaults"`
	Trash  TrashConfig       `yaml:"trash"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.App.Validate(); err != nil {
		return err
	}
	// Vault roots may also arrive as command-line arguments, so an
	// empty list is legal here; the registry rejects an empty set at
	// startup.
	if err := validation.Validate(c.Vaults,
		validation.Each(validation.Required),
	); err != nil {
		return fmt.Errorf("vaults: %w", err)
	}
	return c.Trash.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
	HTTP     HTTPConfig `yaml:"http"`
}

// Validate validates the application configuration.
func (c *ApplicationConfig) Validate() error {
	return c.HTTP.Validate()
}

// HTTPConfig holds the events sidecar configuration. Port 0 disables
// the HTTP server; the MCP transport is stdio either way.
type HTTPConfig struct {
	Port int `yaml:"port"`
}

// Address returns the HTTP server address.
func (c *HTTPConfig) Address() string {
	return fmt.Sprintf(":%d", c.Port)
}

// Enabled reports whether the sidecar should be started.
func (c *HTTPConfig) Enabled() bool {
	return c.Port > 0
}

// Validate validates the HTTP configuration.
func (c *HTTPConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Port, validation.Min(0), validation.Max(65535)),
	)
}

// TrashConfig controls the soft-delete behaviour.
type TrashConfig struct {
	// Dir is the trash directory name inside each vault root.
	Dir string `yaml:"dir"`
	// BackupGrace is how long an edit backup of a deleted file survives
	// before deferred cleanup removes it.
	BackupGrace time.Duration `yaml:"backup_grace"`
}

// UnmarshalYAML accepts backup_grace as a time.ParseDuration string
// ("2s", "500ms"); the yaml decoder alone would only take integer
// nanoseconds. Omitted keys keep their current (default) values.
func (c *TrashConfig) UnmarshalYAML(value *yaml.Node) error {
	var raw struct {
		Dir         string `yaml:"dir"`
		BackupGrace string `yaml:"backup_grace"`
	}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	if raw.Dir != "" {
		c.Dir = raw.Dir
	}
	if raw.BackupGrace != "" {
		d, err := time.ParseDuration(raw.BackupGrace)
		if err != nil {
			return fmt.Errorf("trash: backup_grace: %w", err)
		}
		c.BackupGrace = d
	}
	return nil
}

// Validate validates the trash configuration.
func (c *TrashConfig) Validate() error {
	if err := validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
	); err != nil {
		return err
	}
	if c.BackupGrace < 0 {
		return fmt.Errorf("trash: backup_grace must not be negative")
	}
	return nil
}

// NewDefaultConfig returns a new Config with sensible default values.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
			HTTP: HTTPConfig{
				Port: 0,
			},
		},
		Trash: TrashConfig{
			Dir:         ".trash",
			BackupGrace: 2 * time.Second,
		},
	}
}

// Package config loads echonote settings from an optional YAML file and the
// environment. Environment variables win over file values.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Server holds HTTP server and upload settings.
type Server struct {
	Port            int           `envconfig:"PORT" yaml:"port"`
	UploadDir       string        `envconfig:"UPLOAD_DIR" yaml:"upload_dir"`
	MaxUploadBytes  int64         `envconfig:"MAX_UPLOAD_BYTES" yaml:"max_upload_bytes"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" yaml:"shutdown_timeout"`
}

// Addr returns the listen address for Port.
func (s Server) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

func (s Server) Validate() error {
	if s.Port <= 0 || s.Port > 65535 {
		return fmt.Errorf("PORT must be between 1 and 65535, got %d", s.Port)
	}
	if s.UploadDir == "" {
		return errors.New("UPLOAD_DIR is required")
	}
	if s.MaxUploadBytes <= 0 {
		return errors.New("MAX_UPLOAD_BYTES must be positive")
	}
	return nil
}

// Deepgram holds transcription provider settings.
type Deepgram struct {
	APIKey  string        `envconfig:"DEEPGRAM_API_KEY" yaml:"api_key"`
	BaseURL string        `envconfig:"DEEPGRAM_BASE_URL" yaml:"base_url"`
	Model   string        `envconfig:"DEEPGRAM_MODEL" yaml:"model"`
	Timeout time.Duration `envconfig:"TRANSCRIPTION_TIMEOUT" yaml:"timeout"`
}

func (d Deepgram) Validate() error {
	if d.APIKey == "" {
		return errors.New("DEEPGRAM_API_KEY is required")
	}
	if d.Timeout <= 0 {
		return errors.New("TRANSCRIPTION_TIMEOUT must be positive")
	}
	return nil
}

// Database holds the transcript store connection settings.
type Database struct {
	URL       string `envconfig:"DATABASE_URL" yaml:"url"`
	AuthToken string `envconfig:"DATABASE_AUTH_TOKEN" yaml:"auth_token"`
}

// IsPostgres reports whether URL points at a Postgres server.
func (d Database) IsPostgres() bool {
	return strings.HasPrefix(d.URL, "postgres://") || strings.HasPrefix(d.URL, "postgresql://")
}

func (d Database) Validate() error {
	if d.URL == "" {
		return errors.New("DATABASE_URL is required")
	}
	return nil
}

type Log struct {
	Level  string `envconfig:"LOG_LEVEL" yaml:"level"`
	Format string `envconfig:"LOG_FORMAT" yaml:"format"`
}

type OTel struct {
	Enabled  bool   `envconfig:"ECHONOTE_OTEL_ENABLED" yaml:"enabled"`
	Endpoint string `envconfig:"ECHONOTE_OTEL_ENDPOINT" yaml:"endpoint"`
	Insecure bool   `envconfig:"ECHONOTE_OTEL_INSECURE" yaml:"insecure"`
}

type Config struct {
	Server   Server   `yaml:"server"`
	Deepgram Deepgram `yaml:"deepgram"`
	Database Database `yaml:"database"`
	Log      Log      `yaml:"log"`
	OTel     OTel     `yaml:"otel"`
}

// Default returns the built-in settings.
func Default() *Config {
	return &Config{
		Server: Server{
			Port:            5000,
			UploadDir:       "uploads",
			MaxUploadBytes:  100 << 20,
			ShutdownTimeout: 10 * time.Second,
		},
		Deepgram: Deepgram{
			BaseURL: "https://api.deepgram.com",
			Model:   "nova-3",
			Timeout: 2 * time.Minute,
		},
		Log: Log{
			Level:  "info",
			Format: "text",
		},
		OTel: OTel{
			Endpoint: "localhost:4317",
		},
	}
}

// Load starts from Default, applies the YAML file at path when path is not
// empty, then applies environment variables. It does not validate.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// Each section is processed on its own so variable names stay unprefixed.
	sections := []any{&cfg.Server, &cfg.Deepgram, &cfg.Database, &cfg.Log, &cfg.OTel}
	for _, section := range sections {
		if err := envconfig.Process("", section); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

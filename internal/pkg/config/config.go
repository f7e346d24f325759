// Package config loads pipeline settings from the environment and
// destination definitions from a YAML document.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v10"
	"github.com/joho/godotenv"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/quillsec/privlog/internal/domain"
)

// Config holds the pipeline's process-level configuration.
type Config struct {
	LogLevel             string        `env:"LOG_LEVEL" envDefault:"info"`
	QueueSize            int           `env:"QUEUE_SIZE" envDefault:"1024"`
	DestinationQueueSize int           `env:"DESTINATION_QUEUE_SIZE" envDefault:"256"`
	WriteTimeout         time.Duration `env:"WRITE_TIMEOUT" envDefault:"5s"`
	RenderMode           string        `env:"RENDER_MODE" envDefault:"release"`
	ProjectMetadata      bool          `env:"PROJECT_METADATA" envDefault:"true"`
	ErrorBuffer          int           `env:"ERROR_BUFFER" envDefault:"64"`
	DestinationsPath     string        `env:"DESTINATIONS_PATH"`

	// Connection strings for the server-backed destinations. Optional:
	// a deployment that only writes to local files leaves them unset.
	RedisAddr   string `env:"REDIS_ADDR"`
	PostgresURL string `env:"POSTGRES_URL"`
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	// Attempt to load .env file for local development.
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	if _, err := cfg.ParsedLevel(); err != nil {
		return nil, err
	}
	if _, err := cfg.ParsedRenderMode(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// ParsedLevel resolves LogLevel to a domain level.
func (c *Config) ParsedLevel() (domain.Level, error) {
	return domain.ParseLevel(c.LogLevel)
}

// ParsedRenderMode resolves RenderMode to its domain value.
func (c *Config) ParsedRenderMode() (domain.RenderMode, error) {
	switch c.RenderMode {
	case "debug":
		return domain.RenderDebug, nil
	case "release":
		return domain.RenderRelease, nil
	default:
		return 0, fmt.Errorf("%w: unknown render mode %q", domain.ErrInvalidConfiguration, c.RenderMode)
	}
}

// destinationsDocument is the on-disk shape of a destination set.
type destinationsDocument struct {
	Destinations []domain.DestinationConfig `yaml:"destinations"`
}

// LoadDestinations parses a YAML destination document and validates
// every entry. All problems across all destinations are aggregated so a
// broken file is reported once, completely.
func LoadDestinations(path string) ([]domain.DestinationConfig, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %v", domain.ErrInvalidConfiguration, path, err)
	}

	var doc destinationsDocument
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %v", domain.ErrInvalidConfiguration, path, err)
	}

	var errs error
	seen := make(map[string]bool, len(doc.Destinations))
	for i, dest := range doc.Destinations {
		if err := dest.Validate(); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("destination %d (%s): %w", i, dest.Identifier, err))
			continue
		}
		if seen[dest.Identifier] {
			errs = multierr.Append(errs, fmt.Errorf("destination %d: %w: %s",
				i, domain.ErrDuplicateDestination, dest.Identifier))
		}
		seen[dest.Identifier] = true
	}
	if errs != nil {
		return nil, errs
	}

	return doc.Destinations, nil
}

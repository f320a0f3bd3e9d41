package cli

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config is read from FRONTDESK_* variables, after .env if one exists.
type Config struct {
	APIURL          string        `envconfig:"API_URL" default:"http://localhost:8080/api/v1"`
	Token           string        `envconfig:"TOKEN"`
	Timeout         time.Duration `envconfig:"TIMEOUT" default:"10s"`
	PatientCacheTTL time.Duration `envconfig:"PATIENT_CACHE_TTL" default:"5m"`
	Timezone        string        `envconfig:"TIMEZONE"`
	LogLevel        string        `envconfig:"LOG_LEVEL" default:"warn"`
}

func LoadConfig(envFiles ...string) (*Config, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load(envFiles...)

	var cfg Config
	if err := envconfig.Process("frontdesk", &cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return &cfg, nil
}

func (c *Config) Location() (*time.Location, error) {
	if c.Timezone == "" {
		return time.Local, nil
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	return loc, nil
}

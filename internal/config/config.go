package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	Addr           string        `env:"ADDR" envDefault:":8080"`
	DatabasePath   string        `env:"DB_PATH" envDefault:"docvault.db"`
	SessionDBPath  string        `env:"SESSION_DB_PATH" envDefault:"sessions.db"`
	UploadDir      string        `env:"UPLOAD_DIR" envDefault:"uploads"`
	MaxUploadBytes int64         `env:"MAX_UPLOAD_BYTES" envDefault:"1073741824"`
	SessionTTL     time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	Bootstrap      Bootstrap     `envPrefix:"BOOTSTRAP_"`
}

// Bootstrap contains the account seeded on first boot when the users
// table is empty. The defaults mirror the historical deployment; any
// real install should override them.
type Bootstrap struct {
	Username string `env:"USERNAME" envDefault:"director1"`
	Password string `env:"PASSWORD" envDefault:"password123"`
}

// NewConfig loads configuration from DOCVAULT_-prefixed environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: "DOCVAULT_"}); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}

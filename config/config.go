// Package config loads service configuration from the environment. A .env
// file in the working directory is read first when present.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	StorageURI      string        `env:"MONGODB_URI" env-default:"mongodb://localhost:27017/local" env-description:"storage connection string (mongodb://, mysql:// or memory://)"`
	Port            string        `env:"PORT" env-default:"3000" env-description:"HTTP listen port"`
	LogLevel        string        `env:"LOG_LEVEL" env-default:"info" env-description:"debug, info, warn or error"`
	LogFormat       string        `env:"LOG_FORMAT" env-default:"json" env-description:"json or text"`
	ConnectTimeout  time.Duration `env:"CONNECT_TIMEOUT" env-default:"30s" env-description:"deadline for the startup storage connection"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"10s" env-description:"graceful shutdown deadline"`
	AllowedOrigins  []string      `env:"CORS_ALLOWED_ORIGINS" env-default:"*" env-separator:"," env-description:"CORS allowed origins"`
}

// Load reads envFiles (".env" when none are given) and then the process
// environment. Missing env files are ignored; variables already set in the
// environment win over the file.
func Load(envFiles ...string) (Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", f, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values cleanenv cannot check by type alone.
func (c Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.StorageURI) == "" {
		problems = append(problems, "MONGODB_URI is empty")
	}
	if strings.TrimSpace(c.Port) == "" {
		problems = append(problems, "PORT is empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		problems = append(problems, fmt.Sprintf("LOG_FORMAT must be json or text, got %q", c.LogFormat))
	}
	if c.ConnectTimeout <= 0 {
		problems = append(problems, "CONNECT_TIMEOUT must be positive")
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Addr is the listen address for the HTTP server.
func (c Config) Addr() string {
	return ":" + c.Port
}

// Usage describes the environment variables, for CLI help output.
func Usage() string {
	var cfg Config
	text, err := cleanenv.GetDescription(&cfg, nil)
	if err != nil {
		return ""
	}
	return text
}

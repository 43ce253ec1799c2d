package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config holds the server configuration. Values come from an optional YAML
// file; environment variables override them.
type Config struct {
	Port     string `yaml:"port" env:"PORT" env-default:"8080"`
	Env      string `yaml:"env" env:"ENV" env-default:"local"`
	LogLevel string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`

	Database DatabaseConfig `yaml:"database"`
	Tasks    TasksConfig    `yaml:"tasks"`

	// EncryptionKey protects stored data source passwords. 32 raw bytes or
	// base64 of 32 bytes; empty stores passwords as given.
	EncryptionKey string `yaml:"-" env:"ENCRYPTION_KEY"`

	NATSURL        string        `yaml:"nats_url" env:"NATS_URL"`
	RequestTimeout time.Duration `yaml:"request_timeout" env:"REQUEST_TIMEOUT" env-default:"30s"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver" env:"DB_DRIVER" env-default:"sqlite"`
	Path   string `yaml:"path" env:"DB_PATH" env-default:"resource2code.db"`
	DSN    string `yaml:"dsn" env:"DATABASE_URL"`
}

type TasksConfig struct {
	CleanupInterval time.Duration `yaml:"cleanup_interval" env:"TASK_CLEANUP_INTERVAL" env-default:"120s"`
	LogBuffer       int           `yaml:"log_buffer" env:"TASK_LOG_BUFFER" env-default:"100"`
}

// Load reads path when it exists and falls back to the environment alone
// otherwise.
func Load(path string) (*Config, error) {
	cfg := &Config{}
	if path != "" {
		_, err := os.Stat(path)
		switch {
		case err == nil:
			if err := cleanenv.ReadConfig(path, cfg); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", path, err)
			}
			return cfg, cfg.validate()
		case !errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("stat %s: %w", path, err)
		}
	}
	if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	return cfg, cfg.validate()
}

func (c *Config) validate() error {
	if c.Port == "" {
		return errors.New("port is required")
	}
	if c.Tasks.LogBuffer <= 0 {
		return fmt.Errorf("tasks.log_buffer must be positive, got %d", c.Tasks.LogBuffer)
	}
	return nil
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func (c *Config) IsLocal() bool {
	return c.Env == "local"
}

package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the root application configuration. Values come from an optional
// yaml file (CONFIG_PATH) overridden by environment variables; a .env file is
// loaded first when present.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Detector DetectorConfig `yaml:"detector"`
	Client   ClientConfig   `yaml:"client"`
	Log      LogConfig      `yaml:"log"`
}

type ServerConfig struct {
	Host            string        `yaml:"host"             env:"SERVER_HOST"             env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"SERVER_PORT"             env-default:"8080"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"SERVER_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"SERVER_WRITE_TIMEOUT"    env-default:"30s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SERVER_SHUTDOWN_TIMEOUT" env-default:"10s"`
}

type DatabaseConfig struct {
	Path string `yaml:"path" env:"DATABASE_PATH" env-default:"./data/moodtrack.db"`
}

type AuthConfig struct {
	// JWTSecret may be left empty; serve generates an ephemeral one at boot.
	JWTSecret string `yaml:"jwt_secret" env:"JWT_SECRET"`
	// Required gates mutations (create, delete, detect) behind the writer role.
	Required bool   `yaml:"required" env:"AUTH_REQUIRED" env-default:"false"`
	BaseURL  string `yaml:"base_url" env:"BASE_URL"`
}

type DetectorConfig struct {
	// URL of the external emotion-analysis service. Empty disables detection.
	URL     string        `yaml:"url"     env:"DETECTOR_URL"`
	Timeout time.Duration `yaml:"timeout" env:"DETECTOR_TIMEOUT" env-default:"30s"`
}

type ClientConfig struct {
	// APIBaseURL is where the pages and the CLI reach the REST API.
	// Empty means the local server.
	APIBaseURL string `yaml:"api_base_url" env:"API_BASE_URL"`
}

type LogConfig struct {
	Level  string `yaml:"level"  env:"LOG_LEVEL"  env-default:"info"`
	Format string `yaml:"format" env:"LOG_FORMAT" env-default:"text"`
}

// Load reads configuration from CONFIG_PATH (when set) and the environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if path := os.Getenv("CONFIG_PATH"); path != "" {
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		return &cfg, nil
	}

	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("reading config from env: %w", err)
	}
	return &cfg, nil
}

// Addr is the listen address for the HTTP server.
func (s ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", s.Host, s.Port)
}

// APIBase resolves the effective API base URL for the pages and the CLI.
func (c *Config) APIBase() string {
	if c.Client.APIBaseURL != "" {
		return c.Client.APIBaseURL
	}
	return fmt.Sprintf("http://localhost:%d", c.Server.Port)
}

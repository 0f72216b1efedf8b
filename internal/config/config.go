package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Twitch   TwitchConfig   `yaml:"twitch"`
	Resolver ResolverConfig `yaml:"resolver"`
	Log      LogConfig      `yaml:"log"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host         string        `yaml:"host" envconfig:"SERVER_HOST"`
	Port         int           `yaml:"port" envconfig:"SERVER_PORT"`
	APIKey       string        `yaml:"api_key" envconfig:"API_KEY"`
	ReadTimeout  time.Duration `yaml:"read_timeout" envconfig:"SERVER_READ_TIMEOUT"`
	WriteTimeout time.Duration `yaml:"write_timeout" envconfig:"SERVER_WRITE_TIMEOUT"`
	RateLimit    int           `yaml:"rate_limit" envconfig:"SERVER_RATE_LIMIT"` // requests per minute per IP, 0 disables
}

// TwitchConfig holds Helix API credentials and transport settings.
type TwitchConfig struct {
	ClientID      string        `yaml:"client_id" envconfig:"TWITCH_CLIENT_ID"`
	AccessToken   string        `yaml:"access_token" envconfig:"TWITCH_ACCESS_TOKEN"`
	BaseURL       string        `yaml:"base_url" envconfig:"TWITCH_BASE_URL"`
	Timeout       time.Duration `yaml:"timeout" envconfig:"TWITCH_TIMEOUT"`
	ProfileImages bool          `yaml:"profile_images" envconfig:"TWITCH_PROFILE_IMAGES"`
}

// ResolverConfig holds media URL resolution settings.
type ResolverConfig struct {
	Enabled   bool          `yaml:"enabled" envconfig:"RESOLVER_ENABLED"`
	Quality   string        `yaml:"quality" envconfig:"RESOLVER_QUALITY"`
	Timeout   time.Duration `yaml:"timeout" envconfig:"RESOLVER_TIMEOUT"`
	Workers   int           `yaml:"workers" envconfig:"RESOLVER_WORKERS"`
	RateLimit float64       `yaml:"rate_limit" envconfig:"RESOLVER_RATE_LIMIT"` // resolutions per second, 0 disables
	Burst     int           `yaml:"burst" envconfig:"RESOLVER_BURST"`
	GQLURL    string        `yaml:"gql_url" envconfig:"RESOLVER_GQL_URL"`
	UsherURL  string        `yaml:"usher_url" envconfig:"RESOLVER_USHER_URL"`
	ClientID  string        `yaml:"client_id" envconfig:"RESOLVER_CLIENT_ID"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`
	Format string `yaml:"format" envconfig:"LOG_FORMAT"`
}

// Default returns a configuration populated with the built-in defaults.
// Credentials are left empty.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         "0.0.0.0",
			Port:         8000,
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 2 * time.Minute,
			RateLimit:    120,
		},
		Twitch: TwitchConfig{
			BaseURL: "https://api.twitch.tv/helix",
			Timeout: 30 * time.Second,
		},
		Resolver: ResolverConfig{
			Enabled:   true,
			Quality:   "best",
			Timeout:   10 * time.Second,
			Workers:   4,
			RateLimit: 5,
			Burst:     5,
			GQLURL:    "https://gql.twitch.tv/gql",
			UsherURL:  "https://usher.ttvnw.net",
			ClientID:  "kimne78kx3ncx6brgo4mv6wki5h1ko",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from file and environment variables.
// Environment variables override file values, which override defaults.
func Load(configPath string) (*Config, error) {
	cfg := Default()

	// Load from YAML file if provided
	if configPath != "" {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	}

	// Override with environment variables
	if err := envconfig.Process("", cfg); err != nil {
		return nil, fmt.Errorf("process environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return cfg, nil
}

// Validate checks that required configuration values are set.
func (c *Config) Validate() error {
	if c.Twitch.ClientID == "" {
		return fmt.Errorf("TWITCH_CLIENT_ID is required")
	}
	if c.Twitch.AccessToken == "" {
		return fmt.Errorf("TWITCH_ACCESS_TOKEN is required")
	}
	if c.Twitch.BaseURL == "" {
		return fmt.Errorf("TWITCH_BASE_URL must not be empty")
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("SERVER_RATE_LIMIT must not be negative")
	}
	if c.Resolver.Enabled {
		if c.Resolver.Workers < 1 {
			return fmt.Errorf("RESOLVER_WORKERS must be at least 1 when the resolver is enabled")
		}
		if c.Resolver.Quality == "" {
			return fmt.Errorf("RESOLVER_QUALITY must not be empty")
		}
		if c.Resolver.RateLimit < 0 {
			return fmt.Errorf("RESOLVER_RATE_LIMIT must not be negative")
		}
	}
	switch strings.ToLower(c.Log.Format) {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	return nil
}

// Address returns the server address in host:port format.
func (c *ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

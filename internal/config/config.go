package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"fittrack/pkg/config"
)

// APIConfig points at the remote fitness REST API.
type APIConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

// UserConfig the single user whose workouts are shown.
type UserConfig struct {
	Name string `yaml:"name"`
}

// UIConfig Revision selects the client generation: 1 workouts only,
// 2 adds recommendations, 3 adds the AI score.
type UIConfig struct {
	Revision int `yaml:"revision"`
}

// DedupConfig how long submission tokens are remembered.
type DedupConfig struct {
	TTL time.Duration `yaml:"ttl"`
}

type Config struct {
	Server         config.ServerConfig         `yaml:"server"`
	API            APIConfig                   `yaml:"api"`
	User           UserConfig                  `yaml:"user"`
	UI             UIConfig                    `yaml:"ui"`
	Redis          config.RedisConfig          `yaml:"redis"`
	Dedup          DedupConfig                 `yaml:"dedup"`
	Log            config.LogConfig            `yaml:"log"`
	Otel           config.OtelConfig           `yaml:"otel"`
	CircuitBreaker config.CircuitBreakerConfig `yaml:"circuit_breaker"`
}

// Default values used when a key is absent from every config file.
func Default() Config {
	return Config{
		Server: config.ServerConfig{Port: ":8080", ShutdownTimeout: 10 * time.Second},
		API:    APIConfig{BaseURL: "http://127.0.0.1:5000", Timeout: 10 * time.Second},
		User:   UserConfig{Name: "Satyam"},
		UI:     UIConfig{Revision: 3},
		Dedup:  DedupConfig{TTL: time.Hour},
		Log:    config.LogConfig{Level: "info"},
		Otel:   config.OtelConfig{ServiceName: "fittrack-web", ServiceVersion: "dev"},
		CircuitBreaker: config.CircuitBreakerConfig{
			FailureThreshold:    5,
			SuccessThreshold:    2,
			Timeout:             30 * time.Second,
			HalfOpenMaxRequests: 1,
		},
	}
}

// Load reads CONFIG_DIR (default "config") for CONFIG_ENV (default "local")
// and applies environment overrides last.
func Load() (*Config, error) {
	env := config.GetConfigEnv()
	configDir := config.GetEnv("CONFIG_DIR", "config")

	cfg := Default()
	if err := config.Decode(env, configDir, &cfg); err != nil {
		return nil, err
	}

	config.OverrideServerFromEnv(&cfg.Server)
	config.OverrideRedisFromEnv(&cfg.Redis)
	config.OverrideLogFromEnv(&cfg.Log)
	config.OverrideOtelFromEnv(&cfg.Otel)
	overrideFromEnv(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func overrideFromEnv(cfg *Config) {
	if url := os.Getenv("FITNESS_API_BASE_URL"); url != "" {
		cfg.API.BaseURL = url
	}
	if name := os.Getenv("FITNESS_USER_NAME"); name != "" {
		cfg.User.Name = name
	}
	if rev := os.Getenv("CLIENT_REVISION"); rev != "" {
		if n, err := strconv.Atoi(rev); err == nil {
			cfg.UI.Revision = n
		}
	}
}

func (c *Config) Validate() error {
	if !strings.HasPrefix(c.API.BaseURL, "http://") && !strings.HasPrefix(c.API.BaseURL, "https://") {
		return fmt.Errorf("api.base_url must be an http(s) URL, got %q", c.API.BaseURL)
	}
	if strings.TrimSpace(c.User.Name) == "" {
		return fmt.Errorf("user.name is required")
	}
	if c.UI.Revision < 1 || c.UI.Revision > 3 {
		return fmt.Errorf("ui.revision must be 1, 2 or 3, got %d", c.UI.Revision)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("server.port is required")
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is process-wide read-only configuration, loaded once at startup and
// injected into components rather than referenced as ambient globals.
type Config struct {
	Environment string `yaml:"environment"`

	HTTP struct {
		Addr string `yaml:"addr"`
	} `yaml:"http"`

	Auth struct {
		// JWTSecret may be overridden by AI_GATEWAY_JWT_SECRET.
		JWTSecret string `yaml:"jwtSecret"`
	} `yaml:"auth"`

	Redis struct {
		Addr string `yaml:"addr"`
		DB   int    `yaml:"db"`
	} `yaml:"redis"`

	Database struct {
		Path string `yaml:"path"`
	} `yaml:"database"`

	Qdrant struct {
		Addr       string `yaml:"addr"`
		Collection string `yaml:"collection"`
	} `yaml:"qdrant"`

	Ollama struct {
		Host    string        `yaml:"host"`
		Timeout time.Duration `yaml:"timeout"`
	} `yaml:"ollama"`

	Artifacts struct {
		BaseURL string `yaml:"baseURL"`
	} `yaml:"artifacts"`

	Queue struct {
		Key       string `yaml:"key"`
		BatchSize int    `yaml:"batchSize"`
	} `yaml:"queue"`

	Quota struct {
		HourlyTokenCeiling int64 `yaml:"hourlyTokenCeiling"`
	} `yaml:"quota"`

	RateLimit struct {
		PerMinute         int64 `yaml:"perMinute"`
		GeneratePerMinute int64 `yaml:"generatePerMinute"`
	} `yaml:"rateLimit"`

	CORS struct {
		AllowedOrigins []string `yaml:"allowedOrigins"`
	} `yaml:"cors"`

	Generate struct {
		InlineThresholdBytes int `yaml:"inlineThresholdBytes"`
	} `yaml:"generate"`

	// Models overrides the default alias-to-model table.
	Models map[string]string `yaml:"models"`
}

// Default returns a configuration suitable for local development.
func Default() *Config {
	cfg := &Config{}
	cfg.Environment = "development"
	cfg.HTTP.Addr = ":8080"
	cfg.Redis.Addr = "localhost:6379"
	cfg.Database.Path = "gateway.db"
	cfg.Qdrant.Addr = "localhost:6334"
	cfg.Qdrant.Collection = "knowledge"
	cfg.Ollama.Host = "http://localhost:11434"
	cfg.Ollama.Timeout = 5 * time.Minute
	cfg.Artifacts.BaseURL = "file:///var/lib/ai-gateway"
	cfg.Queue.Key = "jobs:content_generation"
	cfg.Queue.BatchSize = 10
	cfg.Quota.HourlyTokenCeiling = 100000
	cfg.RateLimit.PerMinute = 60
	cfg.RateLimit.GeneratePerMinute = 10
	cfg.Generate.InlineThresholdBytes = 64 * 1024
	return cfg
}

// Load reads the YAML config at path over the defaults. An empty path yields
// the defaults. Secrets are taken from the environment when present.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config %s: %w", path, err)
		}
	}
	if secret := os.Getenv("AI_GATEWAY_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("jwt secret is required (set auth.jwtSecret or AI_GATEWAY_JWT_SECRET)")
	}
	return cfg, nil
}

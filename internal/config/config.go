// Package config loads service configuration from defaults, an optional
// YAML file and environment variables, in increasing precedence.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Config holds all service configuration.
type Config struct {
	Port           string        `mapstructure:"port" yaml:"port"`
	DatabaseDriver string        `mapstructure:"database_driver" yaml:"database_driver"`
	DatabaseURL    string        `mapstructure:"database_url" yaml:"database_url"`
	SessionSecret  string        `mapstructure:"session_secret" yaml:"session_secret"`
	SessionTTL     time.Duration `mapstructure:"session_ttl" yaml:"session_ttl"`
	CookieSecure   bool          `mapstructure:"cookie_secure" yaml:"cookie_secure"`
	CORSOrigin     string        `mapstructure:"cors_origin" yaml:"cors_origin"`
	GridIntensity  float64       `mapstructure:"grid_intensity" yaml:"grid_intensity"`
	// StrictTokens makes the server ignore client-supplied token counts.
	StrictTokens bool   `mapstructure:"strict_tokens" yaml:"strict_tokens"`
	LogLevel     string `mapstructure:"log_level" yaml:"log_level"`

	RedisAddr        string        `mapstructure:"redis_addr" yaml:"redis_addr"`
	RedisPassword    string        `mapstructure:"redis_password" yaml:"redis_password"`
	LoginMaxAttempts int           `mapstructure:"login_max_attempts" yaml:"login_max_attempts"`
	LoginWindow      time.Duration `mapstructure:"login_window" yaml:"login_window"`

	MinioEndpoint  string `mapstructure:"minio_endpoint" yaml:"minio_endpoint"`
	MinioAccessKey string `mapstructure:"minio_access_key" yaml:"minio_access_key"`
	MinioSecretKey string `mapstructure:"minio_secret_key" yaml:"minio_secret_key"`
	MinioBucket    string `mapstructure:"minio_bucket" yaml:"minio_bucket"`
	MinioUseSSL    bool   `mapstructure:"minio_use_ssl" yaml:"minio_use_ssl"`
}

// DefaultSessionSecret is only suitable for local development.
const DefaultSessionSecret = "dev-session-secret-change-me"

var defaults = map[string]any{
	"port":               "8080",
	"database_driver":    "sqlite",
	"database_url":       "greenprompt.db",
	"session_secret":     DefaultSessionSecret,
	"session_ttl":        7 * 24 * time.Hour,
	"cookie_secure":      false,
	"cors_origin":        "http://localhost:5173",
	"grid_intensity":     0.45,
	"strict_tokens":      false,
	"log_level":          "info",
	"redis_addr":         "",
	"redis_password":     "",
	"login_max_attempts": 5,
	"login_window":       15 * time.Minute,
	"minio_endpoint":     "",
	"minio_access_key":   "",
	"minio_secret_key":   "",
	"minio_bucket":       "greenprompt-stats",
	"minio_use_ssl":      false,
}

// Load builds the configuration. Precedence: env > config file > defaults.
// Environment variables use the upper-cased key, e.g. GRID_INTENSITY.
func Load(cfgFile string) (*Config, error) {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config %s: %w", cfgFile, err)
		}
	}

	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

// Validate rejects values the service cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.Port == "":
		return fmt.Errorf("invalid config: port is empty")
	case c.SessionSecret == "":
		return fmt.Errorf("invalid config: session_secret is empty")
	case c.SessionTTL <= 0:
		return fmt.Errorf("invalid config: session_ttl must be positive")
	case c.GridIntensity < 0:
		return fmt.Errorf("invalid config: grid_intensity must not be negative")
	}
	return nil
}

// Redacted returns a copy with secrets masked.
func (c *Config) Redacted() Config {
	out := *c
	for _, s := range []*string{&out.SessionSecret, &out.RedisPassword, &out.MinioSecretKey} {
		if *s != "" {
			*s = "****"
		}
	}
	return out
}

// YAML renders the redacted configuration.
func (c *Config) YAML() ([]byte, error) {
	r := c.Redacted()
	b, err := yaml.Marshal(&r)
	if err != nil {
		return nil, fmt.Errorf("marshal yaml: %w", err)
	}
	return b, nil
}

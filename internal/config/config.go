// Package config loads runtime configuration from an optional YAML file,
// with environment variables taking precedence over file values.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is everything the process needs to come up. Durations are carried
// as seconds in the YAML file and environment.
type Config struct {
	Port string `yaml:"port"`

	AuthURL    string `yaml:"auth_url"`
	ClientURL  string `yaml:"client_url"`
	AccountURL string `yaml:"account_url"`

	GoogleMapsAPIKey string `yaml:"google_maps_api_key"`

	// DeepLinkTimeoutSeconds bounds how long the app waits for a deep-link
	// payload after the platform hands over a URL.
	DeepLinkTimeoutSeconds int `yaml:"deep_link_timeout_seconds"`

	// RefreshIntervalSeconds paces the background order/place refresh
	// scheduler.
	RefreshIntervalSeconds int `yaml:"refresh_interval_seconds"`
}

// DeepLinkTimeout returns the deep-link wait as a duration.
func (c Config) DeepLinkTimeout() time.Duration {
	return time.Duration(c.DeepLinkTimeoutSeconds) * time.Second
}

// RefreshInterval returns the refresh pace as a duration.
func (c Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Port:                   "8080",
		AuthURL:                "https://live-api.htprod.hypertrack.com",
		ClientURL:              "https://live-app-backend.htprod.hypertrack.com",
		AccountURL:             "https://live-app-backend.htprod.hypertrack.com",
		DeepLinkTimeoutSeconds: 5,
		RefreshIntervalSeconds: 60,
	}
}

// Load reads the YAML file at path (skipped when path is empty), then
// applies environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}
	cfg.Port = envOr("PORT", cfg.Port)
	cfg.AuthURL = envOr("AUTH_URL", cfg.AuthURL)
	cfg.ClientURL = envOr("CLIENT_URL", cfg.ClientURL)
	cfg.AccountURL = envOr("ACCOUNT_URL", cfg.AccountURL)
	cfg.GoogleMapsAPIKey = envOr("GOOGLE_MAPS_API_KEY", cfg.GoogleMapsAPIKey)
	cfg.DeepLinkTimeoutSeconds = envIntOr("DEEP_LINK_TIMEOUT_SECONDS", cfg.DeepLinkTimeoutSeconds)
	cfg.RefreshIntervalSeconds = envIntOr("REFRESH_INTERVAL_SECONDS", cfg.RefreshIntervalSeconds)
	return cfg, nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return def
}

package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Environment variables that override the config file
const (
	EnvClientID     = "FITDASH_GOOGLE_CLIENT_ID"
	EnvClientSecret = "FITDASH_GOOGLE_CLIENT_SECRET"
)

// Config represents the application configuration
type Config struct {
	Google  GoogleConfig  `json:"google"`
	Auth    AuthConfig    `json:"auth"`
	Display DisplayConfig `json:"display"`
	Log     LogConfig     `json:"log"`
	Metrics MetricsConfig `json:"metrics"`
}

// GoogleConfig holds Google OAuth client credentials
type GoogleConfig struct {
	ClientID     string `json:"client_id"`
	ClientSecret string `json:"client_secret"`
}

// AuthConfig holds settings for the local OAuth callback
type AuthConfig struct {
	CallbackPort int `json:"callback_port"`
}

// DisplayConfig holds dashboard preferences
type DisplayConfig struct {
	Period string `json:"period"` // "7d", "30d" or "90d"
	Metric string `json:"metric"` // performance, strength, endurance, recovery
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string `json:"level"`
	File  string `json:"file"`
	JSON  bool   `json:"json"`
}

// MetricsConfig holds the optional prometheus text-file export path
type MetricsConfig struct {
	Textfile string `json:"textfile"`
}

// ErrNoConfig is returned when the config file doesn't exist
var ErrNoConfig = errors.New("config file not found")

var (
	validPeriods = map[string]bool{"7d": true, "30d": true, "90d": true}
	validMetrics = map[string]bool{"performance": true, "strength": true, "endurance": true, "recovery": true}
)

// DefaultConfig returns the default configuration
func DefaultConfig() Config {
	return Config{
		Auth: AuthConfig{
			CallbackPort: 8089,
		},
		Display: DisplayConfig{
			Period: "30d",
			Metric: "performance",
		},
		Log: LogConfig{
			Level: "info",
		},
	}
}

// Load reads the configuration from ~/.fitdash/config.json
func Load() (*Config, error) {
	path, err := getConfigPath()
	if err != nil {
		return nil, err
	}
	return LoadFrom(path)
}

// LoadFrom reads the configuration from path and applies defaults and
// environment overrides.
func LoadFrom(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, ErrNoConfig
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	defaults := DefaultConfig()
	if c.Auth.CallbackPort == 0 {
		c.Auth.CallbackPort = defaults.Auth.CallbackPort
	}
	if c.Display.Period == "" {
		c.Display.Period = defaults.Display.Period
	}
	if c.Display.Metric == "" {
		c.Display.Metric = defaults.Display.Metric
	}
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	if c.Log.File == "" {
		if dir, err := GetConfigDir(); err == nil {
			c.Log.File = filepath.Join(dir, "fitdash.log")
		}
	}
}

// ApplyEnv loads a .env file from the working directory if there is one and
// lets FITDASH_GOOGLE_* variables override the file credentials.
func (c *Config) ApplyEnv() error {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("loading .env file: %w", err)
	}
	if v := os.Getenv(EnvClientID); v != "" {
		c.Google.ClientID = v
	}
	if v := os.Getenv(EnvClientSecret); v != "" {
		c.Google.ClientSecret = v
	}
	return nil
}

// Save writes the configuration to ~/.fitdash/config.json
func Save(cfg *Config) error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}
	return SaveTo(path, cfg)
}

// SaveTo writes the configuration to path
func SaveTo(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}

	return nil
}

// CreateExample creates an example config file if none exists
func CreateExample() error {
	path, err := getConfigPath()
	if err != nil {
		return err
	}

	if _, err := os.Stat(path); err == nil {
		return nil // Config exists, don't overwrite
	}

	example := DefaultConfig()
	example.Google = GoogleConfig{
		ClientID:     "YOUR_CLIENT_ID.apps.googleusercontent.com",
		ClientSecret: "YOUR_CLIENT_SECRET",
	}

	return Save(&example)
}

// HasClientID reports whether a usable Google client ID is configured.
// Placeholders from the example config count as missing.
func (c *Config) HasClientID() bool {
	return c.Google.ClientID != "" && c.Google.ClientID != "YOUR_CLIENT_ID.apps.googleusercontent.com"
}

// Validate checks the display and auth settings. A missing client ID is
// not a validation error: the dashboard still starts and reports it.
func (c *Config) Validate() error {
	if c.Display.Period != "" && !validPeriods[c.Display.Period] {
		return fmt.Errorf("display.period must be \"7d\", \"30d\" or \"90d\", got %q", c.Display.Period)
	}
	if c.Display.Metric != "" && !validMetrics[c.Display.Metric] {
		return fmt.Errorf("display.metric must be one of performance, strength, endurance, recovery, got %q", c.Display.Metric)
	}
	if c.Auth.CallbackPort < 0 || c.Auth.CallbackPort > 65535 {
		return fmt.Errorf("auth.callback_port out of range: %d", c.Auth.CallbackPort)
	}
	return nil
}

// getConfigPath returns the path to the config file
func getConfigPath() (string, error) {
	dir, err := GetConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// GetConfigDir returns the path to the config directory
func GetConfigDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".fitdash"), nil
}

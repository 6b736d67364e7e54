// Package config loads XeWe OS host settings from xewe.yaml, .env files,
// XEWE_* environment variables and bound command-line flags.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes every environment variable the host reads.
const EnvPrefix = "XEWE"

// Setting keys, also the YAML paths in xewe.yaml.
const (
	KeyStorePath         = "store.path"
	KeyDeviceName        = "device.name"
	KeyPromptTimeout     = "prompt.timeout"
	KeyWebAddr           = "web.addr"
	KeyReconnectInterval = "wifi.reconnect_interval"
	KeySimNetworks       = "sim.networks"
	KeySimIP             = "sim.ip"
	KeySimMAC            = "sim.mac"
	KeyLogLevel          = "log.level"
	KeyLogFile           = "log.file"
)

// Config is the resolved host configuration.
type Config struct {
	StorePath         string
	DeviceName        string
	PromptTimeout     time.Duration
	WebAddr           string
	ReconnectInterval time.Duration
	// SimNetworks maps SSID to password for the simulated radio.
	SimNetworks map[string]string
	SimIP       string
	SimMAC      string
	LogLevel    string
	LogFile     string
}

// Load resolves the configuration into v. Files are looked up in
// searchDirs, or in the working directory and UserConfigDir when none are
// given. Precedence, highest first: flags bound to v, XEWE_* environment
// (including values from .env files), xewe.yaml, defaults.
func Load(v *viper.Viper, searchDirs ...string) (*Config, error) {
	if len(searchDirs) == 0 {
		searchDirs = append(searchDirs, ".")
		if dir, err := UserConfigDir(); err == nil {
			searchDirs = append(searchDirs, dir)
		}
	}

	if err := loadDotEnv(searchDirs); err != nil {
		return nil, err
	}

	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("xewe")
	v.SetConfigType("yaml")
	for _, dir := range searchDirs {
		v.AddConfigPath(dir)
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	cfg := &Config{
		StorePath:         v.GetString(KeyStorePath),
		DeviceName:        v.GetString(KeyDeviceName),
		PromptTimeout:     v.GetDuration(KeyPromptTimeout),
		WebAddr:           v.GetString(KeyWebAddr),
		ReconnectInterval: v.GetDuration(KeyReconnectInterval),
		SimNetworks:       v.GetStringMapString(KeySimNetworks),
		SimIP:             v.GetString(KeySimIP),
		SimMAC:            v.GetString(KeySimMAC),
		LogLevel:          v.GetString(KeyLogLevel),
		LogFile:           v.GetString(KeyLogFile),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the host cannot run with.
func (c *Config) Validate() error {
	if c.StorePath == "" {
		return fmt.Errorf("%s must not be empty", KeyStorePath)
	}
	if c.PromptTimeout <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyPromptTimeout, c.PromptTimeout)
	}
	if c.ReconnectInterval <= 0 {
		return fmt.Errorf("%s must be positive, got %s", KeyReconnectInterval, c.ReconnectInterval)
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	storePath := "xewe.db"
	if dir, err := UserConfigDir(); err == nil {
		storePath = filepath.Join(dir, "xewe.db")
	}
	v.SetDefault(KeyStorePath, storePath)
	v.SetDefault(KeyDeviceName, "xewe")
	v.SetDefault(KeyPromptTimeout, 60*time.Second)
	v.SetDefault(KeyWebAddr, ":8080")
	v.SetDefault(KeyReconnectInterval, 30*time.Second)
	v.SetDefault(KeySimNetworks, map[string]string{"xewe-lab": "xewe-os", "guest": ""})
	v.SetDefault(KeySimIP, "192.168.4.2")
	v.SetDefault(KeySimMAC, "24:6F:28:00:00:01")
	v.SetDefault(KeyLogLevel, "info")
	v.SetDefault(KeyLogFile, "")
}

// loadDotEnv exports .env files into the process environment. Variables
// already set win, and a missing file is not an error.
func loadDotEnv(dirs []string) error {
	for _, dir := range dirs {
		path := filepath.Join(dir, ".env")
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return fmt.Errorf("failed to load %s: %w", path, err)
		}
	}
	return nil
}

// UserConfigDir returns $XDG_CONFIG_HOME/xewe, falling back to ~/.config/xewe.
func UserConfigDir() (string, error) {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get user home directory: %w", err)
		}
		configHome = filepath.Join(homeDir, ".config")
	}
	return filepath.Join(configHome, "xewe"), nil
}

package config

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	toml "github.com/pelletier/go-toml/v2"
)

// Config holds every tunable of the watcher.
type Config struct {
	LogDir string

	NetworkPattern string `validate:"required"`
	BackendPattern string `validate:"required"`
	Extension      string `validate:"required,startswith=."`

	StatisticsMarker string `validate:"required"`
	ResponseMarker   string `validate:"required"`

	RescanInterval      time.Duration `validate:"min=1s"`
	NetworkPollInterval time.Duration `validate:"min=1ms"`
	BackendPollInterval time.Duration `validate:"min=1ms"`
	ConfirmAttempts     int           `validate:"min=1,max=100"`
	ConfirmDelay        time.Duration `validate:"min=1ms"`
	ShutdownGrace       time.Duration `validate:"min=0"`

	LogLevel  string `validate:"oneof=trace debug info warn error"`
	LogFormat string `validate:"oneof=console json"`
	LogFile   string

	Theme string
}

const (
	defaultConfigPath = "~/.config/eftwatch/config.toml"

	defaultNetworkPattern   = "network-connection"
	defaultBackendPattern   = "backend"
	defaultExtension        = ".log"
	defaultStatisticsMarker = "Statistics"
	defaultResponseMarker   = "<--- Response HTTPS"

	defaultRescanInterval      = time.Minute
	defaultNetworkPollInterval = 100 * time.Millisecond
	defaultBackendPollInterval = 50 * time.Millisecond
	defaultConfirmAttempts     = 5
	defaultConfirmDelay        = 50 * time.Millisecond
	defaultShutdownGrace       = 2 * time.Second

	defaultLogLevel  = "info"
	defaultLogFormat = "console"
)

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		NetworkPattern:      defaultNetworkPattern,
		BackendPattern:      defaultBackendPattern,
		Extension:           defaultExtension,
		StatisticsMarker:    defaultStatisticsMarker,
		ResponseMarker:      defaultResponseMarker,
		RescanInterval:      defaultRescanInterval,
		NetworkPollInterval: defaultNetworkPollInterval,
		BackendPollInterval: defaultBackendPollInterval,
		ConfirmAttempts:     defaultConfirmAttempts,
		ConfirmDelay:        defaultConfirmDelay,
		ShutdownGrace:       defaultShutdownGrace,
		LogLevel:            defaultLogLevel,
		LogFormat:           defaultLogFormat,
	}
}

type rawConfig struct {
	LogDir              string `toml:"log_dir"`
	NetworkPattern      string `toml:"network_pattern"`
	BackendPattern      string `toml:"backend_pattern"`
	Extension           string `toml:"extension"`
	StatisticsMarker    string `toml:"statistics_marker"`
	ResponseMarker      string `toml:"response_marker"`
	RescanInterval      string `toml:"rescan_interval"`
	NetworkPollInterval string `toml:"network_poll_interval"`
	BackendPollInterval string `toml:"backend_poll_interval"`
	ConfirmAttempts     int    `toml:"confirm_attempts"`
	ConfirmDelay        string `toml:"confirm_delay"`
	ShutdownGrace       string `toml:"shutdown_grace"`
	LogLevel            string `toml:"log_level"`
	LogFormat           string `toml:"log_format"`
	LogFile             string `toml:"log_file"`
	Theme               string `toml:"theme"`
}

// Load reads the TOML config at path, or the default location when path is
// empty. A missing file yields the defaults.
func Load(path string) (Config, error) {
	resolved, err := resolvePath(path)
	if err != nil {
		return Config{}, err
	}

	cfg := Default()

	file, err := os.Open(resolved)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("open config: %w", err)
	}
	defer file.Close()

	bytes, err := io.ReadAll(file)
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}

	var raw rawConfig
	if err := toml.Unmarshal(bytes, &raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.apply(raw); err != nil {
		return Config{}, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) apply(raw rawConfig) error {
	setString(&c.LogDir, raw.LogDir)
	if c.LogDir != "" {
		c.LogDir = mustExpand(c.LogDir)
	}
	setString(&c.NetworkPattern, raw.NetworkPattern)
	setString(&c.BackendPattern, raw.BackendPattern)
	setString(&c.Extension, raw.Extension)
	setString(&c.StatisticsMarker, raw.StatisticsMarker)
	setString(&c.ResponseMarker, raw.ResponseMarker)
	setString(&c.LogLevel, strings.ToLower(raw.LogLevel))
	setString(&c.LogFormat, strings.ToLower(raw.LogFormat))
	setString(&c.LogFile, raw.LogFile)
	if c.LogFile != "" {
		c.LogFile = mustExpand(c.LogFile)
	}
	setString(&c.Theme, raw.Theme)
	if raw.ConfirmAttempts != 0 {
		c.ConfirmAttempts = raw.ConfirmAttempts
	}

	durations := []struct {
		key string
		raw string
		dst *time.Duration
	}{
		{"rescan_interval", raw.RescanInterval, &c.RescanInterval},
		{"network_poll_interval", raw.NetworkPollInterval, &c.NetworkPollInterval},
		{"backend_poll_interval", raw.BackendPollInterval, &c.BackendPollInterval},
		{"confirm_delay", raw.ConfirmDelay, &c.ConfirmDelay},
		{"shutdown_grace", raw.ShutdownGrace, &c.ShutdownGrace},
	}
	for _, d := range durations {
		value := strings.TrimSpace(d.raw)
		if value == "" {
			continue
		}
		parsed, err := time.ParseDuration(value)
		if err != nil {
			return fmt.Errorf("%s: %w", d.key, err)
		}
		*d.dst = parsed
	}
	return nil
}

// Validate checks ranges and required values.
func (c Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			fe := verrs[0]
			return fmt.Errorf("invalid config: %s failed %q", fe.Field(), fe.Tag())
		}
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func setString(dst *string, value string) {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		*dst = trimmed
	}
}

func resolvePath(path string) (string, error) {
	if strings.TrimSpace(path) == "" {
		return expandPath(defaultConfigPath)
	}
	return expandPath(path)
}

func mustExpand(path string) string {
	expanded, err := expandPath(path)
	if err != nil {
		return path
	}
	return expanded
}

func expandPath(path string) (string, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return "", fmt.Errorf("path is empty")
	}
	if strings.HasPrefix(trimmed, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home dir: %w", err)
		}
		trimmed = filepath.Join(home, strings.TrimPrefix(trimmed, "~"))
	}
	return filepath.Abs(trimmed)
}

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds tunables shared by the update trigger and the detached worker.
type Config struct {
	// ExecutablePath is the absolute path of the application binary to relaunch.
	ExecutablePath string `yaml:"executable_path"`
	// StagingPath is the directory holding the staged new version, relative to
	// the install directory unless absolute.
	StagingPath string `yaml:"staging_path"`
	// InstallPath is the live application directory being updated in place.
	InstallPath string `yaml:"install_path"`
	// LogFile is where the detached worker writes its pipeline log.
	LogFile string `yaml:"log_file"`
	// LogLevel is the minimum log level (debug, info, warn, error).
	LogLevel string `yaml:"log_level"`
	// WaitAttempts bounds polling for the application process to exit.
	WaitAttempts int `yaml:"wait_attempts"`
	// WaitInterval is the pause between exit polls.
	WaitInterval time.Duration `yaml:"wait_interval"`
	// ApplyAttempts bounds retries of the file replacement step.
	ApplyAttempts int `yaml:"apply_attempts"`
	// ApplyRetryDelay is the pause between replacement retries.
	ApplyRetryDelay time.Duration `yaml:"apply_retry_delay"`
}

const (
	// DefaultConfigFilename is the default filename for updater settings.
	DefaultConfigFilename = "desktop-updater-settings.yaml"

	// DefaultStagingPath is where the caller stages the new version's files.
	DefaultStagingPath = "update"

	// DefaultInstallPath is the live application directory.
	DefaultInstallPath = "."

	// DefaultLogFile is the detached worker's log destination.
	DefaultLogFile = "desktop-updater.log"

	// DefaultLogLevel is the minimum log level when none is configured.
	DefaultLogLevel = "info"

	// DefaultWaitAttempts bounds the exit-wait poll loop.
	DefaultWaitAttempts = 5

	// DefaultWaitInterval is the pause between exit polls.
	DefaultWaitInterval = time.Second

	// DefaultApplyAttempts bounds the file replacement retries.
	DefaultApplyAttempts = 3

	// DefaultApplyRetryDelay absorbs file locks releasing shortly after process exit.
	DefaultApplyRetryDelay = 2 * time.Second

	// DefaultFilePermissions is the default file permission for config files.
	DefaultFilePermissions = 0o600
)

var (
	// errConfigIsNotSet is returned when a nil configuration is provided.
	errConfigIsNotSet = errors.New("configuration is not set")
	// errStagingEqualsInstall is returned when staging and install point at the same directory.
	errStagingEqualsInstall = errors.New("staging path must differ from install path")
)

// Default returns a configuration populated with default values.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)

	return cfg
}

// Load reads configuration from the provided path and validates essential fields.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultConfigFilename
	}

	contents, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read settings: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(contents, &cfg); err != nil {
		return nil, fmt.Errorf("unmarshal settings: %w", err)
	}

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Save writes the configuration to the provided path.
func Save(path string, cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	if path == "" {
		path = DefaultConfigFilename
	}

	if err := Validate(cfg); err != nil {
		return err
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal settings: %w", err)
	}

	// Restrict permissions.
	if err := os.WriteFile(filepath.Clean(path), data, DefaultFilePermissions); err != nil {
		return fmt.Errorf("write settings: %w", err)
	}

	return nil
}

// Validate checks the provided settings and fills in defaults for unset fields.
func Validate(cfg *Config) error {
	if cfg == nil {
		return errConfigIsNotSet
	}

	applyDefaults(cfg)

	if filepath.Clean(cfg.StagingPath) == filepath.Clean(cfg.InstallPath) {
		return errStagingEqualsInstall
	}

	return nil
}

// applyDefaults replaces zero values with defaults.
func applyDefaults(cfg *Config) {
	if cfg.StagingPath == "" {
		cfg.StagingPath = DefaultStagingPath
	}

	if cfg.InstallPath == "" {
		cfg.InstallPath = DefaultInstallPath
	}

	if cfg.LogFile == "" {
		cfg.LogFile = DefaultLogFile
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	if cfg.WaitAttempts <= 0 {
		cfg.WaitAttempts = DefaultWaitAttempts
	}

	if cfg.WaitInterval <= 0 {
		cfg.WaitInterval = DefaultWaitInterval
	}

	if cfg.ApplyAttempts <= 0 {
		cfg.ApplyAttempts = DefaultApplyAttempts
	}

	if cfg.ApplyRetryDelay <= 0 {
		cfg.ApplyRetryDelay = DefaultApplyRetryDelay
	}
}

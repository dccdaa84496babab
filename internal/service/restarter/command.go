package restarter

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/oshokin/desktop-updater/internal/config"
	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/logger"
	"github.com/oshokin/desktop-updater/internal/process"
	"github.com/oshokin/desktop-updater/internal/service/updater"
)

var (
	errUpdateInProgress   = errors.New("update already in progress")
	errStagingMissing     = errors.New("staging directory does not exist")
	errExecutableRequired = errors.New("executable path must be provided")
)

// Options are inputs accepted by the restart trigger.
// Non-empty fields override the settings file.
type Options struct {
	// ConfigPath is the optional path to the settings YAML file.
	ConfigPath string
	// StagingPath overrides the staged update location.
	StagingPath string
	// InstallPath overrides the live application directory.
	InstallPath string
	// ExecutablePath overrides the application binary to relaunch.
	ExecutablePath string
}

// startDetached is swapped out in tests to avoid spawning real processes.
//
//nolint:gochecknoglobals // Test seam for the spawn call.
var startDetached = process.StartDetached

// Run performs the trigger half of the update handoff: it validates the
// staged update, takes the session marker, clones this executable into the
// temp directory, and launches the clone as a detached worker. The caller is
// expected to exit immediately afterwards; the two processes share nothing
// but the filesystem.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "update-trigger")

	cfg, err := resolveConfig(opts)
	if err != nil {
		return err
	}

	if cfg.ExecutablePath == "" {
		return errExecutableRequired
	}

	// The worker runs from the temp directory, so every path it receives
	// must be absolute.
	if err = absolutize(cfg); err != nil {
		return err
	}

	if _, err = os.Stat(cfg.StagingPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", errStagingMissing, cfg.StagingPath)
		}

		return fmt.Errorf("inspect staging directory: %w", err)
	}

	probe := process.NewProbe()
	if updater.IsUpdateInProgress(ctx, probe, cfg.InstallPath) {
		return errUpdateInProgress
	}

	if err = updater.WriteMarker(cfg.InstallPath); err != nil {
		return fmt.Errorf("write session marker: %w", err)
	}

	workerPath, err := cloneWorker()
	if err != nil {
		_ = updater.RemoveMarker(cfg.InstallPath)
		return fmt.Errorf("clone worker executable: %w", err)
	}

	if err = startDetached(workerPath, workerArgs(cfg, workerPath)...); err != nil {
		_ = updater.RemoveMarker(cfg.InstallPath)
		_ = os.Remove(workerPath)

		return fmt.Errorf("launch update worker: %w", err)
	}

	logger.InfoKV(ctx, "Update worker launched, handing off", "worker", workerPath)

	return nil
}

// resolveConfig loads settings and applies command-line overrides. A missing
// settings file at the default location is not an error; defaults are used.
func resolveConfig(opts *Options) (*config.Config, error) {
	if opts == nil {
		opts = &Options{}
	}

	var (
		cfg *config.Config
		err error
	)

	switch {
	case opts.ConfigPath != "":
		cfg, err = config.Load(opts.ConfigPath)
		if err != nil {
			return nil, err
		}
	default:
		cfg, err = config.Load(config.DefaultConfigFilename)
		if err != nil {
			if !errors.Is(err, os.ErrNotExist) {
				return nil, err
			}

			cfg = config.Default()
		}
	}

	if opts.StagingPath != "" {
		cfg.StagingPath = opts.StagingPath
	}

	if opts.InstallPath != "" {
		cfg.InstallPath = opts.InstallPath
	}

	if opts.ExecutablePath != "" {
		cfg.ExecutablePath = opts.ExecutablePath
	}

	return cfg, nil
}

// absolutize rewrites the configured paths as absolute. Relative staging and
// log paths are anchored at the install directory.
func absolutize(cfg *config.Config) error {
	installPath, err := filepath.Abs(cfg.InstallPath)
	if err != nil {
		return err
	}

	cfg.InstallPath = installPath

	if !filepath.IsAbs(cfg.StagingPath) {
		cfg.StagingPath = filepath.Join(installPath, cfg.StagingPath)
	}

	if !filepath.IsAbs(cfg.LogFile) {
		cfg.LogFile = filepath.Join(installPath, cfg.LogFile)
	}

	cfg.ExecutablePath, err = filepath.Abs(cfg.ExecutablePath)

	return err
}

// cloneWorker copies the orchestrator's own executable into the temp directory
// under a per-session name. The clone is what performs the replacement, so the
// installed copy of the orchestrator itself can be updated like any other file.
func cloneWorker() (string, error) {
	self, err := os.Executable()
	if err != nil {
		return "", err
	}

	name := fmt.Sprintf("%s-%d%s", updater.WorkerNamePrefix, time.Now().UnixNano(), filepath.Ext(self))
	workerPath := filepath.Join(os.TempDir(), name)

	if err = fscopy.CopyFile(self, workerPath, updater.WorkerFileMode); err != nil {
		return "", err
	}

	return workerPath, nil
}

// workerArgs serializes the session inputs for the detached worker.
func workerArgs(cfg *config.Config, workerPath string) []string {
	return []string{
		"apply",
		"--staging", cfg.StagingPath,
		"--install", cfg.InstallPath,
		"--executable", cfg.ExecutablePath,
		"--worker-path", workerPath,
		"--log-file", cfg.LogFile,
		"--log-level", cfg.LogLevel,
		"--wait-attempts", strconv.Itoa(cfg.WaitAttempts),
		"--wait-interval", cfg.WaitInterval.String(),
		"--apply-attempts", strconv.Itoa(cfg.ApplyAttempts),
		"--apply-delay", cfg.ApplyRetryDelay.String(),
	}
}

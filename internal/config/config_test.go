package config

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

// TestLoadSaveRoundTrip persists settings and reads them back unchanged.
func TestLoadSaveRoundTrip(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), DefaultConfigFilename)
	cfg := &Config{
		ExecutablePath:  "/opt/app/app-binary",
		StagingPath:     "update",
		InstallPath:     "/opt/app",
		WaitAttempts:    7,
		ApplyRetryDelay: 3 * time.Second,
	}

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, cfg.ExecutablePath, loaded.ExecutablePath)
	require.Equal(t, 7, loaded.WaitAttempts)
	require.Equal(t, 3*time.Second, loaded.ApplyRetryDelay)

	// Defaults must have been filled in for unset fields.
	require.Equal(t, DefaultApplyAttempts, loaded.ApplyAttempts)
	require.Equal(t, DefaultWaitInterval, loaded.WaitInterval)
	require.Equal(t, DefaultLogFile, loaded.LogFile)
}

// TestValidateDefaults verifies zero values are replaced with defaults.
func TestValidateDefaults(t *testing.T) {
	t.Parallel()

	cfg := &Config{}
	require.NoError(t, Validate(cfg))
	require.Equal(t, DefaultStagingPath, cfg.StagingPath)
	require.Equal(t, DefaultInstallPath, cfg.InstallPath)
	require.Equal(t, DefaultWaitAttempts, cfg.WaitAttempts)
	require.Equal(t, DefaultApplyRetryDelay, cfg.ApplyRetryDelay)
}

// TestValidateRejectsStagingEqualsInstall guards against consuming the install directory as staging.
func TestValidateRejectsStagingEqualsInstall(t *testing.T) {
	t.Parallel()

	cfg := &Config{StagingPath: "/opt/app", InstallPath: "/opt/app"}
	require.Error(t, Validate(cfg))
}

// TestLoadMissingFile ensures a missing settings file surfaces as an error.
func TestLoadMissingFile(t *testing.T) {
	t.Parallel()

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

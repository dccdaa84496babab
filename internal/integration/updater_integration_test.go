package integration

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-updater/internal/config"
	"github.com/oshokin/desktop-updater/internal/service/updater"
)

// TestUpdater_Run_AppliesStagedUpdate drives the whole worker pipeline against
// a real on-disk installation: staged files land in the install directory, the
// session marker and transient directories are gone, and the old version is
// recoverable nowhere but the log.
//
//nolint:funlen // Integration test requires comprehensive setup and verification.
func TestUpdater_Run_AppliesStagedUpdate(t *testing.T) {
	// Lay out a fake installation with a staged new version.
	install := t.TempDir()
	staging := filepath.Join(install, config.DefaultStagingPath)
	executable := filepath.Join(install, "app.exe")

	require.NoError(t, os.MkdirAll(filepath.Join(staging, "resources"), 0o755))
	require.NoError(t, os.WriteFile(executable, []byte("old binary"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(install, "settings.dat"), []byte("keep me"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "app.exe"), []byte("new binary"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(staging, "resources", "strings.txt"), []byte("hello"), 0o644))

	// The trigger persists its settings and takes the marker before handing off.
	cfgPath := filepath.Join(install, config.DefaultConfigFilename)
	cfg := &config.Config{
		ExecutablePath:  executable,
		StagingPath:     staging,
		InstallPath:     install,
		WaitAttempts:    1,
		WaitInterval:    time.Millisecond,
		ApplyRetryDelay: time.Millisecond,
	}

	require.NoError(t, config.Save(cfgPath, cfg))
	require.NoError(t, updater.WriteMarker(install))

	loaded, err := config.Load(cfgPath)
	require.NoError(t, err)

	// Run the worker pipeline. Relaunching overwrites nothing, so the final
	// error is nil even though the fake binary is not a runnable program.
	updaterOptions := &updater.Options{
		StagingPath:     loaded.StagingPath,
		InstallPath:     loaded.InstallPath,
		ExecutablePath:  loaded.ExecutablePath,
		WaitAttempts:    loaded.WaitAttempts,
		WaitInterval:    loaded.WaitInterval,
		ApplyAttempts:   loaded.ApplyAttempts,
		ApplyRetryDelay: loaded.ApplyRetryDelay,
	}

	err = updater.Run(context.Background(), updaterOptions)
	require.NoError(t, err)

	// Staged files replaced the installed ones.
	body, err := os.ReadFile(executable)
	require.NoError(t, err)
	require.Equal(t, "new binary", string(body))

	body, err = os.ReadFile(filepath.Join(install, "resources", "strings.txt"))
	require.NoError(t, err)
	require.Equal(t, "hello", string(body))

	// Files absent from the staged version survive untouched.
	body, err = os.ReadFile(filepath.Join(install, "settings.dat"))
	require.NoError(t, err)
	require.Equal(t, "keep me", string(body))

	// Transient session state is gone.
	_, err = os.Stat(staging)
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(filepath.Join(install, updater.BackupDirName))
	require.True(t, os.IsNotExist(err))
	_, err = os.Stat(updater.MarkerPath(install))
	require.True(t, os.IsNotExist(err))
}

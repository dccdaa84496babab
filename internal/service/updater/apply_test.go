package updater

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/mitchellh/go-ps"
	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/process"
)

// emptyProcessTable is a probe backend where no process is ever running.
func emptyProcessTable() ([]ps.Process, error) {
	return nil, nil
}

// newTestRunner builds a runner against temp directories with a probe that
// never sees the application running.
func newTestRunner(t *testing.T, staging, install string) *runner {
	t.Helper()

	opts := &Options{
		StagingPath:     staging,
		InstallPath:     install,
		ExecutablePath:  filepath.Join(install, "app.exe"),
		WaitAttempts:    1,
		WaitInterval:    time.Millisecond,
		ApplyAttempts:   3,
		ApplyRetryDelay: time.Millisecond,
	}

	r, err := newRunner(opts)
	require.NoError(t, err)

	r.probe = process.NewProbeWith(emptyProcessTable, nil)

	return r
}

// writeFile is a test helper creating a file with parent directories.
func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
}

// readFile is a test helper returning file contents as a string.
func readFile(t *testing.T, path string) string {
	t.Helper()

	contents, err := os.ReadFile(path)
	require.NoError(t, err)

	return string(contents)
}

// TestApplyIdempotence runs the replacer twice and expects identical results.
func TestApplyIdempotence(t *testing.T) {
	t.Parallel()

	staging := t.TempDir()
	install := t.TempDir()

	writeFile(t, filepath.Join(staging, "app.exe"), "new-binary")
	writeFile(t, filepath.Join(staging, "assets", "strings.txt"), "hello")
	writeFile(t, filepath.Join(install, "app.exe"), "old")

	r := newTestRunner(t, staging, install)
	require.NoError(t, r.applyWithRetry(context.Background()))
	require.NoError(t, r.applyWithRetry(context.Background()))

	require.Equal(t, "new-binary", readFile(t, filepath.Join(install, "app.exe")))
	require.Equal(t, "hello", readFile(t, filepath.Join(install, "assets", "strings.txt")))

	// No ".old" leftovers may survive a successful apply.
	_, err := os.Stat(filepath.Join(install, "app.exe.old"))
	require.True(t, os.IsNotExist(err))
}

// TestApplyRetryCeiling counts attempts with an always-failing copy primitive.
func TestApplyRetryCeiling(t *testing.T) {
	t.Parallel()

	staging := t.TempDir()
	install := t.TempDir()
	writeFile(t, filepath.Join(staging, "app.exe"), "new")

	boom := errors.New("simulated lock")
	attempts := 0

	r := newTestRunner(t, staging, install)
	r.copier = func(_, _ string, _ os.FileMode) error {
		attempts++
		return boom
	}

	err := r.applyWithRetry(context.Background())
	require.ErrorIs(t, err, boom)
	require.Equal(t, r.opts.ApplyAttempts, attempts)
}

// TestApplyFailsFastOnMissingStaging must not silently no-op and must not retry.
func TestApplyFailsFastOnMissingStaging(t *testing.T) {
	t.Parallel()

	install := t.TempDir()
	r := newTestRunner(t, filepath.Join(install, "absent"), install)

	calls := 0
	r.copier = func(_, _ string, _ os.FileMode) error {
		calls++
		return nil
	}

	err := r.applyWithRetry(context.Background())
	require.ErrorIs(t, err, errStagingMissing)
	require.Zero(t, calls)
}

// TestApplyFileCopyReplacesInPlace exercises the go-update backed primitive directly.
func TestApplyFileCopyReplacesInPlace(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	src := filepath.Join(dir, "staged.bin")
	dst := filepath.Join(dir, "installed.bin")

	writeFile(t, src, "v2")
	writeFile(t, dst, "v1")

	require.NoError(t, applyFileCopy(src, dst, fscopy.DefaultDirMode))
	require.Equal(t, "v2", readFile(t, dst))

	// The target may also be absent; a placeholder is created first.
	missing := filepath.Join(dir, "created.bin")
	require.NoError(t, applyFileCopy(src, missing, 0o644))
	require.Equal(t, "v2", readFile(t, missing))
}

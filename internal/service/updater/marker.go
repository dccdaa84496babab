package updater

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/oshokin/desktop-updater/internal/logger"
	"github.com/oshokin/desktop-updater/internal/process"
)

const (
	// MarkerFilename marks that an update session is in flight against the
	// install directory, so a second trigger fails fast instead of racing.
	MarkerFilename = "desktop-updater-marker.bin"

	// WorkerNamePrefix names the per-session clone of the orchestrator
	// executable spawned into the temp directory.
	WorkerNamePrefix = "desktop-updater-worker"

	// markerLifetime is the period after which a stale session marker is reclaimed.
	markerLifetime = 2 * time.Minute

	// WorkerFileMode is the permission of the per-session worker clone.
	WorkerFileMode os.FileMode = 0o755
)

// MarkerPath returns the session marker location for an install directory.
func MarkerPath(installPath string) string {
	return filepath.Join(installPath, MarkerFilename)
}

// WriteMarker creates the session marker.
func WriteMarker(installPath string) error {
	marker, err := os.Create(MarkerPath(installPath))
	if err != nil {
		return err
	}

	return marker.Close()
}

// RemoveMarker deletes the session marker, treating a missing file as success.
func RemoveMarker(installPath string) error {
	if err := os.Remove(MarkerPath(installPath)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}

	return nil
}

// IsUpdateInProgress checks presence of the session marker and attempts
// recovery if it looks stale: a worker that died mid-session leaves the marker
// behind, so after the lifetime the stale worker is killed and the marker removed.
func IsUpdateInProgress(ctx context.Context, probe *process.Probe, installPath string) bool {
	logger.Info(ctx, "Checking for the presence of a session marker")

	fileInfo, err := os.Stat(MarkerPath(installPath))
	if err == nil {
		if time.Since(fileInfo.ModTime()) <= markerLifetime {
			return true
		}

		logger.Info(ctx, "The session marker is too old, attempting cleanup")

		if err = probe.TerminateByPrefix(WorkerNamePrefix); err != nil {
			return true
		}

		if err = RemoveMarker(installPath); err != nil {
			return true
		}

		return false
	}

	if errors.Is(err, os.ErrNotExist) {
		logger.Info(ctx, "Session marker not found, continuing")
		return false
	}

	logger.Infof(ctx, "Unable to read session marker: %v", err)

	return false
}

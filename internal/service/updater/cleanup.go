package updater

import (
	"context"
	"os"
	"strings"

	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/logger"
	"github.com/oshokin/desktop-updater/internal/process"
)

// cleanUp removes the staging directory, the backup snapshot, and the session
// marker. Everything here is best-effort: a harmless leftover file must never
// block the user's relaunch.
func (r *runner) cleanUp(ctx context.Context) {
	s := r.session

	var reasons []string

	if err := fscopy.RemoveTree(s.StagingPath); err != nil {
		logger.WarnKV(ctx, "Unable to remove staging directory", "path", s.StagingPath, "error", err)
		reasons = append(reasons, err.Error())
	}

	if err := fscopy.RemoveTree(s.BackupPath); err != nil {
		logger.WarnKV(ctx, "Unable to remove backup directory", "path", s.BackupPath, "error", err)
		reasons = append(reasons, err.Error())
	}

	if err := RemoveMarker(s.InstallPath); err != nil {
		logger.WarnKV(ctx, "Unable to remove session marker", "error", err)
		reasons = append(reasons, err.Error())
	}

	if len(reasons) > 0 {
		s.Report.Degraded(stepCleanup, strings.Join(reasons, "; "))
		return
	}

	s.Report.Ok(stepCleanup)
}

// relaunch starts the application as a new detached process. The worker must
// not wait on it: its own working directory may have just been invalidated by
// the cleanup it performed.
func (r *runner) relaunch(ctx context.Context) {
	s := r.session

	logger.InfoKV(ctx, "Relaunching application", "executable", s.ExecutablePath)

	if err := process.StartDetached(s.ExecutablePath); err != nil {
		logger.WarnKV(ctx, "Relaunch failed", "executable", s.ExecutablePath, "error", err)
		s.Report.Failed(stepRelaunch, err.Error())

		return
	}

	s.Report.Ok(stepRelaunch)
}

// removeWorkerClone deletes the temp-directory clone this worker runs from.
// On Windows a running executable cannot delete itself; the leftover sits in
// the temp directory and is reclaimed by the OS or the next session.
func (r *runner) removeWorkerClone(ctx context.Context) {
	if r.opts.WorkerPath == "" {
		return
	}

	if err := os.Remove(r.opts.WorkerPath); err != nil {
		logger.DebugKV(ctx, "Worker clone not removed", "path", r.opts.WorkerPath, "error", err)
	}
}

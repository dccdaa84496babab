package updater

import (
	"context"
	"errors"
	"os"

	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/logger"
)

// rollBack restores the installation from the backup snapshot. It runs exactly
// once, only after the apply step exhausted its retry budget, and is itself
// best-effort: an incomplete restore is logged, never retried, and the
// pipeline still proceeds to cleanup and relaunch.
func (r *runner) rollBack(ctx context.Context) {
	s := r.session

	if _, err := os.Stat(s.BackupPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			logger.Warn(ctx, "No backup snapshot to restore from")
			s.Report.Degraded(stepRollback, "no backup snapshot")

			return
		}

		logger.WarnKV(ctx, "Unable to inspect backup snapshot", "error", err)
		s.Report.Degraded(stepRollback, err.Error())

		return
	}

	logger.InfoKV(ctx, "Restoring installation from backup", "path", s.BackupPath)

	if err := fscopy.CopyTree(s.BackupPath, s.InstallPath, nil); err != nil {
		logger.WarnKV(ctx, "Restore is incomplete, installation may be inconsistent", "error", err)
		s.Report.Degraded(stepRollback, err.Error())

		return
	}

	logger.Info(ctx, "Previous version restored")
	s.Report.Ok(stepRollback)
}

package updater

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/logger"
)

// backUp snapshots the installation into the backup directory. The step is
// best-effort: a failed entry is recorded and skipped, and the pipeline always
// proceeds to apply, because blocking the update on an imperfect snapshot is
// worse than a thinner recovery point.
func (r *runner) backUp(ctx context.Context) {
	s := r.session

	// A leftover snapshot from a previous failed session must not leak into this one.
	if err := fscopy.RemoveTree(s.BackupPath); err != nil {
		logger.WarnKV(ctx, "Unable to delete stale backup", "path", s.BackupPath, "error", err)
	}

	failed, err := snapshot(ctx, s.InstallPath, s.BackupPath, r.backupExclusions())
	if err != nil {
		logger.WarnKV(ctx, "Backup snapshot failed", "error", err)
		s.Report.Degraded(stepBackup, err.Error())

		return
	}

	if len(failed) > 0 {
		reason := fmt.Sprintf("entries not backed up: %s", strings.Join(failed, ", "))
		logger.Warn(ctx, reason)
		s.Report.Degraded(stepBackup, reason)

		return
	}

	logger.InfoKV(ctx, "Backup snapshot created", "path", s.BackupPath)
	s.Report.Ok(stepBackup)
}

// backupExclusions lists install-directory entries that must never end up in
// the snapshot: the snapshot itself, the staged update (copying an update into
// its own backup), and the session's transient artifacts.
func (r *runner) backupExclusions() map[string]struct{} {
	exclude := map[string]struct{}{
		BackupDirName:  {},
		MarkerFilename: {},
	}

	// The staging directory only needs excluding when it lives inside the
	// install directory. The snapshot works per top-level entry, so the entry
	// containing the staged update is skipped wholesale, however deep the
	// staging path is nested.
	rel, err := filepath.Rel(filepath.Clean(r.session.InstallPath), filepath.Clean(r.session.StagingPath))
	if err == nil && rel != "." && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		top, _, _ := strings.Cut(rel, string(filepath.Separator))
		exclude[top] = struct{}{}
	}

	if r.opts.LogFile != "" {
		exclude[filepath.Base(r.opts.LogFile)] = struct{}{}
	}

	return exclude
}

// snapshot recursively copies installPath into backupPath, excluding the named
// top-level entries. Partial failure does not abort the snapshot; the names of
// entries that could not be copied are returned.
func snapshot(ctx context.Context, installPath, backupPath string, exclude map[string]struct{}) ([]string, error) {
	entries, err := os.ReadDir(installPath)
	if err != nil {
		return nil, fmt.Errorf("read install directory: %w", err)
	}

	if err = os.MkdirAll(backupPath, fscopy.DefaultDirMode); err != nil {
		return nil, fmt.Errorf("create backup directory: %w", err)
	}

	var failed []string

	for _, entry := range entries {
		name := entry.Name()
		if _, skip := exclude[name]; skip {
			continue
		}

		source := filepath.Join(installPath, name)
		target := filepath.Join(backupPath, name)

		if entry.IsDir() {
			err = fscopy.CopyTree(source, target, nil)
		} else {
			var info os.FileInfo

			if info, err = entry.Info(); err == nil {
				err = fscopy.CopyFile(source, target, info.Mode().Perm())
			}
		}

		if err != nil {
			logger.WarnKV(ctx, "Unable to back up entry", "entry", name, "error", err)
			failed = append(failed, name)
		}
	}

	return failed, nil
}

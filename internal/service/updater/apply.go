package updater

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	goupdate "github.com/doitdistributed/go-update"

	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/logger"
)

// errStagingMissing distinguishes a misconfigured trigger from a transient
// copy failure: an absent staging directory must not silently no-op.
var errStagingMissing = errors.New("staging directory does not exist")

// applyWithRetry copies the staged files over the installation, overwriting.
// This is the only critical step of the pipeline: one failed file fails the
// whole attempt, and the retry budget absorbs file locks releasing shortly
// after process exit. Each retry re-runs the full copy; copy-with-overwrite is
// idempotent, so no partial-application tracking is needed between attempts.
func (r *runner) applyWithRetry(ctx context.Context) error {
	s := r.session

	if _, err := os.Stat(s.StagingPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.Report.Failed(stepApply, errStagingMissing.Error())
			return fmt.Errorf("%w: %s", errStagingMissing, s.StagingPath)
		}

		s.Report.Failed(stepApply, err.Error())

		return fmt.Errorf("inspect staging directory: %w", err)
	}

	var lastErr error

	for attempt := 1; attempt <= r.opts.ApplyAttempts; attempt++ {
		logger.InfoKV(ctx, "Applying staged files",
			"attempt", attempt, "max_attempts", r.opts.ApplyAttempts)

		lastErr = fscopy.CopyTree(s.StagingPath, s.InstallPath, r.copier)
		if lastErr == nil {
			s.Report.Ok(stepApply)
			return nil
		}

		logger.WarnKV(ctx, "Apply attempt failed", "attempt", attempt, "error", lastErr)

		if attempt < r.opts.ApplyAttempts {
			waitRetry(ctx, r.opts.ApplyRetryDelay)
		}
	}

	s.Report.Failed(stepApply, lastErr.Error())

	return fmt.Errorf("apply update after %d attempts: %w", r.opts.ApplyAttempts, lastErr)
}

// applyFileCopy replaces one installed file with its staged counterpart.
// Replacement goes through go-update, which writes the payload next to the
// target and swaps it in with renames, so an in-use binary on Windows can
// still be replaced. The ".old" leftover is removed on success.
func applyFileCopy(src, dst string, mode os.FileMode) error {
	data, err := os.ReadFile(src)
	if err != nil {
		return err
	}

	// go-update expects the target to exist.
	if _, err = os.Stat(dst); err != nil && os.IsNotExist(err) {
		var placeholder *os.File

		if placeholder, err = os.Create(dst); err != nil {
			return err
		}

		if err = placeholder.Close(); err != nil {
			return err
		}
	}

	options := goupdate.Options{
		TargetPath: dst,
		TargetMode: mode,
	}

	if err = goupdate.Apply(bytes.NewReader(data), options); err != nil {
		return err
	}

	oldFileName := dst + ".old"
	if _, err = os.Stat(oldFileName); err == nil {
		_ = os.Remove(oldFileName)
	}

	return nil
}

// waitRetry pauses between attempts, honoring context cancellation.
func waitRetry(ctx context.Context, delay time.Duration) {
	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

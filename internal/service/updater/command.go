package updater

import (
	"context"
	"errors"
	"time"

	"github.com/oshokin/desktop-updater/internal/config"
	"github.com/oshokin/desktop-updater/internal/fscopy"
	"github.com/oshokin/desktop-updater/internal/logger"
	"github.com/oshokin/desktop-updater/internal/process"
)

var (
	errOptionsNotSet      = errors.New("options are not set")
	errExecutableRequired = errors.New("executable path must be provided")
)

// Options are inputs accepted by the update worker entry point.
// The trigger passes them on the command line: the two processes communicate
// only via argv and the filesystem, never via shared state.
type Options struct {
	// StagingPath is the directory holding the staged new version.
	StagingPath string
	// InstallPath is the live application directory.
	InstallPath string
	// ExecutablePath is the application binary to relaunch.
	ExecutablePath string
	// WorkerPath is the temp-directory clone this worker runs from; removed
	// best-effort after the pipeline finishes.
	WorkerPath string
	// LogFile is the worker's log destination, excluded from the backup snapshot.
	LogFile string
	// WaitAttempts bounds polling for the application process to exit.
	WaitAttempts int
	// WaitInterval is the pause between exit polls.
	WaitInterval time.Duration
	// ApplyAttempts bounds retries of the file replacement step.
	ApplyAttempts int
	// ApplyRetryDelay is the pause between replacement retries.
	ApplyRetryDelay time.Duration
}

// runner holds the mutable state and helpers for a single update execution.
type runner struct {
	session *Session            // Unit of work for this update attempt.
	probe   *process.Probe      // Process lifecycle probe.
	copier  fscopy.FileCopyFunc // File replacement primitive for the apply step.
	opts    *Options            // Tunables passed by the trigger.
}

// Run executes the update pipeline and is the public entry point for the worker.
// The returned error is observable only in the worker's log and exit code: the
// triggering process has already exited by the time the pipeline runs.
func Run(ctx context.Context, opts *Options) error {
	// Set context with logger name for tracking.
	ctx = logger.WithName(ctx, "update-worker")

	r, err := newRunner(opts)
	if err != nil {
		return err
	}

	if err = r.Run(ctx); err != nil {
		logger.ErrorKV(ctx, "Update pipeline failed", "error", err)
		return err
	}

	logger.Info(ctx, "Update pipeline completed")

	return nil
}

// newRunner validates options, fills in defaults, and prepares the session.
func newRunner(opts *Options) (*runner, error) {
	if opts == nil {
		return nil, errOptionsNotSet
	}

	if opts.ExecutablePath == "" {
		return nil, errExecutableRequired
	}

	if opts.StagingPath == "" {
		opts.StagingPath = config.DefaultStagingPath
	}

	if opts.InstallPath == "" {
		opts.InstallPath = config.DefaultInstallPath
	}

	if opts.WaitAttempts <= 0 {
		opts.WaitAttempts = config.DefaultWaitAttempts
	}

	if opts.WaitInterval <= 0 {
		opts.WaitInterval = config.DefaultWaitInterval
	}

	if opts.ApplyAttempts <= 0 {
		opts.ApplyAttempts = config.DefaultApplyAttempts
	}

	if opts.ApplyRetryDelay <= 0 {
		opts.ApplyRetryDelay = config.DefaultApplyRetryDelay
	}

	return &runner{
		session: NewSession(opts.StagingPath, opts.InstallPath, opts.ExecutablePath),
		probe:   process.NewProbe(),
		copier:  applyFileCopy,
		opts:    opts,
	}, nil
}

// Run drives the state machine for this runner instance:
// 1) Wait for the application to exit (forced after the poll ceiling).
// 2) Snapshot the installation into the backup directory (best-effort).
// 3) Apply the staged files with bounded retry.
// 4) Restore the snapshot if apply exhausted its budget.
// 5) Clean up staging, backup, and the session marker (best-effort).
// 6) Relaunch the application and get out of its way.
func (r *runner) Run(ctx context.Context) error {
	s := r.session
	logger.InfoKV(ctx, "Starting update session",
		"staging", s.StagingPath, "install", s.InstallPath, "executable", s.ExecutableName)

	s.State = StateWaitingForExit
	r.waitForExit(ctx)

	s.State = StateBackingUp
	r.backUp(ctx)

	s.State = StateApplying

	applyErr := r.applyWithRetry(ctx)
	if applyErr != nil {
		logger.ErrorKV(ctx, "Apply step exhausted its retry budget, restoring backup", "error", applyErr)

		s.State = StateRollingBack
		r.rollBack(ctx)
	}

	s.State = StateCleaningUp
	r.cleanUp(ctx)

	s.State = StateRelaunching
	r.relaunch(ctx)

	r.removeWorkerClone(ctx)
	s.Report.Log(ctx)

	if applyErr != nil {
		s.State = StateFailed
		return applyErr
	}

	return nil
}

// waitForExit polls the process table until the application is gone or the
// poll ceiling forces termination.
func (r *runner) waitForExit(ctx context.Context) {
	forced := r.probe.AwaitExit(ctx,
		r.session.ExecutableName, r.opts.WaitAttempts, r.opts.WaitInterval)
	if forced {
		r.session.Report.Degraded(stepWaitForExit, "terminated forcibly after poll ceiling")
		return
	}

	r.session.Report.Ok(stepWaitForExit)
}

// Step names used in the session report.
const (
	stepWaitForExit = "wait_for_exit"
	stepBackup      = "backup"
	stepApply       = "apply"
	stepRollback    = "rollback"
	stepCleanup     = "cleanup"
	stepRelaunch    = "relaunch"
)

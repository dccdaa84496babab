package updater

import (
	"path/filepath"
)

// State identifies the pipeline stage a session is currently in.
type State string

// Pipeline states in execution order. FAILED is terminal and reached only
// when the apply step exhausted its retry budget.
const (
	StateWaitingForExit State = "WAITING_FOR_EXIT"
	StateBackingUp      State = "BACKING_UP"
	StateApplying       State = "APPLYING"
	StateRollingBack    State = "ROLLING_BACK"
	StateCleaningUp     State = "CLEANING_UP"
	StateRelaunching    State = "RELAUNCHING"
	StateFailed         State = "FAILED"
)

// BackupDirName is the recovery snapshot directory created under the install
// directory for the duration of one session.
const BackupDirName = "backup"

// Session is the unit of work for one update attempt. Its in-memory state is
// discarded when the worker exits; the final application state is determined
// entirely by the filesystem contents.
type Session struct {
	// StagingPath holds the new version's files. The session only reads it.
	StagingPath string
	// InstallPath is the live application directory mutated in place.
	InstallPath string
	// BackupPath is the recovery snapshot location under InstallPath.
	BackupPath string
	// ExecutablePath is the binary relaunched after the pipeline finishes.
	ExecutablePath string
	// ExecutableName identifies the running application in the process table.
	ExecutableName string
	// State is the current pipeline stage.
	State State
	// Report collects per-step outcomes for observability.
	Report Report
}

// NewSession derives a session from the trigger's inputs.
func NewSession(stagingPath, installPath, executablePath string) *Session {
	return &Session{
		StagingPath:    stagingPath,
		InstallPath:    installPath,
		BackupPath:     filepath.Join(installPath, BackupDirName),
		ExecutablePath: executablePath,
		ExecutableName: filepath.Base(executablePath),
		State:          StateWaitingForExit,
	}
}

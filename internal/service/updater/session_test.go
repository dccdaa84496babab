package updater

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestNewSession verifies derived fields and the initial state.
func TestNewSession(t *testing.T) {
	t.Parallel()

	s := NewSession("update", "/opt/app", "/opt/app/app.exe")
	require.Equal(t, filepath.Join("/opt/app", BackupDirName), s.BackupPath)
	require.Equal(t, "app.exe", s.ExecutableName)
	require.Equal(t, StateWaitingForExit, s.State)
}

// TestReportAggregation checks step outcomes and the degradations filter.
func TestReportAggregation(t *testing.T) {
	t.Parallel()

	var r Report

	r.Ok(stepWaitForExit)
	r.Degraded(stepBackup, "one entry skipped")
	r.Failed(stepApply, "simulated lock")

	require.Len(t, r.Outcomes, 3)

	degraded := r.Degradations()
	require.Len(t, degraded, 2)
	require.Equal(t, stepBackup, degraded[0].Step)
	require.Equal(t, StepDegraded, degraded[0].Status)
	require.Equal(t, stepApply, degraded[1].Step)
	require.Equal(t, StepFailed, degraded[1].Status)
}

// TestStepStatusString pins the log representation of statuses.
func TestStepStatusString(t *testing.T) {
	t.Parallel()

	require.Equal(t, "ok", StepOk.String())
	require.Equal(t, "degraded", StepDegraded.String())
	require.Equal(t, "failed", StepFailed.String())
}

package cmd

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/oshokin/desktop-updater/internal/config"
)

// TestRestartFlagDefaultsStayEmpty guards against the apply command's
// registration-time flag defaults leaking into the restart command's bound
// variables: restart must pass empty overrides so the settings file wins.
func TestRestartFlagDefaultsStayEmpty(t *testing.T) {
	t.Parallel()

	require.Empty(t, stagingPath)
	require.Empty(t, installPath)
	require.Empty(t, executablePath)

	require.Empty(t, restartCmd.Flags().Lookup("staging").DefValue)
	require.Empty(t, restartCmd.Flags().Lookup("install").DefValue)

	// The worker keeps its concrete defaults on its own variables.
	require.Equal(t, config.DefaultStagingPath, applyCmd.Flags().Lookup("staging").DefValue)
	require.Equal(t, config.DefaultInstallPath, applyCmd.Flags().Lookup("install").DefValue)
	require.Equal(t, config.DefaultStagingPath, applyStagingPath)
	require.Equal(t, config.DefaultInstallPath, applyInstallPath)
}

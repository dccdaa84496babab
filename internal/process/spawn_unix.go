//go:build !windows

package process

import (
	"os/exec"
	"syscall"
)

// StartDetached launches the executable as an independent process in its own
// session so it survives the caller's exit. The caller never waits on it.
func StartDetached(executable string, args ...string) error {
	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	return cmd.Process.Release()
}

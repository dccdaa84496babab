//go:build windows

package process

import (
	"os/exec"
	"syscall"
)

// createNoWindow prevents a console window from flashing for the spawned process.
const createNoWindow = 0x08000000

// StartDetached launches the executable decoupled from the caller's console and
// process group so it survives the caller's exit. The caller never waits on it.
func StartDetached(executable string, args ...string) error {
	cmd := exec.Command(executable, args...)
	cmd.SysProcAttr = &syscall.SysProcAttr{
		HideWindow:    true,
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | createNoWindow,
	}

	if err := cmd.Start(); err != nil {
		return err
	}

	return cmd.Process.Release()
}

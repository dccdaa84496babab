package process

import (
	"context"
	"os"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/oshokin/desktop-updater/internal/logger"
)

// Lister enumerates the OS process table. It matches ps.Processes and is
// injectable so tests can simulate processes that never exit.
type Lister func() ([]ps.Process, error)

// Terminator kills the process with the given PID.
type Terminator func(pid int) error

// Probe answers whether a named process is running and can request its termination.
type Probe struct {
	// list enumerates the process table.
	list Lister
	// terminate kills a single process by PID.
	terminate Terminator
}

// NewProbe returns a probe backed by the real OS process table.
func NewProbe() *Probe {
	return &Probe{
		list:      ps.Processes,
		terminate: killByPID,
	}
}

// NewProbeWith returns a probe with custom process enumeration and termination,
// used by tests.
func NewProbeWith(list Lister, terminate Terminator) *Probe {
	return &Probe{
		list:      list,
		terminate: terminate,
	}
}

// IsRunning reports whether any process other than the current one matches the
// executable name.
func (p *Probe) IsRunning(name string) (bool, error) {
	matches, err := p.findByName(name)
	if err != nil {
		return false, err
	}

	return len(matches) > 0, nil
}

// ForceTerminate kills every process matching the executable name.
// The first termination failure is returned; callers treat it as non-fatal.
func (p *Probe) ForceTerminate(name string) error {
	matches, err := p.findByName(name)
	if err != nil {
		return err
	}

	for _, pid := range matches {
		if err = p.terminate(pid); err != nil {
			return err
		}
	}

	return nil
}

// TerminateByPrefix kills every process whose executable name starts with the
// provided prefix. Used to reclaim stale per-session workers.
func (p *Probe) TerminateByPrefix(prefix string) error {
	processList, err := p.list()
	if err != nil {
		return err
	}

	thisProcessID := os.Getpid()

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if !strings.HasPrefix(process.Executable(), prefix) {
			continue
		}

		if err = p.terminate(process.Pid()); err != nil {
			return err
		}
	}

	return nil
}

// AwaitExit polls for the named process to disappear, at most attempts times
// with the given interval between polls. When the ceiling is reached the
// process is terminated forcibly. It reports whether force was used.
// Probe errors are logged and treated as "not running" so a broken process
// table never blocks the pipeline.
func (p *Probe) AwaitExit(ctx context.Context, name string, attempts int, interval time.Duration) bool {
	for attempt := 1; attempt <= attempts; attempt++ {
		running, err := p.IsRunning(name)
		if err != nil {
			logger.WarnKV(ctx, "Unable to inspect process table", "error", err)
			return false
		}

		if !running {
			logger.InfoKV(ctx, "Application has exited", "executable", name, "attempt", attempt)
			return false
		}

		logger.InfoKV(ctx, "Application still running",
			"executable", name, "attempt", attempt, "max_attempts", attempts)

		if attempt < attempts {
			sleep(ctx, interval)
		}
	}

	logger.WarnKV(ctx, "Exit-wait ceiling reached, terminating forcibly", "executable", name)

	if err := p.ForceTerminate(name); err != nil {
		// Termination failure is silent by contract: a surviving lock will
		// simply fail the apply step and trigger its own retry and rollback.
		logger.WarnKV(ctx, "Forced termination failed", "executable", name, "error", err)
	}

	return true
}

// findByName returns PIDs of processes matching the executable name, own PID excluded.
func (p *Probe) findByName(name string) ([]int, error) {
	processList, err := p.list()
	if err != nil {
		return nil, err
	}

	thisProcessID := os.Getpid()

	var matches []int

	for _, process := range processList {
		if process.Pid() == thisProcessID {
			continue
		}

		if process.Executable() != name {
			continue
		}

		matches = append(matches, process.Pid())
	}

	return matches, nil
}

// killByPID terminates a process through the OS.
func killByPID(pid int) error {
	runningProcess, err := os.FindProcess(pid)
	if err != nil {
		return err
	}

	return runningProcess.Kill()
}

// sleep waits for the interval or until the context is done.
func sleep(ctx context.Context, interval time.Duration) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}

// Package process implements the process lifecycle probe and detached spawning.
//
// The probe inspects the OS process table to tell whether the target
// application is still running, waits out its exit with a bounded poll loop,
// and force-terminates it when the ceiling is reached. StartDetached launches
// executables decoupled from the caller's lifetime and console, which is how
// both the update worker and the relaunched application are started.
package process

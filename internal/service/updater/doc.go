// Package updater implements the detached update pipeline.
//
// One Run call drives a single session through the state machine: wait for
// the application to exit (bounded, then forced), snapshot the installation,
// apply the staged files with bounded retry, restore the snapshot when apply
// cannot succeed, clean up transient artifacts, and relaunch the application.
// Apply is the only critical step; everything else is best-effort and recorded
// in the session report instead of aborting the pipeline.
package updater

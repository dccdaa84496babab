// Package restarter implements the update trigger: the short-lived launcher
// half of the two-process handoff. It only decides that an update should
// happen, takes the session marker, and spawns the detached worker that runs
// the actual pipeline; it never mutates the installation itself.
package restarter

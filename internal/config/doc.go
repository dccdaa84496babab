// Package config defines updater settings used by the trigger and the detached
// worker and provides helpers to load, validate and save them in YAML format.
//
// The Config type holds the target executable path, the staging and install
// directories, and the retry tunables of the update pipeline.
package config

// Package fscopy provides the recursive copy and removal primitives the
// update pipeline is built from. File replacement is pluggable via
// FileCopyFunc so the apply step can route through an atomic replacer and
// tests can force deterministic failures.
package fscopy

// Package powerstate reports where a machine draws its power from, how much
// energy its battery holds and whether a power saving mode is active, and
// notifies subscribers whenever the OS reports a change.
//
// Supported platforms are Windows and macOS (with cgo). Elsewhere every
// operation fails with ErrUnsupportedPlatform.
package powerstate

package client

import "errors"

var (
	// ErrDaemonNotRunning means nothing listens on the daemon socket.
	ErrDaemonNotRunning = errors.New("powerstate daemon not running")

	// ErrPermissionDenied means the socket exists but the current user may not connect to it.
	ErrPermissionDenied = errors.New("permission denied")

	// ErrNotFound is returned when the daemon does not serve the requested path
	ErrNotFound = errors.New("404 not found")

	// ErrUnsupportedPlatform means the daemon runs on a platform without power state support.
	ErrUnsupportedPlatform = errors.New("power state is not supported on the daemon's platform")
)

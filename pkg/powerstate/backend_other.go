//go:build !windows && !(darwin && cgo)

package powerstate

import "context"

var nativeBackend backend = unsupportedBackend{}

// Run blocks until ctx is done. Platforms other than macOS need no run loop.
func Run(ctx context.Context) {
	<-ctx.Done()
}

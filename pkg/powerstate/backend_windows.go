//go:build windows

package powerstate

import (
	"context"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	kernel32 = windows.NewLazySystemDLL("kernel32.dll")

	procGetSystemPowerStatus = kernel32.NewProc("GetSystemPowerStatus")
)

var nativeBackend backend = windowsBackend{}

type windowsBackend struct{}

func (windowsBackend) query() (Status, error) {
	var ps SystemPowerStatus
	r1, _, err := procGetSystemPowerStatus.Call(uintptr(unsafe.Pointer(&ps)))
	if r1 == 0 {
		return Status{}, newError(KindNativeQueryFailed, "GetSystemPowerStatus", err)
	}
	return NormalizeSystemPowerStatus(ps), nil
}

func (windowsBackend) newSink() (sink, error) {
	return &windowSink{}, nil
}

// Run blocks until ctx is done. Windows sinks run their own message loop, so
// there is nothing to drive here.
func Run(ctx context.Context) {
	<-ctx.Done()
}

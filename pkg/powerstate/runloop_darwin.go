//go:build darwin && cgo

package powerstate

/*
#include "sink_darwin.h"
*/
import "C"

import (
	"context"

	"github.com/sirupsen/logrus"
)

// Run drives the main CFRunLoop until ctx is done. Subscriptions deliver
// their events on this loop, so a program without another main loop (such
// as an AppKit application) must call Run from the main goroutine, locked to
// the main thread with runtime.LockOSThread in an init function.
func Run(ctx context.Context) {
	if C.psIsMainThread() == 0 {
		logrus.Warn("powerstate.Run called off the main thread, power events will not be delivered")
	}

	// CFRunLoopRun returns immediately on a loop without sources.
	keepAlive := C.psKeepAliveAdd()
	defer C.psKeepAliveRemove(keepAlive)

	loop := C.CFRunLoopGetCurrent()
	go func() {
		<-ctx.Done()
		C.CFRunLoopStop(loop)
	}()

	for ctx.Err() == nil {
		C.psRunLoopRunFor(1)
	}
}

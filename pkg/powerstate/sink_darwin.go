//go:build darwin && cgo

package powerstate

/*
#cgo LDFLAGS: -framework IOKit -framework CoreFoundation

#include "sink_darwin.h"
*/
import "C"

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// runLoopSink attaches to the main CFRunLoop instead of running a loop of
// its own. Events are delivered on whatever thread runs that loop.
type runLoopSink struct {
	mu sync.Mutex
	s  *C.ps_sink
}

var _ sink = &runLoopSink{}

func (r *runLoopSink) open(token uintptr) error {
	var status C.int
	s := C.psSinkOpen(C.uintptr_t(token), &status)
	switch status {
	case 0:
	case 1:
		return newError(KindNoRunLoopAvailable, "CFRunLoopGetMain returned NULL", nil)
	default:
		return newError(KindSinkCreationFailed, "IOPSNotificationCreateRunLoopSource failed", nil)
	}

	r.mu.Lock()
	r.s = s
	r.mu.Unlock()

	if C.psIsMainThread() == 0 {
		logrus.Debug("power events will be delivered on the main run loop, make sure it is running")
	}

	return nil
}

func (r *runLoopSink) unregister() {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.s != nil {
		C.psSinkUnregister(r.s)
	}
}

func (r *runLoopSink) destroy() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.s == nil {
		return nil
	}
	// Freed by the run loop from here on.
	C.psSinkDestroy(r.s)
	r.s = nil
	return nil
}

//export powerstateDarwinEvent
func powerstateDarwinEvent(token C.uintptr_t) {
	dispatch(uintptr(token))
}

//export powerstateDarwinDestroy
func powerstateDarwinDestroy(token C.uintptr_t) {
	release(uintptr(token))
}

package powerstate

import (
	"runtime"

	"github.com/sirupsen/logrus"
)

// sink is the native object registered with the OS to receive power
// notifications for one subscription.
type sink interface {
	// open creates the native sink and registers for power notifications.
	// The sink reports events with dispatch(token) and, once destroyed,
	// calls release(token) from inside its dispatch loop.
	open(token uintptr) error
	// unregister drops OS-level interest in power notifications. It may be
	// called from any goroutine and more than once.
	unregister()
	// destroy posts a destroy event into the dispatch loop.
	destroy() error
}

// threadSink is a sink that needs a dedicated OS thread running its
// dispatch loop. Sinks that are not threadSinks attach to a loop the caller
// already runs.
type threadSink interface {
	sink
	// pump runs the dispatch loop until the sink is destroyed.
	pump()
}

// Subscribe calls cb with a fresh snapshot every time the OS reports a power
// state change, until the returned Guard is closed. Calls to cb for one
// subscription never overlap. On macOS cb runs on the main run loop, see Run.
func Subscribe(cb Callback) (*Guard, error) {
	return defaultSource.Subscribe(cb)
}

// Subscribe is like the package-level Subscribe, using this source for snapshots.
func (s *Source) Subscribe(cb Callback) (*Guard, error) {
	if cb == nil {
		panic("powerstate: nil callback")
	}

	sk, err := s.backend.newSink()
	if err != nil {
		return nil, err
	}

	ctx := &callbackContext{
		source:   s,
		callback: cb,
		done:     make(chan struct{}),
	}
	token := contexts.leak(ctx)

	if ts, ok := sk.(threadSink); ok {
		err = spawnSink(ts, token)
	} else {
		err = sk.open(token)
	}
	if err != nil {
		// The sink may already have released it while failing.
		contexts.reclaim(token)
		return nil, err
	}

	logrus.WithField("token", token).Debug("subscribed to power state changes")

	return &Guard{
		sink:  sk,
		token: token,
		done:  ctx.done,
	}, nil
}

// lockThread pins the dispatch goroutine to its OS thread.
var lockThread = runtime.LockOSThread

// spawnSink opens ts on a new locked OS thread and keeps its dispatch loop
// running there. It returns once the sink is either live or has failed.
func spawnSink(ts threadSink, token uintptr) error {
	handoff := make(chan error, 1)

	go func() {
		opening, sent := false, false
		defer func() {
			if r := recover(); r != nil {
				logrus.Errorf("power event dispatch loop panicked: %v", r)
			}
			switch {
			case sent:
			case !opening:
				handoff <- ErrCallbackThreadSpawnFailed
			default:
				close(handoff)
			}
		}()

		// Never unlocked: when this goroutine exits the thread exits with it,
		// along with any native state bound to it.
		lockThread()

		opening = true
		err := ts.open(token)
		handoff <- err
		sent = true
		if err != nil {
			return
		}

		logrus.WithField("token", token).Debug("power event dispatch loop started")
		ts.pump()
		logrus.WithField("token", token).Debug("power event dispatch loop exited")
	}()

	err, ok := <-handoff
	if !ok {
		return ErrRegistrationChannelClosed
	}
	return err
}

// dispatch is the trampoline native sinks call on every power event.
func dispatch(token uintptr) {
	ctx, ok := contexts.load(token)
	if !ok {
		logrus.WithField("token", token).Error("power event for unknown callback context")
		return
	}
	ctx.deliver()
}

// deliver runs a snapshot and hands it to the user callback. Panics stay
// here: unwinding into the OS dispatch machinery is not an option.
func (c *callbackContext) deliver() {
	defer func() {
		if r := recover(); r != nil {
			logrus.WithField("panic", r).Error("power state callback panicked")
		}
	}()

	status, err := c.source.Current()
	c.callback(status, err)
}

// release is called by native sinks from inside their dispatch loop once
// they are destroyed.
func release(token uintptr) {
	if _, ok := contexts.reclaim(token); ok {
		logrus.WithField("token", token).Debug("callback context released")
	}
}

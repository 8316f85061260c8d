package powerstate

import (
	"sync"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var closedChan = func() chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}()

// Guard keeps a subscription alive. Close it to unsubscribe.
type Guard struct {
	sink  sink
	token uintptr
	done  <-chan struct{}

	mu     sync.Mutex
	closed bool
}

// Close unregisters the subscription and asks the dispatch loop to shut
// down. The callback context is released by the loop itself, so Close does
// not wait for it; use Done for that. Close is safe to call more than once
// and on a zero Guard. If the teardown request fails, the Guard stays open
// and Close may be retried.
func (g *Guard) Close() error {
	if g == nil || g.sink == nil {
		return nil
	}

	g.mu.Lock()
	defer g.mu.Unlock()

	if g.closed {
		return nil
	}

	g.sink.unregister()
	if err := g.sink.destroy(); err != nil {
		return pkgerrors.Wrap(err, "failed to stop power event sink")
	}
	g.closed = true
	logrus.WithField("token", g.token).Debug("power event sink teardown requested")

	return nil
}

// Done returns a channel that is closed once the dispatch loop has released
// the subscription.
func (g *Guard) Done() <-chan struct{} {
	if g == nil || g.done == nil {
		return closedChan
	}
	return g.done
}

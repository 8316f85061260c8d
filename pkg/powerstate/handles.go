package powerstate

import (
	"sync"
	"sync/atomic"
)

// callbackContext is everything a native sink needs to serve one
// subscription. The OS only ever sees the token that refers to it.
type callbackContext struct {
	source   *Source
	callback Callback
	// done is closed once the context has been reclaimed.
	done chan struct{}
}

// contextTable hands out opaque tokens for callback contexts. A context is
// leaked into the table at registration and reclaimed exactly once, from the
// dispatch loop, at teardown.
type contextTable struct {
	next    atomic.Uintptr
	entries sync.Map // uintptr -> *callbackContext
}

var contexts = &contextTable{}

// leak stores ctx and returns a non-zero token for it.
func (t *contextTable) leak(ctx *callbackContext) uintptr {
	token := t.next.Add(1)
	t.entries.Store(token, ctx)
	return token
}

// load returns the context for token without taking ownership.
func (t *contextTable) load(token uintptr) (*callbackContext, bool) {
	v, ok := t.entries.Load(token)
	if !ok {
		return nil, false
	}
	return v.(*callbackContext), true
}

// reclaim removes the context for token. Only the first call for a token
// gets the context back.
func (t *contextTable) reclaim(token uintptr) (*callbackContext, bool) {
	v, ok := t.entries.LoadAndDelete(token)
	if !ok {
		return nil, false
	}
	ctx := v.(*callbackContext)
	close(ctx.done)
	return ctx, true
}

func (t *contextTable) len() int {
	n := 0
	t.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

package powerstate

import (
	"encoding/json"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	pkgerrors "github.com/pkg/errors"

	"github.com/charlie0129/powerstate/pkg/powerinfo"
	"github.com/charlie0129/powerstate/pkg/utils/ptr"
)

type fakeBackend struct {
	status   Status
	queryErr error
	sink     sink
	sinkErr  error
}

func (b *fakeBackend) query() (Status, error) {
	return b.status, b.queryErr
}

func (b *fakeBackend) newSink() (sink, error) {
	return b.sink, b.sinkErr
}

// loopSink imitates a native sink with its own dispatch loop.
type loopSink struct {
	openErr   error
	openPanic bool

	token        uintptr
	events       chan string
	unregistered atomic.Int32
	destroyed    atomic.Int32
}

func newLoopSink() *loopSink {
	return &loopSink{events: make(chan string, 16)}
}

func (s *loopSink) open(token uintptr) error {
	if s.openPanic {
		panic("open exploded")
	}
	s.token = token
	return s.openErr
}

func (s *loopSink) pump() {
	for ev := range s.events {
		switch ev {
		case "power":
			dispatch(s.token)
		case "destroy":
			release(s.token)
			return
		}
	}
}

func (s *loopSink) unregister() {
	s.unregistered.Add(1)
}

func (s *loopSink) destroy() error {
	s.destroyed.Add(1)
	s.events <- "destroy"
	return nil
}

// attachedSink imitates a sink attached to a loop run by someone else.
type attachedSink struct {
	token      uintptr
	destroyErr error
}

func (s *attachedSink) open(token uintptr) error {
	s.token = token
	return nil
}

func (s *attachedSink) unregister() {}

func (s *attachedSink) destroy() error {
	if s.destroyErr != nil {
		return s.destroyErr
	}
	release(s.token)
	return nil
}

func testSource(b backend) *Source {
	return &Source{
		backend: b,
		batteries: func() ([]powerinfo.BatteryInfo, error) {
			return []powerinfo.BatteryInfo{{StateOfCharge: 0.5}}, nil
		},
	}
}

func waitDone(t *testing.T, g *Guard) {
	t.Helper()
	select {
	case <-g.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("callback context was not released")
	}
}

func TestSubscribe_DeliversSnapshots(t *testing.T) {
	sk := newLoopSink()
	src := testSource(&fakeBackend{status: Status{PowerState: Battery}, sink: sk})
	before := contexts.len()

	got := make(chan Status, 3)
	g, err := src.Subscribe(func(s Status, err error) {
		if err != nil {
			t.Errorf("callback error = %v", err)
		}
		got <- s
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if contexts.len() != before+1 {
		t.Errorf("contexts = %d, want %d", contexts.len(), before+1)
	}

	for i := 0; i < 3; i++ {
		sk.events <- "power"
	}
	for i := 0; i < 3; i++ {
		select {
		case s := <-got:
			if s.PowerState != Battery || len(s.Batteries) != 1 {
				t.Errorf("snapshot = %+v, want battery power with one battery", s)
			}
		case <-time.After(5 * time.Second):
			t.Fatalf("missing delivery %d", i)
		}
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	waitDone(t, g)

	if sk.unregistered.Load() != 1 || sk.destroyed.Load() != 1 {
		t.Errorf("unregister/destroy calls = %d/%d, want 1/1", sk.unregistered.Load(), sk.destroyed.Load())
	}
	if contexts.len() != before {
		t.Errorf("contexts = %d after teardown, want %d", contexts.len(), before)
	}
}

func TestSubscribe_QueryErrorReachesCallback(t *testing.T) {
	sk := newLoopSink()
	src := testSource(&fakeBackend{queryErr: newError(KindNativeQueryFailed, "boom", nil), sink: sk})

	errs := make(chan error, 1)
	g, err := src.Subscribe(func(_ Status, err error) {
		errs <- err
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	defer g.Close()

	sk.events <- "power"
	select {
	case err := <-errs:
		if !errors.Is(err, ErrNativeQueryFailed) {
			t.Errorf("callback error = %v, want %v", err, ErrNativeQueryFailed)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("no delivery")
	}
}

func TestSubscribe_CallbackPanicIsContained(t *testing.T) {
	sk := newLoopSink()
	src := testSource(&fakeBackend{status: Status{PowerState: AC}, sink: sk})

	var calls atomic.Int32
	delivered := make(chan struct{}, 2)
	g, err := src.Subscribe(func(Status, error) {
		n := calls.Add(1)
		delivered <- struct{}{}
		if n == 1 {
			panic("callback exploded")
		}
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	sk.events <- "power"
	sk.events <- "power"
	for i := 0; i < 2; i++ {
		select {
		case <-delivered:
		case <-time.After(5 * time.Second):
			t.Fatalf("delivery %d did not happen after a panic", i)
		}
	}

	_ = g.Close()
	waitDone(t, g)
}

func TestSubscribe_OpenFailure(t *testing.T) {
	sk := newLoopSink()
	sk.openErr = newError(KindSinkCreationFailed, "CreateWindowExW", nil)
	src := testSource(&fakeBackend{sink: sk})
	before := contexts.len()

	g, err := src.Subscribe(func(Status, error) {})
	if !errors.Is(err, ErrSinkCreationFailed) {
		t.Errorf("Subscribe() error = %v, want %v", err, ErrSinkCreationFailed)
	}
	if g != nil {
		t.Errorf("Subscribe() guard = %v, want nil", g)
	}
	if contexts.len() != before {
		t.Errorf("contexts = %d, want %d", contexts.len(), before)
	}
}

func TestSubscribe_OpenPanicClosesHandoff(t *testing.T) {
	sk := newLoopSink()
	sk.openPanic = true
	src := testSource(&fakeBackend{sink: sk})
	before := contexts.len()

	_, err := src.Subscribe(func(Status, error) {})
	if !errors.Is(err, ErrRegistrationChannelClosed) {
		t.Errorf("Subscribe() error = %v, want %v", err, ErrRegistrationChannelClosed)
	}
	if contexts.len() != before {
		t.Errorf("contexts = %d, want %d", contexts.len(), before)
	}
}

func TestSubscribe_SpawnFailure(t *testing.T) {
	old := lockThread
	lockThread = func() { panic("no thread for you") }
	defer func() { lockThread = old }()

	src := testSource(&fakeBackend{sink: newLoopSink()})

	_, err := src.Subscribe(func(Status, error) {})
	if !errors.Is(err, ErrCallbackThreadSpawnFailed) {
		t.Errorf("Subscribe() error = %v, want %v", err, ErrCallbackThreadSpawnFailed)
	}
}

func TestSubscribe_AttachedSink(t *testing.T) {
	sk := &attachedSink{}
	src := testSource(&fakeBackend{status: Status{PowerState: AC}, sink: sk})

	var calls atomic.Int32
	g, err := src.Subscribe(func(Status, error) {
		calls.Add(1)
	})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	// The run loop delivers on the caller's thread.
	dispatch(sk.token)
	dispatch(sk.token)
	if calls.Load() != 2 {
		t.Errorf("calls = %d, want 2", calls.Load())
	}

	if err := g.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	waitDone(t, g)

	// Events racing with teardown are dropped.
	dispatch(sk.token)
	if calls.Load() != 2 {
		t.Errorf("calls = %d after teardown, want 2", calls.Load())
	}
}

func TestSubscribe_UnsupportedPlatform(t *testing.T) {
	src := testSource(unsupportedBackend{})

	if _, err := src.Subscribe(func(Status, error) {}); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("Subscribe() error = %v, want %v", err, ErrUnsupportedPlatform)
	}
	if _, err := src.Current(); !errors.Is(err, ErrUnsupportedPlatform) {
		t.Errorf("Current() error = %v, want %v", err, ErrUnsupportedPlatform)
	}
}

func TestSubscribe_NilCallbackPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("Subscribe(nil) did not panic")
		}
	}()
	_, _ = testSource(&fakeBackend{sink: newLoopSink()}).Subscribe(nil)
}

func TestGuard_CloseIsIdempotent(t *testing.T) {
	sk := newLoopSink()
	src := testSource(&fakeBackend{sink: sk})
	before := contexts.len()

	g, err := src.Subscribe(func(Status, error) {})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sk.events <- "power"
			_ = g.Close()
		}()
	}
	wg.Wait()
	waitDone(t, g)

	if err := g.Close(); err != nil {
		t.Errorf("Close() after teardown error = %v", err)
	}
	if sk.destroyed.Load() != 1 {
		t.Errorf("destroy calls = %d, want 1", sk.destroyed.Load())
	}
	if contexts.len() != before {
		t.Errorf("contexts = %d, want %d", contexts.len(), before)
	}
}

func TestGuard_CloseError(t *testing.T) {
	sk := &attachedSink{destroyErr: errors.New("post failed")}
	src := testSource(&fakeBackend{sink: sk})

	g, err := src.Subscribe(func(Status, error) {})
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}
	if err := g.Close(); err == nil {
		t.Error("Close() error = nil, want an error")
	}
	select {
	case <-g.Done():
		t.Fatal("context released although teardown failed")
	default:
	}

	// The next Close retries the teardown.
	sk.destroyErr = nil
	if err := g.Close(); err != nil {
		t.Fatalf("second Close() error = %v", err)
	}
	waitDone(t, g)
	if _, ok := contexts.load(sk.token); ok {
		t.Error("callback context still registered after Close")
	}

	if err := g.Close(); err != nil {
		t.Errorf("third Close() error = %v", err)
	}
}

func TestGuard_Zero(t *testing.T) {
	var g Guard
	if err := g.Close(); err != nil {
		t.Errorf("Close() on zero Guard error = %v", err)
	}
	var nilGuard *Guard
	if err := nilGuard.Close(); err != nil {
		t.Errorf("Close() on nil Guard error = %v", err)
	}
	select {
	case <-nilGuard.Done():
	default:
		t.Error("Done() on nil Guard is not closed")
	}
}

func TestCurrent_BatteryFailureIsDowngraded(t *testing.T) {
	src := &Source{
		backend: &fakeBackend{status: Status{PowerState: Battery, EstimatedEnergyPercentage: ptr.To(12)}},
		batteries: func() ([]powerinfo.BatteryInfo, error) {
			return nil, errors.New("no battery manager")
		},
	}

	got, err := src.Current()
	if err != nil {
		t.Fatalf("Current() error = %v", err)
	}
	if got.Batteries == nil || len(got.Batteries) != 0 {
		t.Errorf("Batteries = %#v, want an empty list", got.Batteries)
	}
	if p, ok := got.Percentage(); !ok || p != 12 {
		t.Errorf("Percentage() = %d, %v, want 12, true", p, ok)
	}
}

func TestError_Is(t *testing.T) {
	err := newError(KindNativeQueryFailed, "GetSystemPowerStatus", errors.New("access denied"))

	if !errors.Is(err, ErrNativeQueryFailed) {
		t.Error("errors.Is(err, ErrNativeQueryFailed) = false")
	}
	if errors.Is(err, ErrSinkCreationFailed) {
		t.Error("errors.Is(err, ErrSinkCreationFailed) = true")
	}
	if !errors.Is(pkgerrors.Wrap(err, "query"), ErrNativeQueryFailed) {
		t.Error("wrapped error lost its kind")
	}

	var pe *Error
	if !errors.As(err, &pe) || pe.Details != "GetSystemPowerStatus" {
		t.Errorf("errors.As() = %v", pe)
	}
	if want := "native power query failed: GetSystemPowerStatus: access denied"; err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}

func TestStatus_JSON(t *testing.T) {
	s := Status{
		PowerState:                Battery,
		EstimatedEnergyPercentage: ptr.To(87),
		EstimatedTimeRemaining:    &TimeRemaining{Kind: Discharging, Duration: 3300 * time.Second},
		Batteries:                 []powerinfo.BatteryInfo{},
	}
	b, err := json.Marshal(s)
	if err != nil {
		t.Fatalf("json.Marshal() error = %v", err)
	}
	want := `{"powerState":"battery","estimatedEnergyPercentage":87,"estimatedTimeRemaining":{"state":"discharging","seconds":3300},"powerSavingMode":false,"batteries":[]}`
	if string(b) != want {
		t.Errorf("json.Marshal() = %s, want %s", b, want)
	}
}

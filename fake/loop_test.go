package fake_test

import (
	"testing"
	"time"

	"github.com/momentics/hioload-async/api"
	"github.com/momentics/hioload-async/fake"
)

func newLoop(t *testing.T) *fake.Loop {
	t.Helper()
	loop := fake.NewLoop()
	go loop.Run()
	t.Cleanup(loop.Shutdown)
	return loop
}

func TestCurrentInsideAndOutside(t *testing.T) {
	loop := newLoop(t)

	if loop.Current() != nil {
		t.Fatal("Current() outside coroutine is not nil")
	}

	var inside api.Coroutine
	co := loop.Spawn(func(co api.Coroutine) {
		inside = loop.Current()
	})
	loop.Wait(co)

	if inside != co {
		t.Fatal("Current() inside coroutine does not match its handle")
	}
}

func TestSuspendResumeHandoff(t *testing.T) {
	loop := newLoop(t)

	var steps []string
	co := loop.Spawn(func(co api.Coroutine) {
		steps = append(steps, "before")
		co.NewWaker()
		co.Suspend()
		steps = append(steps, "after")
		co.DestroyWaker()
	})

	loop.Post(func() { co.Resume() })
	loop.Wait(co)

	if len(steps) != 2 || steps[0] != "before" || steps[1] != "after" {
		t.Fatalf("steps = %v", steps)
	}
}

func TestResumeIsIdempotentWhilePending(t *testing.T) {
	loop := newLoop(t)

	wakeups := 0
	co := loop.Spawn(func(co api.Coroutine) {
		co.NewWaker()
		co.Suspend()
		wakeups++
		co.DestroyWaker()
	})

	loop.Post(func() {
		co.Resume()
		co.Resume()
		co.Resume()
	})
	loop.Wait(co)

	if wakeups != 1 {
		t.Fatalf("coroutine woke %d times, want 1", wakeups)
	}
}

func TestSuspendConsumesFailureOnce(t *testing.T) {
	loop := newLoop(t)

	var first, second error
	co := loop.Spawn(func(co api.Coroutine) {
		co.NewWaker()
		first = co.Suspend()
		co.NewWaker()
		co.Resume()
		second = co.Suspend()
		co.DestroyWaker()
	})

	loop.Post(func() { co.ResumeWithError(&api.CanceledError{}) })
	loop.Wait(co)

	if !api.IsCanceled(first) {
		t.Fatalf("first Suspend = %v, want CanceledError", first)
	}
	if second != nil {
		t.Fatalf("second Suspend = %v, want nil (failure already consumed)", second)
	}
}

// Destroying the waker detaches its callbacks and disposes owned events.
func TestDestroyWakerCancelsLinkedEvents(t *testing.T) {
	loop := newLoop(t)

	fired := 0
	cb := &callbackFunc{fn: func(ev api.Event, result any, failure error) { fired++ }}

	co := loop.Spawn(func(co api.Coroutine) {
		co.NewWaker()
		ev, err := loop.NewSocketEvent(3, api.EventReadable)
		if err != nil {
			t.Errorf("NewSocketEvent: %v", err)
			return
		}
		if err := co.ResumeWhen(ev, true, cb); err != nil {
			t.Errorf("ResumeWhen: %v", err)
			return
		}
		co.DestroyWaker()
	})
	loop.Wait(co)

	loop.FireFD(3, api.EventReadable)

	done := make(chan struct{})
	loop.Post(func() { close(done) })
	<-done

	if fired != 0 {
		t.Fatalf("callback fired %d times after waker destroy, want 0", fired)
	}
}

func TestWakerTimeoutDeliversTimeoutError(t *testing.T) {
	loop := newLoop(t)

	var serr error
	co := loop.Spawn(func(co api.Coroutine) {
		co.NewWakerWithTimeout(5 * time.Millisecond)
		serr = co.Suspend()
		co.DestroyWaker()
	})
	loop.Wait(co)

	if !api.IsTimeout(serr) {
		t.Fatalf("Suspend after waker timeout = %v, want TimeoutError", serr)
	}
}

func TestOnFinishHooksRun(t *testing.T) {
	loop := newLoop(t)

	ran := 0
	co := loop.Spawn(func(co api.Coroutine) {
		co.OnFinish(func() { ran++ })
		co.OnFinish(func() { ran++ })
	})
	loop.Wait(co)

	if ran != 2 {
		t.Fatalf("finish hooks ran %d times, want 2", ran)
	}
}

func TestPeriodicTimerFiresAgain(t *testing.T) {
	loop := newLoop(t)

	fires := make(chan struct{}, 4)
	cb := &callbackFunc{fn: func(ev api.Event, result any, failure error) {
		select {
		case fires <- struct{}{}:
		default:
		}
	}}

	var tev api.TimerEvent
	done := make(chan struct{})
	loop.Post(func() {
		var err error
		tev, err = loop.NewTimerEvent(2*time.Millisecond, true)
		if err != nil {
			t.Errorf("NewTimerEvent: %v", err)
		}
		tev.AddCallback(cb)
		tev.Start()
		close(done)
	})
	<-done

	<-fires
	<-fires

	loop.Post(func() { tev.Dispose() })
}

// callbackFunc adapts a function to api.EventCallback for tests. It is a
// pointer type so records stay comparable for DelCallback.
type callbackFunc struct {
	fn func(ev api.Event, result any, failure error)
}

func (f *callbackFunc) Invoke(ev api.Event, result any, failure error) {
	f.fn(ev, result, failure)
}

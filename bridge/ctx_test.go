package bridge_test

import (
	"testing"

	"github.com/momentics/hioload-async/api"
	"github.com/momentics/hioload-async/fake"
)

// An expired select timeout is the expected outcome, not an error.
func TestMultiSelectTimeoutIsOK(t *testing.T) {
	loop := newTestLoop(t)
	engine := fake.NewEngine()
	d := newTestDriver(t, loop, engine)

	var numfds int
	var status api.MultiStatus
	co := loop.Spawn(func(co api.Coroutine) {
		numfds, status = d.MultiSelect(engine, 10)
	})
	loop.Wait(co)

	if status != api.MultiOK {
		t.Fatalf("MultiSelect after timeout = %v, want MultiOK", status)
	}
	if numfds != 0 {
		t.Fatalf("numfds = %d, want 0", numfds)
	}
}

func TestMultiSelectOutsideCoroutine(t *testing.T) {
	loop := newTestLoop(t)
	engine := fake.NewEngine()
	d := newTestDriver(t, loop, engine)

	if _, status := d.MultiSelect(engine, 10); status != api.MultiInternalError {
		t.Fatalf("MultiSelect outside coroutine = %v, want MultiInternalError", status)
	}
}

func TestMultiPerformCountsPollList(t *testing.T) {
	loop := newTestLoop(t)
	engine := fake.NewEngine()
	d := newTestDriver(t, loop, engine)

	tr := fake.NewTransfer(7, 1, api.TransferOK)
	if err := engine.AddTransfer(tr); err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}

	var running int
	var status api.MultiStatus
	co := loop.Spawn(func(co api.Coroutine) {
		running, status = d.MultiPerform(engine)
	})
	loop.Wait(co)

	if status != api.MultiOK {
		t.Fatalf("MultiPerform = %v, want MultiOK", status)
	}
	if running != 1 {
		t.Fatalf("running = %d, want 1", running)
	}
}

// Draining the engine's poll list to empty wakes the selecting coroutine
// without an error, ahead of its timeout.
func TestMultiSelectWakesOnEmptyPollList(t *testing.T) {
	loop := newTestLoop(t)
	engine := fake.NewEngine()
	d := newTestDriver(t, loop, engine)

	tr := fake.NewTransfer(7, 1, api.TransferOK)
	if err := engine.AddTransfer(tr); err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}

	var numfds int
	var status api.MultiStatus
	co := loop.Spawn(func(co api.Coroutine) {
		d.MultiPerform(engine)
		numfds, status = d.MultiSelect(engine, 60_000)
	})
	loop.FireFD(7, api.EventReadable)
	loop.Wait(co)

	if status != api.MultiOK {
		t.Fatalf("MultiSelect = %v, want MultiOK", status)
	}
	if numfds != 0 {
		t.Fatalf("numfds after drain = %d, want 0", numfds)
	}

	msg, _ := engine.InfoRead()
	if msg == nil || msg.Result != api.TransferOK {
		t.Fatalf("engine completion message = %+v, want TransferOK", msg)
	}
}

func TestDestroyCtxIdempotent(t *testing.T) {
	loop := newTestLoop(t)
	engine := fake.NewEngine()
	d := newTestDriver(t, loop, engine)

	tr := fake.NewTransfer(7, 3, api.TransferOK)
	if err := engine.AddTransfer(tr); err != nil {
		t.Fatalf("AddTransfer: %v", err)
	}

	co := loop.Spawn(func(co api.Coroutine) {
		d.MultiPerform(engine)
	})
	loop.Wait(co)

	done := make(chan struct{})
	loop.Post(func() {
		d.DestroyCtx(engine)
		d.DestroyCtx(engine)
		close(done)
	})
	<-done

	// With the bridge gone, further kicks reach no callbacks.
	co2 := loop.Spawn(func(co api.Coroutine) {
		engine.SocketAction(api.SocketTimeout, 0)
	})
	loop.Wait(co2)
}

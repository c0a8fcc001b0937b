package netpoll

import (
	"testing"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

func TestPollToEventsMapping(t *testing.T) {
	cases := []struct {
		events int16
		want   api.EventBits
	}{
		{unix.POLLIN, api.EventReadable},
		{unix.POLLOUT, api.EventWritable},
		{unix.POLLHUP, api.EventDisconnect},
		{unix.POLLPRI, api.EventPrioritized},
		{unix.POLLERR, api.EventReadable},
		{unix.POLLNVAL, api.EventReadable},
		{unix.POLLIN | unix.POLLOUT, api.EventReadable | api.EventWritable},
		{0, 0},
	}
	for _, c := range cases {
		if got := pollToEvents(c.events); got != c.want {
			t.Errorf("pollToEvents(%#x) = %#x, want %#x", c.events, got, c.want)
		}
	}
}

func TestEventsToPollMapping(t *testing.T) {
	cases := []struct {
		bits api.EventBits
		want int16
	}{
		{api.EventReadable, unix.POLLIN},
		{api.EventWritable, unix.POLLOUT},
		{api.EventDisconnect, unix.POLLHUP},
		{api.EventPrioritized, unix.POLLPRI},
		{api.EventReadable | api.EventDisconnect, unix.POLLIN | unix.POLLHUP},
		{0, 0},
	}
	for _, c := range cases {
		if got := eventsToPoll(c.bits); got != c.want {
			t.Errorf("eventsToPoll(%#x) = %#x, want %#x", c.bits, got, c.want)
		}
	}
}

// Error and invalid-descriptor sentinels are requested as readable and
// never produced on the way back.
func TestErrNvalRoundTripCollapses(t *testing.T) {
	bits := pollToEvents(unix.POLLERR | unix.POLLNVAL)
	if bits != api.EventReadable {
		t.Fatalf("sentinel bits map to %#x, want EventReadable", bits)
	}
	if got := eventsToPoll(bits); got != unix.POLLIN {
		t.Fatalf("reverse mapping = %#x, want POLLIN", got)
	}
}

func TestMapFailureTaxonomy(t *testing.T) {
	log := zap.NewNop()
	if got := mapFailure(nil, log); got != unix.EINTR {
		t.Errorf("mapFailure(nil) = %v, want EINTR", got)
	}
	if got := mapFailure(&api.CanceledError{}, log); got != unix.ECANCELED {
		t.Errorf("mapFailure(canceled) = %v, want ECANCELED", got)
	}
	if got := mapFailure(&api.TimeoutError{}, log); got != unix.ETIMEDOUT {
		t.Errorf("mapFailure(timeout) = %v, want ETIMEDOUT", got)
	}
	if got := mapFailure(api.ErrNoWaker, log); got != unix.EINTR {
		t.Errorf("mapFailure(other) = %v, want EINTR", got)
	}
}

// File: netpoll/poll.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// poll(2) emulation over reactor events.

package netpoll

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// Poll waits for events on the given descriptors without blocking the
// reactor thread. The Revents field of each entry is updated to the
// events that occurred, following poll(2) semantics, and the number of
// entries with non-zero Revents is returned.
//
// timeoutMS < 0 waits indefinitely; 0 comes back on the next reactor
// tick, reporting zero when nothing is ready. On failure the call
// returns -1 and an errno value: EINVAL outside coroutine context,
// ENOMEM when the reactor refuses an event, ECANCELED or EINTR after
// suspension.
func (a *Adapter) Poll(fds []unix.PollFd, timeoutMS int) (int, error) {
	co := a.rt.Current()
	if co == nil {
		return -1, unix.EINVAL
	}

	var err error
	if timeoutMS < 0 {
		_, err = co.NewWaker()
	} else {
		_, err = co.NewWakerWithTimeout(time.Duration(timeoutMS) * time.Millisecond)
	}
	if err != nil {
		return -1, mapFailure(err, a.log)
	}

	// One readiness event and one record per entry. The record keeps a
	// pointer to its pollfd so the callback can write Revents in place.
	for i := range fds {
		fds[i].Revents = 0
		ev, cerr := a.rc.NewSocketEvent(int(fds[i].Fd), pollToEvents(fds[i].Events))
		if cerr != nil {
			co.DestroyWaker()
			return -1, unix.ENOMEM
		}

		cb := &pollCallback{co: co, ufd: &fds[i]}
		if rerr := co.ResumeWhen(ev, true, cb); rerr != nil {
			ev.Dispose()
			co.DestroyWaker()
			return -1, mapFailure(rerr, a.log)
		}
	}

	// The accumulator starts at zero before suspension so callbacks that
	// fire between registration and the park still contribute.
	co.Waker().SetResult(0)

	// Expiry of the call's own timeout is a normal poll outcome: the
	// accumulated count (usually zero) is returned, not an error.
	if serr := co.Suspend(); serr != nil && !api.IsTimeout(serr) {
		co.DestroyWaker()
		return -1, mapFailure(serr, a.log)
	}

	n, _ := co.Waker().Result().(int)
	co.DestroyWaker()
	return n, nil
}

// File: netpoll/select.go
// Package netpoll
// Author: momentics <momentics@gmail.com>
// License: Apache-2.0
//
// select(2) emulation over reactor events.

package netpoll

import (
	"time"

	"golang.org/x/sys/unix"

	"github.com/momentics/hioload-async/api"
)

// Select waits for readiness on descriptors [0, maxFD). Note the bound is
// exclusive: maxFD carries the nfds convention of select(2), the highest
// descriptor of interest plus one. Supplied sets are overwritten with the
// descriptors that reported ready; nil sets are not monitored and not
// written. tv nil waits indefinitely.
//
// Returns the number of ready descriptors, or -1 with an errno value on
// failure (same taxonomy as Poll).
func (a *Adapter) Select(maxFD int, rfds, wfds, efds *unix.FdSet, tv *unix.Timeval) (int, error) {
	co := a.rt.Current()
	if co == nil {
		return -1, unix.EINVAL
	}
	if maxFD < 0 {
		return -1, unix.EINVAL
	}

	// Scratch sets collect results so the caller's sets stay intact until
	// the call succeeds.
	var aread, awrite, aexcept unix.FdSet
	aread.Zero()
	awrite.Zero()
	aexcept.Zero()

	var err error
	if tv == nil {
		_, err = co.NewWaker()
	} else {
		timeout := time.Duration(tv.Sec)*time.Second + time.Duration(tv.Usec)*time.Microsecond
		_, err = co.NewWakerWithTimeout(timeout.Truncate(time.Millisecond))
	}
	if err != nil {
		return -1, mapFailure(err, a.log)
	}

	for fd := 0; fd < maxFD; fd++ {
		var bits api.EventBits

		if rfds != nil && rfds.IsSet(fd) {
			bits |= api.EventReadable
		}
		if wfds != nil && wfds.IsSet(fd) {
			bits |= api.EventWritable
		}
		if efds != nil && efds.IsSet(fd) {
			bits |= api.EventPrioritized
		}

		if bits == 0 {
			continue
		}

		ev, cerr := a.rc.NewFDEvent(fd, nil, bits)
		if cerr != nil {
			co.DestroyWaker()
			return -1, unix.ENOMEM
		}

		cb := &selectCallback{co: co, fd: fd, rfds: &aread, wfds: &awrite, efds: &aexcept}
		if rerr := co.ResumeWhen(ev, true, cb); rerr != nil {
			ev.Dispose()
			co.DestroyWaker()
			return -1, mapFailure(rerr, a.log)
		}
	}

	co.Waker().SetResult(0)

	// As in Poll, expiry of the call's own timeout returns the count.
	if serr := co.Suspend(); serr != nil && !api.IsTimeout(serr) {
		co.DestroyWaker()
		return -1, mapFailure(serr, a.log)
	}

	n, _ := co.Waker().Result().(int)
	co.DestroyWaker()

	if rfds != nil {
		*rfds = aread
	}
	if wfds != nil {
		*wfds = awrite
	}
	if efds != nil {
		*efds = aexcept
	}

	return n, nil
}

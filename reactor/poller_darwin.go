//go:build darwin

package reactor

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

const maxDirectFDsDarwin = 4096
const maxFDLimitDarwin = 100_000_000

type fdEntryDarwin struct {
	callback IOCallback
	events   IOEvents
	active   bool
}

// kqueuePoller implements poller using Darwin kqueue, grounded on
// eventloop/poller_darwin.go's fastPoller.
type kqueuePoller struct {
	kq       int
	mu       sync.RWMutex
	fds      []fdEntryDarwin
	eventBuf [256]unix.Kevent_t
	closed   atomic.Bool
}

func newPoller() poller { return &kqueuePoller{} }

func (p *kqueuePoller) Init() error {
	kq, err := unix.Kqueue()
	if err != nil {
		return err
	}
	unix.CloseOnExec(kq)
	p.kq = kq
	p.fds = make([]fdEntryDarwin, maxDirectFDsDarwin)
	return nil
}

func (p *kqueuePoller) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(p.kq)
}

func (p *kqueuePoller) changeList(fd int, events IOEvents, flag uint16) []unix.Kevent_t {
	var changes []unix.Kevent_t
	if events&EventRead != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_READ, Flags: flag})
	}
	if events&EventWrite != 0 {
		changes = append(changes, unix.Kevent_t{Ident: uint64(fd), Filter: unix.EVFILT_WRITE, Flags: flag})
	}
	return changes
}

func (p *kqueuePoller) RegisterFD(fd int, events IOEvents, cb IOCallback) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if fd < 0 || fd >= maxFDLimitDarwin {
		return ErrFDOutOfRange
	}

	p.mu.Lock()
	if fd >= len(p.fds) {
		grown := make([]fdEntryDarwin, fd*2+1)
		copy(grown, p.fds)
		p.fds = grown
	}
	if p.fds[fd].active {
		p.mu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntryDarwin{callback: cb, events: events, active: true}
	p.mu.Unlock()

	changes := p.changeList(fd, events, unix.EV_ADD|unix.EV_ENABLE)
	if len(changes) > 0 {
		if _, err := unix.Kevent(p.kq, changes, nil, nil); err != nil {
			p.mu.Lock()
			p.fds[fd] = fdEntryDarwin{}
			p.mu.Unlock()
			return err
		}
	}
	return nil
}

func (p *kqueuePoller) UnregisterFD(fd int) error {
	if fd < 0 {
		return ErrFDOutOfRange
	}
	p.mu.Lock()
	if fd >= len(p.fds) || !p.fds[fd].active {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	events := p.fds[fd].events
	p.fds[fd] = fdEntryDarwin{}
	p.mu.Unlock()

	changes := p.changeList(fd, events, unix.EV_DELETE)
	if len(changes) > 0 {
		_, _ = unix.Kevent(p.kq, changes, nil, nil)
	}
	return nil
}

func (p *kqueuePoller) ModifyFD(fd int, events IOEvents) error {
	if fd < 0 {
		return ErrFDOutOfRange
	}
	p.mu.RLock()
	if fd >= len(p.fds) || !p.fds[fd].active {
		p.mu.RUnlock()
		return ErrFDNotRegistered
	}
	cb := p.fds[fd].callback
	p.mu.RUnlock()
	if err := p.UnregisterFD(fd); err != nil {
		return err
	}
	return p.RegisterFD(fd, events, cb)
}

func (p *kqueuePoller) Poll(timeoutMs int) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	var ts *unix.Timespec
	if timeoutMs >= 0 {
		t := unix.NsecToTimespec(int64(timeoutMs) * 1_000_000)
		ts = &t
	}
	n, err := unix.Kevent(p.kq, nil, p.eventBuf[:], ts)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Ident)
		p.mu.RLock()
		var entry fdEntryDarwin
		if fd >= 0 && fd < len(p.fds) {
			entry = p.fds[fd]
		}
		p.mu.RUnlock()
		if !entry.active || entry.callback == nil {
			continue
		}
		var ev IOEvents
		switch p.eventBuf[i].Filter {
		case unix.EVFILT_READ:
			ev = EventRead
		case unix.EVFILT_WRITE:
			ev = EventWrite
		}
		if p.eventBuf[i].Flags&unix.EV_EOF != 0 {
			ev |= EventHangup
		}
		if p.eventBuf[i].Flags&unix.EV_ERROR != 0 {
			ev |= EventError
		}
		entry.callback(ev)
	}
	return n, nil
}

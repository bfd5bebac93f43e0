//go:build linux

package reactor

import (
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"
)

// maxDirectFDs is the initial capacity of the direct-indexed fd table;
// it grows on demand for larger descriptors.
const maxDirectFDs = 4096

// maxFDLimit bounds how large an fd we will track, as a sanity check
// against accidental huge allocations.
const maxFDLimit = 100_000_000

type fdEntry struct {
	callback IOCallback
	events   IOEvents
	active   bool
}

// epollPoller implements poller using Linux epoll, grounded on
// eventloop/poller_linux.go's FastPoller.
type epollPoller struct {
	epfd     int
	mu       sync.RWMutex
	fds      []fdEntry
	eventBuf [256]unix.EpollEvent
	closed   atomic.Bool
}

func newPoller() poller { return &epollPoller{} }

func (p *epollPoller) Init() error {
	fd, err := unix.EpollCreate1(unix.EPOLL_CLOEXEC)
	if err != nil {
		return err
	}
	p.epfd = fd
	p.fds = make([]fdEntry, maxDirectFDs)
	return nil
}

func (p *epollPoller) Close() error {
	if !p.closed.CompareAndSwap(false, true) {
		return nil
	}
	return unix.Close(p.epfd)
}

func (p *epollPoller) RegisterFD(fd int, events IOEvents, cb IOCallback) error {
	if p.closed.Load() {
		return ErrClosed
	}
	if fd < 0 || fd >= maxFDLimit {
		return ErrFDOutOfRange
	}

	p.mu.Lock()
	if fd >= len(p.fds) {
		grown := make([]fdEntry, fd*2+1)
		copy(grown, p.fds)
		p.fds = grown
	}
	if p.fds[fd].active {
		p.mu.Unlock()
		return ErrFDAlreadyRegistered
	}
	p.fds[fd] = fdEntry{callback: cb, events: events, active: true}
	p.mu.Unlock()

	ev := unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	if err := unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev); err != nil {
		p.mu.Lock()
		p.fds[fd] = fdEntry{}
		p.mu.Unlock()
		return err
	}
	return nil
}

func (p *epollPoller) UnregisterFD(fd int) error {
	if fd < 0 {
		return ErrFDOutOfRange
	}
	p.mu.Lock()
	if fd >= len(p.fds) || !p.fds[fd].active {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	p.fds[fd] = fdEntry{}
	p.mu.Unlock()
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

func (p *epollPoller) ModifyFD(fd int, events IOEvents) error {
	if fd < 0 {
		return ErrFDOutOfRange
	}
	p.mu.Lock()
	if fd >= len(p.fds) || !p.fds[fd].active {
		p.mu.Unlock()
		return ErrFDNotRegistered
	}
	p.fds[fd].events = events
	p.mu.Unlock()
	ev := unix.EpollEvent{Events: toEpoll(events), Fd: int32(fd)}
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

func (p *epollPoller) Poll(timeoutMs int) (int, error) {
	if p.closed.Load() {
		return 0, ErrClosed
	}
	n, err := unix.EpollWait(p.epfd, p.eventBuf[:], timeoutMs)
	if err != nil {
		if err == unix.EINTR {
			return 0, nil
		}
		return 0, err
	}
	for i := 0; i < n; i++ {
		fd := int(p.eventBuf[i].Fd)
		p.mu.RLock()
		var entry fdEntry
		if fd >= 0 && fd < len(p.fds) {
			entry = p.fds[fd]
		}
		p.mu.RUnlock()
		if entry.active && entry.callback != nil {
			entry.callback(fromEpoll(p.eventBuf[i].Events))
		}
	}
	return n, nil
}

func toEpoll(events IOEvents) uint32 {
	var e uint32
	if events&EventRead != 0 {
		e |= unix.EPOLLIN
	}
	if events&EventWrite != 0 {
		e |= unix.EPOLLOUT
	}
	return e
}

func fromEpoll(e uint32) IOEvents {
	var events IOEvents
	if e&unix.EPOLLIN != 0 {
		events |= EventRead
	}
	if e&unix.EPOLLOUT != 0 {
		events |= EventWrite
	}
	if e&unix.EPOLLERR != 0 {
		events |= EventError
	}
	if e&unix.EPOLLHUP != 0 {
		events |= EventHangup
	}
	return events
}

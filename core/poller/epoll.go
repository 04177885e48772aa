//go:build linux
// +build linux

package poller

import (
	"golang.org/x/sys/unix"
)

// EpollPoller is an epoll-based I/O multiplexer
type EpollPoller struct {
	epfd   int
	events []unix.EpollEvent
}

// NewPoller creates a new Poller (Linux)
func NewPoller() (Poller, error) {
	epfd, err := unix.EpollCreate1(0)
	if err != nil {
		return nil, err
	}

	return &EpollPoller{
		epfd:   epfd,
		events: make([]unix.EpollEvent, 1024),
	}, nil
}

// Add registers a file descriptor in edge-triggered mode. Used for the
// listening socket, which stays armed for its whole lifetime.
func (p *EpollPoller) Add(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET,
		Fd:     int32(fd),
	}

	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// AddOneShot registers a client descriptor in edge-triggered, one-shot
// mode. The kernel disarms the fd after one delivered event; Rearm
// re-enables it.
func (p *EpollPoller) AddOneShot(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET | unix.EPOLLONESHOT,
		Fd:     int32(fd),
	}

	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_ADD, fd, &ev)
}

// Rearm re-enables a one-shot descriptor after its event was consumed
func (p *EpollPoller) Rearm(fd int) error {
	ev := unix.EpollEvent{
		Events: unix.EPOLLIN | unix.EPOLLET | unix.EPOLLONESHOT,
		Fd:     int32(fd),
	}

	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_MOD, fd, &ev)
}

// Remove removes a file descriptor from the watch list
func (p *EpollPoller) Remove(fd int) error {
	return unix.EpollCtl(p.epfd, unix.EPOLL_CTL_DEL, fd, nil)
}

// Wait waits for I/O events
func (p *EpollPoller) Wait(timeout int) ([]int, error) {
	n, err := unix.EpollWait(p.epfd, p.events, timeout)
	if err != nil && err != unix.EINTR {
		return nil, err
	}

	if n <= 0 {
		return nil, nil
	}

	fds := make([]int, 0, n)
	for i := 0; i < n; i++ {
		fds = append(fds, int(p.events[i].Fd))
	}

	return fds, nil
}

// Close closes the Poller
func (p *EpollPoller) Close() error {
	return unix.Close(p.epfd)
}

//go:build darwin || freebsd || netbsd || openbsd
// +build darwin freebsd netbsd openbsd

package poller

import (
	"golang.org/x/sys/unix"
)

// KqueuePoller is a kqueue-based I/O multiplexer
type KqueuePoller struct {
	kqfd   int
	events []unix.Kevent_t
}

// NewPoller creates a new Poller (BSD/macOS)
func NewPoller() (Poller, error) {
	kqfd, err := unix.Kqueue()
	if err != nil {
		return nil, err
	}

	return &KqueuePoller{
		kqfd:   kqfd,
		events: make([]unix.Kevent_t, 1024),
	}, nil
}

// Add registers a file descriptor in edge-triggered mode (EV_CLEAR)
func (p *KqueuePoller) Add(fd int) error {
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ENABLE | unix.EV_CLEAR,
	}

	_, err := unix.Kevent(p.kqfd, []unix.Kevent_t{ev}, nil, nil)
	return err
}

// AddOneShot registers a client descriptor in edge-triggered, one-shot mode
func (p *KqueuePoller) AddOneShot(fd int) error {
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_ADD | unix.EV_ENABLE | unix.EV_CLEAR | unix.EV_ONESHOT,
	}

	_, err := unix.Kevent(p.kqfd, []unix.Kevent_t{ev}, nil, nil)
	return err
}

// Rearm re-enables a one-shot descriptor. With kqueue a one-shot event is
// deleted on delivery, so re-arming is the same EV_ADD as registration.
func (p *KqueuePoller) Rearm(fd int) error {
	return p.AddOneShot(fd)
}

// Remove removes a file descriptor from the watch list
func (p *KqueuePoller) Remove(fd int) error {
	ev := unix.Kevent_t{
		Ident:  uint64(fd),
		Filter: unix.EVFILT_READ,
		Flags:  unix.EV_DELETE,
	}

	_, err := unix.Kevent(p.kqfd, []unix.Kevent_t{ev}, nil, nil)
	return err
}

// Wait waits for I/O events
func (p *KqueuePoller) Wait(timeout int) ([]int, error) {
	var ts *unix.Timespec
	if timeout >= 0 {
		ts = &unix.Timespec{
			Sec:  int64(timeout / 1000),
			Nsec: int64((timeout % 1000) * 1000000),
		}
	}

	n, err := unix.Kevent(p.kqfd, nil, p.events, ts)
	if err != nil && err != unix.EINTR {
		return nil, err
	}

	if n <= 0 {
		return nil, nil
	}

	fds := make([]int, 0, n)
	for i := 0; i < n; i++ {
		fds = append(fds, int(p.events[i].Ident))
	}

	return fds, nil
}

// Close closes the Poller
func (p *KqueuePoller) Close() error {
	return unix.Close(p.kqfd)
}

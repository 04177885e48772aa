package core

import (
	"testing"

	"golang.org/x/sys/unix"
)

func newTestConn(t *testing.T) (*Conn, int) {
	t.Helper()

	fds, err := unix.Socketpair(unix.AF_UNIX, unix.SOCK_STREAM, 0)
	if err != nil {
		t.Fatalf("socketpair failed: %v", err)
	}
	t.Cleanup(func() { unix.Close(fds[1]) })

	c := &Conn{fd: -1}
	sa := &unix.SockaddrInet4{Port: 4242, Addr: [4]byte{127, 0, 0, 1}}
	c.attach(fds[0], sa, make([]byte, recvBufferSize))
	return c, fds[1]
}

func TestConn_Attach(t *testing.T) {
	c, _ := newTestConn(t)
	defer c.Close()

	if c.Peer() != "127.0.0.1:4242" {
		t.Errorf("unexpected peer %q", c.Peer())
	}
	if len(c.buf) != recvBufferSize {
		t.Errorf("expected %d byte buffer, got %d", recvBufferSize, len(c.buf))
	}
	if c.bytesRead != 0 || c.keepAlive {
		t.Error("fresh connection carries stale state")
	}
}

func TestConn_ResetKeepsBuffer(t *testing.T) {
	c, _ := newTestConn(t)
	defer c.Close()

	c.bytesRead = 100
	c.keepAlive = true
	c.reset()

	if c.bytesRead != 0 || c.keepAlive {
		t.Error("reset did not clear parsing state")
	}
	if c.buf == nil {
		t.Error("reset must keep the receive buffer")
	}
}

func TestConn_CloseIdempotent(t *testing.T) {
	c, peer := newTestConn(t)

	c.Close()
	if c.fd != -1 {
		t.Errorf("fd not marked closed: %d", c.fd)
	}

	// The peer observes the close
	buf := make([]byte, 1)
	if n, _ := unix.Read(peer, buf); n != 0 {
		t.Errorf("expected EOF on peer, read %d bytes", n)
	}

	// A second close must not touch the (possibly reused) descriptor
	c.Close()
}

func TestConn_PoolReset(t *testing.T) {
	c, _ := newTestConn(t)
	c.Close()

	buf := c.detachBuffer()
	if buf == nil {
		t.Fatal("detach returned no buffer")
	}
	if c.buf != nil {
		t.Error("buffer still attached after detach")
	}

	c.Reset()
	if c.fd != -1 || c.peer != "" || c.bytesRead != 0 || c.keepAlive {
		t.Error("pool reset left state behind")
	}
}

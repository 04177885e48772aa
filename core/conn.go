package core

import (
	"net"
	"strconv"

	"golang.org/x/sys/unix"
)

// Conn holds the per-client state the reactor and workers share: the owned
// socket descriptor, the peer address, the receive buffer and its fill
// level, and the keep-alive decision of the last parsed request.
//
// The final byte of buf is reserved as a scan sentinel, so at most
// len(buf)-1 bytes are ever buffered.
type Conn struct {
	fd        int
	peer      string
	buf       []byte
	bytesRead int
	keepAlive bool
}

// attach binds a freshly accepted descriptor and its receive buffer to a
// (possibly recycled) connection record.
func (c *Conn) attach(fd int, sa unix.Sockaddr, buf []byte) {
	c.fd = fd
	c.peer = formatSockaddr(sa)
	c.buf = buf
	c.bytesRead = 0
	c.keepAlive = false
}

// reset clears parsing state between keep-alive requests; the buffer is
// kept, its contents are logically discarded.
func (c *Conn) reset() {
	c.bytesRead = 0
	c.keepAlive = false
}

// detachBuffer hands the receive buffer back to the caller for pooling
func (c *Conn) detachBuffer() []byte {
	buf := c.buf
	c.buf = nil
	return buf
}

// Close releases the owned descriptor. Safe to call again once the fd has
// been closed or transferred out.
func (c *Conn) Close() {
	if c.fd >= 0 {
		unix.Close(c.fd)
		c.fd = -1
	}
}

// Peer returns the remote address the connection was accepted from
func (c *Conn) Peer() string {
	return c.peer
}

// Reset implements pools.Resettable so records recycle cleanly
func (c *Conn) Reset() {
	c.fd = -1
	c.peer = ""
	c.buf = nil
	c.bytesRead = 0
	c.keepAlive = false
}

func formatSockaddr(sa unix.Sockaddr) string {
	switch a := sa.(type) {
	case *unix.SockaddrInet4:
		return net.IP(a.Addr[:]).String() + ":" + strconv.Itoa(a.Port)
	case *unix.SockaddrInet6:
		return "[" + net.IP(a.Addr[:]).String() + "]:" + strconv.Itoa(a.Port)
	}
	return "unknown"
}

package core

import (
	"bytes"
	"fmt"
	"log"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sys/unix"

	"github.com/searchktools/c10k-server/core/http"
	"github.com/searchktools/c10k-server/core/poller"
	"github.com/searchktools/c10k-server/core/pools"
)

// Handler is the application seam: a pure function from a decoded request
// to a response body. A nil or empty body means "no route", which the
// server surfaces as 404 for GET and 400 otherwise.
type Handler func(req *http.Request) []byte

const (
	// DefaultMaxConnections bounds the registry; accepts beyond it are
	// rejected by closing the new descriptor.
	DefaultMaxConnections = 10000

	// DefaultBacklog is sized for accept storms in the C10k regime
	DefaultBacklog = 4096

	// recvBufferSize is the per-connection receive buffer. One byte is
	// reserved as a sentinel, so the largest accepted head is
	// recvBufferSize-1 bytes including the CRLF CRLF terminator.
	recvBufferSize = 8192

	// pollInterval bounds the reactor's wait so a cleared running flag
	// stops the server without a dedicated wakeup descriptor.
	pollInterval = 100 // milliseconds
)

var headTerminator = []byte("\r\n\r\n")

// Canned bodies for the error statuses. The method-mismatch case keeps the
// historical contract: a 405 page delivered with status 400.
var (
	badRequestPage       = []byte("<html><body><h1>400 Bad Request</h1><p>The HTTP request is invalid.</p></body></html>")
	notFoundPage         = []byte("<html><body><h1>404 Not Found</h1><p>The requested resource does not exist.</p></body></html>")
	methodNotAllowedPage = []byte("<html><body><h1>405 Method Not Allowed</h1><p>The HTTP method is not supported.</p></body></html>")
	internalErrorPage    = []byte("<html><body><h1>500 Internal Server Error</h1><p>An internal error occurred.</p></body></html>")
)

// Options configures a Server
type Options struct {
	// Port to bind; 0 lets the kernel pick one (useful in tests)
	Port int

	// Workers is the worker pool size; 0 means one per CPU
	Workers int

	// MaxConnections caps the registry size; 0 means DefaultMaxConnections
	MaxConnections int

	// Backlog for the listening socket; 0 means DefaultBacklog
	Backlog int
}

// Server is the event-driven HTTP/1.1 core: one reactor goroutine blocked
// on the poller, a registry of live connections, and a fixed worker pool
// that does all reading, parsing and writing.
//
// Client descriptors are armed one-shot, so the poller never reports an fd
// again until the worker that owns its current event re-arms it. That is
// the only per-connection serialization in the design.
type Server struct {
	opts    Options
	handler Handler

	listenFD int
	port     int
	poller   poller.Poller

	connections map[int]*Conn
	connMu      sync.Mutex

	workers  *pools.WorkerPool
	bytePool *pools.BytePool
	connPool *pools.ConnectionPool

	running  atomic.Bool
	loopDone chan struct{}

	stats serverCounters
}

// NewServer creates a server with the given options and application seam.
// A nil handler treats every request as "no route".
func NewServer(opts Options, handler Handler) *Server {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.MaxConnections <= 0 {
		opts.MaxConnections = DefaultMaxConnections
	}
	if opts.Backlog <= 0 {
		opts.Backlog = DefaultBacklog
	}
	if handler == nil {
		handler = func(*http.Request) []byte { return nil }
	}

	pools.OptimizeForHighThroughput()

	s := &Server{
		opts:        opts,
		handler:     handler,
		listenFD:    -1,
		connections: make(map[int]*Conn, opts.MaxConnections),
		workers:     pools.NewWorkerPool(opts.Workers),
		bytePool:    pools.NewBytePool(),
	}
	s.connPool = pools.NewConnectionPool(func() any {
		return &Conn{fd: -1}
	})

	return s
}

// Start binds the listening socket, creates the poller and launches the
// reactor goroutine. Any failure aborts startup and releases what was
// already set up.
func (s *Server) Start() error {
	if s.running.Load() {
		return nil
	}

	lfd, port, err := s.setupListener()
	if err != nil {
		return err
	}

	p, err := poller.NewPoller()
	if err != nil {
		unix.Close(lfd)
		return fmt.Errorf("poller setup failed: %w", err)
	}

	if err := p.Add(lfd); err != nil {
		p.Close()
		unix.Close(lfd)
		return fmt.Errorf("registering listener failed: %w", err)
	}

	s.listenFD = lfd
	s.port = port
	s.poller = p
	s.loopDone = make(chan struct{})
	s.running.Store(true)

	go s.eventLoop()

	log.Printf("🚀 HTTP server listening on port %d (%d workers, %d max connections)",
		port, s.opts.Workers, s.opts.MaxConnections)

	return nil
}

// setupListener creates the non-blocking listening socket with address and
// port reuse enabled.
func (s *Server) setupListener() (int, int, error) {
	fd, err := unix.Socket(unix.AF_INET, unix.SOCK_STREAM, 0)
	if err != nil {
		return -1, 0, fmt.Errorf("socket creation failed: %w", err)
	}

	if err := unix.SetNonblock(fd, true); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("setting nonblocking failed: %w", err)
	}

	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEADDR, 1); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("SO_REUSEADDR failed: %w", err)
	}
	if err := unix.SetsockoptInt(fd, unix.SOL_SOCKET, unix.SO_REUSEPORT, 1); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("SO_REUSEPORT failed: %w", err)
	}

	if err := unix.Bind(fd, &unix.SockaddrInet4{Port: s.opts.Port}); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("bind to port %d failed: %w", s.opts.Port, err)
	}

	if err := unix.Listen(fd, s.opts.Backlog); err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("listen failed: %w", err)
	}

	sa, err := unix.Getsockname(fd)
	if err != nil {
		unix.Close(fd)
		return -1, 0, fmt.Errorf("getsockname failed: %w", err)
	}
	port := s.opts.Port
	if in4, ok := sa.(*unix.SockaddrInet4); ok {
		port = in4.Port
	}

	return fd, port, nil
}

// Port returns the bound port once Start has succeeded
func (s *Server) Port() int {
	return s.port
}

// Addr returns the dialable address of the server
func (s *Server) Addr() string {
	return fmt.Sprintf("127.0.0.1:%d", s.port)
}

// eventLoop is the reactor: it blocks on the poller and dispatches
// readiness events until the running flag is cleared.
func (s *Server) eventLoop() {
	defer close(s.loopDone)

	for s.running.Load() {
		fds, err := s.poller.Wait(pollInterval)
		if err != nil {
			log.Printf("poller wait error: %v", err)
			continue
		}

		for _, fd := range fds {
			if fd == s.listenFD {
				s.acceptConnections()
			} else {
				fd := fd
				// The fd is not re-armed here; the worker that consumes
				// this event re-arms it, so no two workers ever touch the
				// same connection concurrently.
				s.workers.Submit(func() { s.readTask(fd) })
			}
		}
	}
}

// acceptConnections drains the listening socket (edge-triggered) and
// registers each new client one-shot.
func (s *Server) acceptConnections() {
	for {
		nfd, sa, err := unix.Accept(s.listenFD)
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
				return
			}
			if err == unix.EINTR {
				continue
			}
			log.Printf("accept error: %v", err)
			return
		}

		if err := unix.SetNonblock(nfd, true); err != nil {
			unix.Close(nfd)
			continue
		}

		unix.SetsockoptInt(nfd, unix.IPPROTO_TCP, unix.TCP_NODELAY, 1)
		unix.SetsockoptInt(nfd, unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1)

		s.connMu.Lock()
		if len(s.connections) >= s.opts.MaxConnections {
			s.connMu.Unlock()
			s.stats.rejected.Add(1)
			unix.Close(nfd)
			continue
		}

		conn := s.connPool.Get().(*Conn)
		conn.attach(nfd, sa, s.bytePool.Get(recvBufferSize))
		s.connections[nfd] = conn
		s.connMu.Unlock()

		if err := s.poller.AddOneShot(nfd); err != nil {
			log.Printf("registering client fd %d failed: %v", nfd, err)
			s.closeConnection(nfd)
			continue
		}

		s.stats.accepted.Add(1)
	}
}

// readTask runs on a worker: read what the socket has, look for a complete
// head, and either process it, re-arm for more input, or close.
func (s *Server) readTask(fd int) {
	s.connMu.Lock()
	conn, ok := s.connections[fd]
	s.connMu.Unlock()
	if !ok {
		return
	}

	// One byte stays reserved at the end of the buffer
	var n int
	var err error
	for {
		n, err = unix.Read(fd, conn.buf[conn.bytesRead:len(conn.buf)-1])
		if err != unix.EINTR {
			break
		}
	}

	if err != nil {
		if err == unix.EAGAIN || err == unix.EWOULDBLOCK {
			s.rearmOrClose(fd)
			return
		}
		s.closeConnection(fd)
		return
	}

	if n == 0 {
		// Peer closed
		s.closeConnection(fd)
		return
	}

	conn.bytesRead += n

	head := conn.buf[:conn.bytesRead]
	if idx := bytes.Index(head, headTerminator); idx != -1 {
		s.processRequest(fd, conn, head[:idx+len(headTerminator)])
		return
	}

	if conn.bytesRead >= len(conn.buf)-1 {
		// Buffer exhausted without a head terminator
		s.closeConnection(fd)
		return
	}

	s.rearmOrClose(fd)
}

// processRequest decodes one complete head, runs the application seam and
// writes the response, then decides the connection's fate.
func (s *Server) processRequest(fd int, conn *Conn, head []byte) {
	req, err := http.ParseRequest(head)
	if err != nil {
		s.stats.parseFailures.Add(1)
		s.sendResponse(fd, http.BuildResponse(http.StatusBadRequest, badRequestPage, false))
		s.closeConnection(fd)
		return
	}
	defer http.ReleaseRequest(req)

	body, panicked := s.invokeHandler(req)
	if panicked {
		s.sendResponse(fd, http.BuildResponse(http.StatusInternalError, internalErrorPage, false))
		s.closeConnection(fd)
		return
	}

	status := http.StatusOK
	keepAlive := req.KeepAlive
	switch {
	case len(body) == 0 && req.Method == "GET":
		status = http.StatusNotFound
		body = notFoundPage
	case len(body) == 0:
		// Unsupported method: the page says 405, the status stays 400,
		// and a request the server refused does not keep its connection.
		status = http.StatusBadRequest
		body = methodNotAllowedPage
		keepAlive = false
	}

	if err := s.sendResponse(fd, http.BuildResponse(status, body, keepAlive)); err != nil {
		s.closeConnection(fd)
		return
	}

	s.stats.served.Add(1)

	s.connMu.Lock()
	cur, ok := s.connections[fd]
	if !ok || cur != conn {
		s.connMu.Unlock()
		return
	}
	if keepAlive {
		cur.keepAlive = true
		cur.reset()
		s.connMu.Unlock()
		s.rearmOrClose(fd)
		return
	}
	s.connMu.Unlock()
	s.closeConnection(fd)
}

// invokeHandler shields the server from a panicking application seam
func (s *Server) invokeHandler(req *http.Request) (body []byte, panicked bool) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("handler panic on %s %s: %v", req.Method, req.Path, r)
			body = nil
			panicked = true
		}
	}()

	return s.handler(req), false
}

// sendResponse writes the whole response. EAGAIN is busy-retried: bodies
// are single pages, small enough for the kernel send buffer to absorb.
func (s *Server) sendResponse(fd int, data []byte) error {
	sent := 0
	for sent < len(data) {
		n, err := unix.Write(fd, data[sent:])
		if err != nil {
			if err == unix.EAGAIN || err == unix.EWOULDBLOCK || err == unix.EINTR {
				continue
			}
			return err
		}
		sent += n
	}
	return nil
}

// rearmOrClose re-arms the one-shot registration; a failed re-arm leaves
// the fd deaf, so the connection is closed instead.
func (s *Server) rearmOrClose(fd int) {
	if err := s.poller.Rearm(fd); err != nil {
		s.closeConnection(fd)
	}
}

// closeConnection deregisters and destroys a connection. Calling it for an
// fd that is already gone is a no-op, so racing closers are harmless.
func (s *Server) closeConnection(fd int) {
	s.connMu.Lock()
	conn, ok := s.connections[fd]
	if ok {
		delete(s.connections, fd)
		// The fd may already be invalid; deregistration errors are expected
		s.poller.Remove(fd)
	}
	s.connMu.Unlock()

	if !ok {
		return
	}

	buf := conn.detachBuffer()
	conn.Close()
	if buf != nil {
		s.bytePool.Put(buf)
	}
	s.connPool.Put(conn)
}

// ConnectionCount returns the current registry size
func (s *Server) ConnectionCount() int {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return len(s.connections)
}

// Stop shuts the server down: the reactor exits within one poll interval,
// every registered fd is closed, the worker pool drains and joins, and the
// poller and listener are released. Safe to call more than once.
func (s *Server) Stop() {
	if !s.running.CompareAndSwap(true, false) {
		return
	}

	<-s.loopDone

	// Close every registered fd first: a worker wedged in the send retry
	// loop (or a pending read) only gets out when its descriptor dies, and
	// the pool join below would otherwise wait on it forever.
	s.connMu.Lock()
	fds := make([]int, 0, len(s.connections))
	for fd := range s.connections {
		fds = append(fds, fd)
	}
	s.connMu.Unlock()

	for _, fd := range fds {
		s.closeConnection(fd)
	}

	s.workers.Shutdown()
	s.poller.Close()
	unix.Close(s.listenFD)
	s.listenFD = -1

	log.Printf("server stopped (%d requests served)", s.stats.served.Load())
}

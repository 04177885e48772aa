package pools

import (
	"sync"
	"sync/atomic"
)

// Resettable is implemented by pooled objects that clear their own state
type Resettable interface {
	Reset()
}

// ConnectionPool recycles connection records between clients so a busy
// accept loop does not allocate per connection.
type ConnectionPool struct {
	pool sync.Pool
	gets atomic.Uint64
	puts atomic.Uint64
}

// NewConnectionPool creates a new connection pool
func NewConnectionPool(newFunc func() any) *ConnectionPool {
	cp := &ConnectionPool{}
	cp.pool.New = newFunc
	return cp
}

// Get retrieves a connection record from the pool
func (cp *ConnectionPool) Get() any {
	cp.gets.Add(1)
	return cp.pool.Get()
}

// Put resets a connection record and returns it to the pool
func (cp *ConnectionPool) Put(obj any) {
	if r, ok := obj.(Resettable); ok {
		r.Reset()
	}
	cp.puts.Add(1)
	cp.pool.Put(obj)
}

// Stats returns pool counters
func (cp *ConnectionPool) Stats() (gets, puts uint64) {
	return cp.gets.Load(), cp.puts.Load()
}

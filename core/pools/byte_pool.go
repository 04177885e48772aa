package pools

import "sync"

// BytePool is a multi-tiered byte slice pool for different size classes
type BytePool struct {
	pools []*sync.Pool
	sizes []int
}

// Size tiers for HTTP workloads: the server's receive buffers live in the
// 8K tier; responses are built outside the pool.
var defaultSizes = []int{
	2048,
	8192,
	32768,
}

// NewBytePool creates a new byte pool with standard size tiers
func NewBytePool() *BytePool {
	bp := &BytePool{
		pools: make([]*sync.Pool, len(defaultSizes)),
		sizes: defaultSizes,
	}

	for i, size := range defaultSizes {
		sz := size
		bp.pools[i] = &sync.Pool{
			New: func() any {
				buf := make([]byte, sz)
				return &buf
			},
		}
	}

	return bp
}

// Get returns a byte slice of at least the requested size
func (bp *BytePool) Get(size int) []byte {
	for i, poolSize := range bp.sizes {
		if size <= poolSize {
			bufPtr := bp.pools[i].Get().(*[]byte)
			return (*bufPtr)[:size]
		}
	}

	// Size too large for any tier, allocate directly
	return make([]byte, size)
}

// Put returns a byte slice to its tier. Slices whose capacity matches no
// tier are left to the GC.
func (bp *BytePool) Put(buf []byte) {
	capacity := cap(buf)

	for i, poolSize := range bp.sizes {
		if capacity == poolSize {
			buf = buf[:capacity]
			bp.pools[i].Put(&buf)
			return
		}
	}
}

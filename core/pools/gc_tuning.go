package pools

import (
	"runtime/debug"
)

// GCConfig holds GC tuning parameters
type GCConfig struct {
	// GOGC sets the garbage collection target percentage (default 100)
	GOGC int

	// MemoryLimit sets a soft memory limit in bytes; 0 means no limit
	MemoryLimit int64
}

// ApplyGCConfig applies GC tuning to reduce GC pressure
func ApplyGCConfig(cfg GCConfig) {
	if cfg.GOGC > 0 {
		debug.SetGCPercent(cfg.GOGC)
	}

	if cfg.MemoryLimit > 0 {
		debug.SetMemoryLimit(cfg.MemoryLimit)
	}
}

// OptimizeForHighThroughput trades heap headroom for fewer GC cycles. The
// serving path allocates little (pooled buffers, pooled requests), so a
// high GOGC mostly defers collection of transient response slices.
func OptimizeForHighThroughput() {
	ApplyGCConfig(GCConfig{
		GOGC: 300,
	})
}

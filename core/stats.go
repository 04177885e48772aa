package core

import (
	"fmt"
	"sync/atomic"

	"github.com/searchktools/c10k-server/core/pools"
)

// serverCounters are touched on the hot path, so they stay atomic and
// unaggregated; Stats assembles a snapshot on demand.
type serverCounters struct {
	accepted      atomic.Uint64
	rejected      atomic.Uint64
	served        atomic.Uint64
	parseFailures atomic.Uint64
}

// ServerStats is a point-in-time snapshot of server activity
type ServerStats struct {
	ActiveConnections  int                   `json:"active_connections"`
	AcceptedTotal      uint64                `json:"accepted_total"`
	RejectedAtCapacity uint64                `json:"rejected_at_capacity"`
	RequestsServed     uint64                `json:"requests_served"`
	ParseFailures      uint64                `json:"parse_failures"`
	WorkerPool         pools.WorkerPoolStats `json:"worker_pool"`
}

// Stats returns a snapshot of server activity
func (s *Server) Stats() ServerStats {
	return ServerStats{
		ActiveConnections:  s.ConnectionCount(),
		AcceptedTotal:      s.stats.accepted.Load(),
		RejectedAtCapacity: s.stats.rejected.Load(),
		RequestsServed:     s.stats.served.Load(),
		ParseFailures:      s.stats.parseFailures.Load(),
		WorkerPool:         s.workers.Stats(),
	}
}

// Text renders the snapshot for log output
func (st ServerStats) Text() string {
	return fmt.Sprintf(
		"connections: %d active, %d accepted, %d rejected | requests: %d served, %d parse failures | workers: %d (%d pending, %d dropped)",
		st.ActiveConnections, st.AcceptedTotal, st.RejectedAtCapacity,
		st.RequestsServed, st.ParseFailures,
		st.WorkerPool.NumWorkers, st.WorkerPool.TasksPending, st.WorkerPool.TasksDropped,
	)
}

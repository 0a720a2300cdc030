// Package lifecycle holds process-wide drain state shared by the health endpoint and main.
package lifecycle

import (
	"sync/atomic"
	"time"
)

var (
	shuttingDown atomic.Bool
	drainStarted atomic.Int64 // unix nanos; 0 when not draining
)

// SetShuttingDown sets the shutdown flag. Call when SIGTERM/SIGINT is received.
// /health answers 503 shutting-down while true.
func SetShuttingDown(v bool) {
	if v {
		drainStarted.CompareAndSwap(0, time.Now().UnixNano())
	} else {
		drainStarted.Store(0)
	}
	shuttingDown.Store(v)
}

// IsShuttingDown reports whether the process is draining.
func IsShuttingDown() bool {
	return shuttingDown.Load()
}

// DrainingFor returns how long the process has been draining, or 0 when it is not.
func DrainingFor() time.Duration {
	started := drainStarted.Load()
	if started == 0 || !IsShuttingDown() {
		return 0
	}
	return time.Since(time.Unix(0, started))
}

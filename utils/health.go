package utils

import (
	"context"
	"sync"
	"time"
)

// Pinger is anything whose liveness can be checked.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PingFunc adapts a function to Pinger.
type PingFunc func(ctx context.Context) error

func (f PingFunc) Ping(ctx context.Context) error { return f(ctx) }

// HealthStatus represents current status of external services.
type HealthStatus struct {
	Services  map[string]bool `json:"services"`
	CheckedAt time.Time       `json:"checkedAt"`
}

// HealthMonitor periodically pings dependencies and keeps the last snapshot.
type HealthMonitor struct {
	mu      sync.RWMutex
	current HealthStatus
	targets map[string]Pinger
}

func NewHealthMonitor(targets map[string]Pinger) *HealthMonitor {
	return &HealthMonitor{targets: targets}
}

// Status returns latest stored health snapshot.
func (h *HealthMonitor) Status() HealthStatus {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.current
}

// Check pings every target once and stores the result.
func (h *HealthMonitor) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{Services: make(map[string]bool, len(h.targets)), CheckedAt: time.Now()}
	for name, p := range h.targets {
		pctx, cancel := context.WithTimeout(ctx, 2*time.Second)
		status.Services[name] = p.Ping(pctx) == nil
		cancel()
	}
	h.mu.Lock()
	h.current = status
	h.mu.Unlock()
	return status
}

// Start runs Check every interval until ctx is done.
func (h *HealthMonitor) Start(ctx context.Context, interval time.Duration) {
	h.Check(ctx)
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.Check(ctx)
			}
		}
	}()
}

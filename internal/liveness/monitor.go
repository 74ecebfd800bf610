/*
Package liveness periodically probes the aggregator's configured publish
sinks for reachability and republishes the result into pkg/metrics, the
same Checker-drives-Status loop pkg/health's doc comment describes, generalized
from per-container probing to per-sink probing.
*/
package liveness

import (
	"context"
	"time"

	"github.com/cuemby/ray-aggregator/pkg/health"
	"github.com/cuemby/ray-aggregator/pkg/log"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

// target pairs a named sink with the checker that probes it.
type target struct {
	name    string
	checker health.Checker
	status  *health.Status
}

// Monitor runs one health.Checker per configured sink on a fixed interval
// and feeds the results into pkg/metrics as named components.
type Monitor struct {
	interval time.Duration
	timeout  time.Duration
	targets  []*target
}

// New builds a Monitor. httpAddr/controlPlaneAddr are the configured sink
// addresses; either may be empty, in which case that target is skipped.
func New(interval, timeout time.Duration, httpAddr, controlPlaneAddr string) *Monitor {
	m := &Monitor{interval: interval, timeout: timeout}

	if httpAddr != "" {
		m.targets = append(m.targets, &target{
			name:    "http_sink",
			checker: health.NewHTTPChecker(httpAddr),
			status:  health.NewStatus(),
		})
	}
	if controlPlaneAddr != "" {
		m.targets = append(m.targets, &target{
			name:    "control_plane_sink",
			checker: health.NewTCPChecker(controlPlaneAddr),
			status:  health.NewStatus(),
		})
	}

	return m
}

// Run blocks, probing every target on Monitor's interval until ctx is
// canceled. Call it from its own goroutine.
func (m *Monitor) Run(ctx context.Context) {
	if len(m.targets) == 0 {
		<-ctx.Done()
		return
	}

	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	m.probeAll(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			m.probeAll(ctx)
		}
	}
}

func (m *Monitor) probeAll(ctx context.Context) {
	cfg := health.Config{Retries: 3}
	for _, t := range m.targets {
		checkCtx, cancel := context.WithTimeout(ctx, m.timeout)
		result := t.checker.Check(checkCtx)
		cancel()

		t.status.Update(result, cfg)
		metrics.UpdateComponent(t.name, t.status.Healthy, result.Message)
		if !t.status.Healthy {
			log.WithSink(t.name).Warn().Str("message", result.Message).Msg("sink unreachable")
		}
	}
}

/*
Package health provides pluggable reachability checks for the aggregator's
downstream sinks.

Unlike a container orchestrator, the aggregator has no workload of its own
to probe: its only external dependencies are the HTTP collector and the
control-plane gRPC endpoint configured as publish sinks. The same Checker
abstraction still applies, generalized from per-container liveness probes
to per-sink reachability probes.

	type Checker interface {
		Check(ctx context.Context) Result
		Type() CheckType
	}

HTTPChecker and TCPChecker cover the two sink transports in use
(events_export_addr is plain HTTP, control_plane_addr is TCP/gRPC).
Status implements the same hysteresis as the original: a sink only flips
to unhealthy after Config.Retries consecutive failures, and back to
healthy on the first success, so a single dropped probe never flaps a
sink's reported status.

internal/liveness drives these checkers on the liveness_check_interval_s
cadence and republishes their Status into pkg/metrics as named components,
surfaced through the /health endpoint (/ready reports only the eventbuffer
and ingress components).
*/
package health

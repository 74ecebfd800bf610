package publish

import (
	"context"

	"github.com/cuemby/ray-aggregator/pkg/log"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

// NoopPublisher stands in for a sink that is disabled by configuration: it
// never pulls from the buffer and its counters stay at zero, but it still
// participates in the same lifecycle as a real Publisher so callers don't
// need to special-case a disabled sink.
type NoopPublisher struct {
	Name string
}

// RunForever blocks until ctx is cancelled, doing nothing.
func (n *NoopPublisher) RunForever(ctx context.Context) error {
	metrics.PublisherUp.WithLabelValues(n.Name).Set(0)
	log.WithSink(n.Name).Info().Msg("publisher disabled, sink will not run")
	<-ctx.Done()
	return ctx.Err()
}

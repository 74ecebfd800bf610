/*
Package metrics defines and registers the aggregator's Prometheus metrics and
exposes them over HTTP for scraping.

Metrics are grouped around three places events move through the
aggregator: ingress (events received / failed to enqueue), per-consumer
eviction counters on the EventBuffer, and per-publisher
published/filtered/failed counters. A Timer helper mirrors the one used
elsewhere in this codebase for histogram observations.

	metrics.EventsReceivedTotal.Inc()
	t := metrics.NewTimer()
	...
	t.ObserveDurationVec(metrics.PublishDuration, "http")
*/
package metrics

/*
Package publish runs one long-lived batching loop per downstream sink: pull a
batch from the shared EventBuffer, hand it to a sink-specific Client, retry
with backoff on transport failure, record counters, repeat until cancelled.
*/
package publish

import (
	"context"

	"github.com/cuemby/ray-aggregator/internal/model"
)

// Batch is the unit of work handed from the EventBuffer to a Client.
type Batch = model.Batch

// PublishStats reports the outcome of one Client.Publish call. Success is
// false on any remote/transport failure; Publish itself must not return an
// error for that case, only for a programmer-error condition the caller
// cannot recover from by retrying.
type PublishStats struct {
	Success       bool
	FilteredCount int
	AcceptedCount int
}

// Client is a sink-specific serializer and transport: HTTPClient and
// ControlPlaneClient are the two production variants; tests use a fake.
type Client interface {
	// Publish sends batch to the sink. It reports success=false rather than
	// returning an error for any remote or transport failure; the returned
	// error is reserved for conditions a retry cannot fix.
	Publish(ctx context.Context, batch Batch) (PublishStats, error)

	// CountEvents reports how many events batch contains, for the failed
	// counter when a batch is dropped (non-retryable error, retries
	// exhausted, or cancellation during backoff).
	CountEvents(batch Batch) int

	// Close releases the sink's transport resources.
	Close() error
}

/*
Package httpclient implements the PublisherClient that exports events to an
external HTTP collector: filter, JSON-serialize, POST, using plain net/http
since this sink is an external collector rather than a cluster peer.
*/
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/cuemby/ray-aggregator/internal/model"
	"github.com/cuemby/ray-aggregator/internal/publish"
	"github.com/cuemby/ray-aggregator/internal/publish/filter"
	"github.com/cuemby/ray-aggregator/internal/workerpool"
)

// wireEvent is the JSON shape posted to the collector.
type wireEvent struct {
	ID                 string `json:"id"`
	SourceKind         string `json:"source_kind"`
	Kind               string `json:"kind"`
	SourceAggregatorID string `json:"source_aggregator_id"`
	TimestampSeconds   int64  `json:"timestamp_seconds"`
	TimestampNanos     int32  `json:"timestamp_nanos"`
	Severity           int32  `json:"severity"`
	Message            string `json:"message"`
}

type wirePayload struct {
	Events []wireEvent `json:"events"`
}

// Client POSTs filtered, JSON-serialized batches to a configured endpoint.
type Client struct {
	url     string
	filter  filter.Predicate
	httpCli *http.Client
	pool    *workerpool.Pool
}

// New builds an HTTP PublisherClient. If timeout is zero a sane default is
// used so a hung collector can never stall the publisher loop forever. pool
// offloads JSON marshaling of each batch; pass nil to marshal inline.
func New(url string, predicate filter.Predicate, timeout time.Duration, pool *workerpool.Pool) *Client {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	if predicate == nil {
		predicate = filter.New(filter.DefaultExposableKinds)
	}
	return &Client{
		url:    url,
		filter: predicate,
		httpCli: &http.Client{
			Timeout: timeout,
		},
		pool: pool,
	}
}

// Publish filters batch, serializes the surviving events as JSON, and POSTs
// them to the configured URL. Any transport or non-2xx response is reported
// as PublishStats{Success: false}, never as an error.
func (c *Client) Publish(ctx context.Context, batch publish.Batch) (publish.PublishStats, error) {
	kept := make([]wireEvent, 0, len(batch))
	filteredCount := 0
	for _, e := range batch {
		if !c.filter(e.Kind) {
			filteredCount++
			continue
		}
		kept = append(kept, toWire(e))
	}

	if len(kept) == 0 {
		return publish.PublishStats{Success: true, FilteredCount: filteredCount, AcceptedCount: 0}, nil
	}

	marshal := func() ([]byte, error) {
		return json.Marshal(wirePayload{Events: kept})
	}
	var body []byte
	var err error
	if c.pool != nil {
		body, err = c.pool.Do(marshal)
	} else {
		body, err = marshal()
	}
	if err != nil {
		// Malformed in-memory data, not a transport failure: this cannot be
		// fixed by retrying, so Publish reports it as an error (as it does a
		// request that cannot be built, below).
		return publish.PublishStats{}, fmt.Errorf("httpclient: marshal batch: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return publish.PublishStats{}, fmt.Errorf("httpclient: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpCli.Do(req)
	if err != nil {
		return publish.PublishStats{Success: false, FilteredCount: filteredCount}, nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return publish.PublishStats{Success: false, FilteredCount: filteredCount}, nil
	}

	return publish.PublishStats{
		Success:       true,
		FilteredCount: filteredCount,
		AcceptedCount: len(kept),
	}, nil
}

// CountEvents reports the total events in batch, regardless of filtering.
func (c *Client) CountEvents(batch publish.Batch) int {
	return len(batch)
}

// Close releases the underlying HTTP transport's idle connections and, if
// a worker pool was passed to New, stops it after in-flight jobs finish.
func (c *Client) Close() error {
	c.httpCli.CloseIdleConnections()
	if c.pool != nil {
		c.pool.Close()
	}
	return nil
}

func toWire(e model.Event) wireEvent {
	return wireEvent{
		ID:                 string(e.ID),
		SourceKind:         e.SourceKind,
		Kind:               e.Kind.String(),
		SourceAggregatorID: e.SourceAggregatorID,
		TimestampSeconds:   e.Timestamp.Seconds,
		TimestampNanos:     e.Timestamp.Nanos,
		Severity:           int32(e.Severity),
		Message:            string(e.Message),
	}
}

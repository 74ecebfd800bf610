/*
Package eventbuffer implements the bounded multi-consumer event FIFO that
sits between ingress and the publishers: a fixed-capacity queue that never
blocks on append, hands each registered consumer its own cursor into the
queue, and tracks exactly which events a slow consumer lost to eviction.

It is the concurrency core of the aggregator. Everything else — the
publisher retry loop, the HTTP/control-plane clients, the ingress handler —
is a consumer or producer of this buffer.
*/
package eventbuffer

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/cuemby/ray-aggregator/internal/model"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

// ErrUnknownConsumer is returned by WaitForBatch when called with a
// consumer_id that was never handed out by RegisterConsumer. It should be
// impossible in practice: it signals a programmer error, not a runtime
// condition callers are expected to recover from.
var ErrUnknownConsumer = errors.New("eventbuffer: unknown consumer")

// consumerState is a registered reader's position in the buffer plus its
// wake latch. wake is a channel that is closed to broadcast "something may
// be available now" and replaced with a fresh one once a consumer has
// observed it and found nothing to read — the classic level-triggered
// monitor pattern: set on every append, cleared under the lock only when
// the consumer rechecks and finds the buffer still caught up.
type consumerState struct {
	id     int
	name   string
	cursor int
	wake   chan struct{}
}

// Buffer is a bounded FIFO of events with independent per-consumer cursors.
// Append always succeeds, displacing the oldest event when full; consumers
// read at their own pace via WaitForBatch and never block ingress or each
// other.
type Buffer struct {
	mu        sync.Mutex
	events    []model.Event
	maxSize   int
	consumers map[int]*consumerState
	nextID    int
}

// New creates an empty Buffer with the given capacity. maxSize must be >= 1.
func New(maxSize int) *Buffer {
	if maxSize < 1 {
		maxSize = 1
	}
	return &Buffer{
		events:    make([]model.Event, 0, maxSize),
		maxSize:   maxSize,
		consumers: make(map[int]*consumerState),
	}
}

// RegisterConsumer creates a new ConsumerState with cursor 0 and returns its
// opaque id. Safe to call at any time; typically called once by a publisher
// during startup.
func (b *Buffer) RegisterConsumer(name string) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	id := b.nextID
	b.nextID++
	b.consumers[id] = &consumerState{
		id:     id,
		name:   name,
		cursor: 0,
		wake:   make(chan struct{}),
	}
	metrics.BufferLength.Set(float64(len(b.events)))
	return id
}

// Append adds event to the tail of the buffer. If the buffer is full, the
// head event is evicted first. Append never blocks on a consumer and never
// fails.
func (b *Buffer) Append(event model.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var dropped *model.Event
	if len(b.events) == b.maxSize {
		head := b.events[0]
		dropped = &head
		b.events = b.events[1:]
	}
	b.events = append(b.events, event)

	for _, c := range b.consumers {
		if dropped != nil {
			if c.cursor == 0 {
				// This consumer had not yet read the evicted event: it is lost.
				metrics.QueueDroppedEventsTotal.WithLabelValues(c.name, dropped.Kind.String()).Inc()
			} else {
				c.cursor--
			}
		}
		wakeConsumer(c)
	}
	metrics.BufferLength.Set(float64(len(b.events)))
}

// wakeConsumer broadcasts availability to one consumer by closing its
// current wake channel; the consumer installs a fresh one (freshIfClosed)
// once it finds nothing to read. Must be called with the buffer mutex held.
func wakeConsumer(c *consumerState) {
	select {
	case <-c.wake:
		// Already closed (pending wake not yet observed); nothing to do.
	default:
		close(c.wake)
	}
}

// WaitForBatch blocks until at least one event is available for
// consumerID, then drains up to maxBatchSize contiguous events, returning
// early once either the batch is full or timeout elapses after the first
// event arrived. It returns ErrUnknownConsumer if consumerID was never
// registered.
func (b *Buffer) WaitForBatch(ctx context.Context, consumerID int, maxBatchSize int, timeout time.Duration) (model.Batch, error) {
	c, err := b.consumer(consumerID)
	if err != nil {
		return nil, err
	}

	// Phase 1: unbounded wait for the first event.
	first, wakeCh := b.takeOne(c)
	for first == nil {
		select {
		case <-wakeCh:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
		first, wakeCh = b.takeOne(c)
	}

	batch := model.Batch{*first}
	if maxBatchSize <= 1 {
		return batch, nil
	}

	// Phase 2: bounded fill — keep draining until full or timeout since the
	// first event arrived.
	deadline := time.Now().Add(timeout)
	for len(batch) < maxBatchSize {
		more, wake, full := b.drainAvailable(c, maxBatchSize-len(batch))
		batch = append(batch, more...)
		if full || len(batch) >= maxBatchSize {
			return batch, nil
		}

		remaining := time.Until(deadline)
		if remaining <= 0 {
			return batch, nil
		}
		select {
		case <-wake:
		case <-time.After(remaining):
			return batch, nil
		case <-ctx.Done():
			return batch, nil
		}
	}
	return batch, nil
}

func (b *Buffer) consumer(id int) (*consumerState, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	c, ok := b.consumers[id]
	if !ok {
		return nil, ErrUnknownConsumer
	}
	return c, nil
}

// takeOne takes a single event for c if one is available, advancing its
// cursor. If none is available it clears (resets) the wake latch and
// returns the channel to wait on next.
func (b *Buffer) takeOne(c *consumerState) (*model.Event, chan struct{}) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if c.cursor < len(b.events) {
		e := b.events[c.cursor]
		c.cursor++
		return &e, nil
	}
	c.wake = freshIfClosed(c.wake)
	return nil, c.wake
}

// drainAvailable takes up to n contiguous events for c without blocking.
// full reports whether the caller's requested count was fully satisfied.
func (b *Buffer) drainAvailable(c *consumerState, n int) (batch model.Batch, wake chan struct{}, full bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	available := len(b.events) - c.cursor
	if available <= 0 {
		c.wake = freshIfClosed(c.wake)
		return nil, c.wake, false
	}
	take := available
	if take > n {
		take = n
	}
	batch = append(model.Batch{}, b.events[c.cursor:c.cursor+take]...)
	c.cursor += take
	return batch, c.wake, take == n
}

// freshIfClosed returns a fresh open channel if ch is already closed,
// otherwise returns ch unchanged. Must be called with the buffer mutex held.
func freshIfClosed(ch chan struct{}) chan struct{} {
	select {
	case <-ch:
		return make(chan struct{})
	default:
		return ch
	}
}

// Len returns the current number of events held in the buffer.
func (b *Buffer) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.events)
}

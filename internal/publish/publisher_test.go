package publish

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/cuemby/ray-aggregator/internal/model"
)

func nopLogger() zerolog.Logger {
	return zerolog.Nop()
}

// fakeSource hands out one batch per WaitForBatch call from a queue, then
// blocks until ctx is cancelled.
type fakeSource struct {
	mu      sync.Mutex
	batches []Batch
}

func (f *fakeSource) RegisterConsumer(name string) int { return 1 }

func (f *fakeSource) WaitForBatch(ctx context.Context, consumerID int, maxBatchSize int, timeout time.Duration) (model.Batch, error) {
	f.mu.Lock()
	if len(f.batches) > 0 {
		b := f.batches[0]
		f.batches = f.batches[1:]
		f.mu.Unlock()
		return b, nil
	}
	f.mu.Unlock()

	<-ctx.Done()
	return nil, ctx.Err()
}

// fakeClient counts every Publish call and returns scripted outcomes in
// sequence.
type fakeClient struct {
	mu      sync.Mutex
	results []fakeResult
	calls   int
	closed  bool
}

type fakeResult struct {
	stats PublishStats
	err   error
}

func (f *fakeClient) Publish(ctx context.Context, batch Batch) (PublishStats, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r := f.results[f.calls]
	f.calls++
	return r.stats, r.err
}

func (f *fakeClient) CountEvents(batch Batch) int { return len(batch) }

func (f *fakeClient) Close() error {
	f.closed = true
	return nil
}

func oneEventBatch() Batch {
	return Batch{{ID: []byte("1"), Kind: model.KindTaskExecution}}
}

func TestPublisher_RunForever_PublishesUntilCancelled(t *testing.T) {
	source := &fakeSource{batches: []Batch{oneEventBatch()}}
	client := &fakeClient{results: []fakeResult{
		{stats: PublishStats{Success: true, AcceptedCount: 1}},
	}}

	p := New(Config{Name: "test", MaxBatchSize: 10, PullTimeout: time.Millisecond}, source, client)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.RunForever(ctx) }()

	time.Sleep(20 * time.Millisecond)
	cancel()

	err := <-done
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, client.calls)
	assert.True(t, client.closed)
}

func TestPublisher_PublishWithRetry_SucceedsAfterTransientFailure(t *testing.T) {
	client := &fakeClient{results: []fakeResult{
		{stats: PublishStats{Success: false}},
		{stats: PublishStats{Success: true, AcceptedCount: 1}},
	}}
	p := &Publisher{
		cfg: Config{
			Name:       "test",
			MaxRetries: 3,
			Backoff:    BackoffConfig{InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		},
		client: client,
	}

	p.publishWithRetry(context.Background(), oneEventBatch(), nopLogger())
	assert.Equal(t, 2, client.calls)
}

func TestPublisher_PublishWithRetry_DropsAfterExhaustion(t *testing.T) {
	client := &fakeClient{results: []fakeResult{
		{stats: PublishStats{Success: false}},
		{stats: PublishStats{Success: false}},
	}}
	p := &Publisher{
		cfg: Config{
			Name:       "test",
			MaxRetries: 1,
			Backoff:    BackoffConfig{InitialBackoff: time.Millisecond, MaxBackoff: time.Millisecond},
		},
		client: client,
	}

	p.publishWithRetry(context.Background(), oneEventBatch(), nopLogger())
	assert.Equal(t, 2, client.calls)
}

func TestPublisher_PublishWithRetry_NonRetryableErrorStopsImmediately(t *testing.T) {
	client := &fakeClient{results: []fakeResult{
		{err: errors.New("boom")},
	}}
	p := &Publisher{cfg: Config{Name: "test", MaxRetries: 5}, client: client}

	p.publishWithRetry(context.Background(), oneEventBatch(), nopLogger())
	assert.Equal(t, 1, client.calls)
}

func TestNoopPublisher_BlocksUntilCancelled(t *testing.T) {
	n := &NoopPublisher{Name: "disabled"}
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- n.RunForever(ctx) }()

	select {
	case <-done:
		t.Fatal("NoopPublisher returned before cancellation")
	case <-time.After(10 * time.Millisecond):
	}

	cancel()
	err := <-done
	require.ErrorIs(t, err, context.Canceled)
}

package publish

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/cuemby/ray-aggregator/internal/model"
	"github.com/cuemby/ray-aggregator/pkg/log"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

// Source is the subset of EventBuffer a Publisher pulls batches from. It is
// an interface so publisher tests can drive a fake buffer without the real
// eviction/cursor machinery.
type Source interface {
	RegisterConsumer(name string) int
	WaitForBatch(ctx context.Context, consumerID int, maxBatchSize int, timeout time.Duration) (model.Batch, error)
}

// Config parameterizes one Publisher's loop.
type Config struct {
	// Name identifies the sink in logs and metric labels ("http", "control_plane").
	Name string
	// MaxBatchSize bounds how many events WaitForBatch returns in one call.
	MaxBatchSize int
	// PullTimeout bounds phase 2 of WaitForBatch (the post-first-event fill window).
	PullTimeout time.Duration
	// MaxRetries is the number of retries after the initial attempt, or
	// InfiniteRetries to retry until success or cancellation.
	MaxRetries int
	Backoff    BackoffConfig
}

// Publisher runs one long-lived batching loop for a single sink: register as
// a buffer consumer, then repeatedly pull a batch, publish it with retry,
// and record counters, until its context is cancelled.
type Publisher struct {
	cfg    Config
	source Source
	client Client

	consumerID int
}

// New builds a Publisher that reads from source and writes to client.
func New(cfg Config, source Source, client Client) *Publisher {
	return &Publisher{cfg: cfg, source: source, client: client}
}

// RunForever registers the publisher as a buffer consumer and loops pulling
// and publishing batches until ctx is cancelled. It always returns a non-nil
// error: ctx.Err() on ordinary cancellation.
func (p *Publisher) RunForever(ctx context.Context) error {
	logger := log.WithSink(p.cfg.Name)

	p.consumerID = p.source.RegisterConsumer(p.cfg.Name)
	metrics.PublisherUp.WithLabelValues(p.cfg.Name).Set(1)
	logger.Info().Int("consumer_id", p.consumerID).Msg("publisher started")

	defer func() {
		metrics.PublisherUp.WithLabelValues(p.cfg.Name).Set(0)
		if err := p.client.Close(); err != nil {
			logger.Warn().Err(err).Msg("error closing publisher client")
		}
		logger.Info().Msg("publisher stopped")
	}()

	for {
		batch, err := p.source.WaitForBatch(ctx, p.consumerID, p.cfg.MaxBatchSize, p.cfg.PullTimeout)
		if err != nil {
			return err
		}
		if len(batch) == 0 {
			continue
		}
		p.publishWithRetry(ctx, batch, logger)
	}
}

// publishWithRetry attempts to publish batch, retrying with backoff on
// failure up to cfg.MaxRetries times (or indefinitely if InfiniteRetries),
// recording success/filtered/failed counters on the terminal outcome.
func (p *Publisher) publishWithRetry(ctx context.Context, batch Batch, logger zerolog.Logger) {
	for attempt := 0; ; attempt++ {
		timer := metrics.NewTimer()
		stats, err := p.client.Publish(ctx, batch)
		timer.ObserveDurationVec(metrics.PublishDuration, p.cfg.Name)

		if err != nil {
			logger.Error().Err(err).Msg("publisher client returned a non-retryable error")
			metrics.FailedTotal.WithLabelValues(p.cfg.Name).Add(float64(p.client.CountEvents(batch)))
			return
		}

		if stats.Success {
			metrics.PublishedTotal.WithLabelValues(p.cfg.Name).Add(float64(stats.AcceptedCount))
			metrics.FilteredTotal.WithLabelValues(p.cfg.Name).Add(float64(stats.FilteredCount))
			return
		}

		if !p.retriesRemain(attempt) {
			logger.Warn().Int("attempts", attempt+1).Msg("publish retries exhausted, dropping batch")
			metrics.FailedTotal.WithLabelValues(p.cfg.Name).Add(float64(p.client.CountEvents(batch)))
			return
		}

		delay := p.cfg.Backoff.delay(attempt)
		logger.Debug().Int("attempt", attempt).Dur("backoff", delay).Msg("publish attempt failed, retrying")
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			metrics.FailedTotal.WithLabelValues(p.cfg.Name).Add(float64(p.client.CountEvents(batch)))
			return
		}
	}
}

// retriesRemain reports whether another retry is permitted after the attempt
// numbered (0-indexed) attempt has just failed.
func (p *Publisher) retriesRemain(attempt int) bool {
	if p.cfg.MaxRetries == InfiniteRetries {
		return true
	}
	return attempt < p.cfg.MaxRetries
}

/*
Package aggregator wires the EventBuffer, TaskMetadataBuffer, publishers,
and ingress handler into one running process: a struct that owns every
subsystem's lifecycle behind Start/Stop and a WaitGroup tracking its
background goroutines.
*/
package aggregator

import (
	"context"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"google.golang.org/grpc"

	"github.com/cuemby/ray-aggregator/api/proto"
	"github.com/cuemby/ray-aggregator/internal/eventbuffer"
	"github.com/cuemby/ray-aggregator/internal/ingress"
	"github.com/cuemby/ray-aggregator/internal/liveness"
	"github.com/cuemby/ray-aggregator/internal/model"
	"github.com/cuemby/ray-aggregator/internal/publish"
	"github.com/cuemby/ray-aggregator/internal/publish/controlplaneclient"
	"github.com/cuemby/ray-aggregator/internal/publish/filter"
	"github.com/cuemby/ray-aggregator/internal/publish/httpclient"
	"github.com/cuemby/ray-aggregator/internal/taskmetadata"
	"github.com/cuemby/ray-aggregator/internal/workerpool"
	"github.com/cuemby/ray-aggregator/pkg/config"
	"github.com/cuemby/ray-aggregator/pkg/log"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

// Agent owns the aggregator's entire runtime: the shared buffer, its
// publishers, and the gRPC server exposing AddEvents.
type Agent struct {
	cfg      config.Config
	buffer   *eventbuffer.Buffer
	taskMeta *taskmetadata.Buffer

	grpcServer *grpc.Server

	processingEnabled atomic.Bool

	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New builds an Agent and its fixed subsystems from cfg. It does not start
// any goroutines or listeners; call Start for that.
func New(cfg config.Config) *Agent {
	a := &Agent{
		cfg:      cfg,
		buffer:   eventbuffer.New(cfg.MaxEventBufferSize),
		taskMeta: taskmetadata.New(),
	}
	a.processingEnabled.Store(true)
	return a
}

// SetProcessingEnabled toggles whether AddEvents buffers incoming events or
// silently discards them. Safe to call concurrently with Start/Stop.
func (a *Agent) SetProcessingEnabled(enabled bool) {
	a.processingEnabled.Store(enabled)
}

// Start launches the gRPC ingress server and every configured publisher's
// RunForever loop in the background, returning once the listener is bound.
func (a *Agent) Start(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	a.cancel = cancel

	handler := ingress.New(a.buffer, a.taskMeta, a.processingEnabled.Load)
	a.grpcServer = grpc.NewServer()
	proto.RegisterAggregatorServiceServer(a.grpcServer, handler)

	lis, err := net.Listen("tcp", a.cfg.GRPCAddr)
	if err != nil {
		cancel()
		return err
	}

	metrics.RegisterComponent("eventbuffer", true, "running")
	metrics.RegisterComponent("ingress", true, "listening on "+a.cfg.GRPCAddr)

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		log.WithComponent("ingress").Info().Str("addr", a.cfg.GRPCAddr).Msg("grpc server listening")
		if err := a.grpcServer.Serve(lis); err != nil {
			log.WithComponent("ingress").Warn().Err(err).Msg("grpc server stopped")
		}
	}()

	a.startPublisher(ctx, a.httpPublisher())
	a.startPublisher(ctx, a.controlPlanePublisher())
	a.startLiveness(ctx)

	return nil
}

// startLiveness runs a liveness.Monitor probing whichever sinks are enabled
// on the configured interval, for as long as Agent runs.
func (a *Agent) startLiveness(ctx context.Context) {
	var httpAddr, controlPlaneAddr string
	if a.cfg.PublishToHTTP {
		httpAddr = a.cfg.EventsExportAddr
	}
	if a.cfg.PublishToControlPlane {
		controlPlaneAddr = a.cfg.ControlPlaneAddr
	}

	mon := liveness.New(a.cfg.LivenessCheckInterval(), 5*time.Second, httpAddr, controlPlaneAddr)
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		mon.Run(ctx)
	}()
}

// httpPublisher returns the HTTP sink's Publisher, or a NoopPublisher if
// the sink is disabled by configuration.
func (a *Agent) httpPublisher() runner {
	if !a.cfg.PublishToHTTP || a.cfg.EventsExportAddr == "" {
		return &publish.NoopPublisher{Name: "http"}
	}

	var predicate filter.Predicate
	if kinds := a.cfg.ExposableKinds(); len(kinds) > 0 {
		predicate = filter.New(parseKinds(kinds))
	} else {
		predicate = filter.New(filter.DefaultExposableKinds)
	}

	pool := workerpool.New(a.cfg.WorkerPoolSize)
	client := httpclient.New(a.cfg.EventsExportAddr, predicate, 0, pool)
	return publish.New(a.publisherConfig("http"), a.buffer, client)
}

// controlPlanePublisher returns the control-plane sink's Publisher, or a
// NoopPublisher if disabled or the gRPC client cannot be created. The client
// connects lazily, so an unreachable address does not select the Noop path.
func (a *Agent) controlPlanePublisher() runner {
	if !a.cfg.PublishToControlPlane {
		return &publish.NoopPublisher{Name: "control_plane"}
	}

	client, err := controlplaneclient.New(a.cfg.ControlPlaneAddr, a.taskMeta, 0)
	if err != nil {
		log.WithComponent("aggregator").Error().Err(err).Msg("failed to dial control plane, sink disabled")
		return &publish.NoopPublisher{Name: "control_plane"}
	}
	return publish.New(a.publisherConfig("control_plane"), a.buffer, client)
}

func (a *Agent) publisherConfig(name string) publish.Config {
	return publish.Config{
		Name:         name,
		MaxBatchSize: a.cfg.MaxEventSendBatchSize,
		PullTimeout:  a.cfg.PublishPullTimeout(),
		MaxRetries:   a.cfg.MaxRetries,
		Backoff: publish.BackoffConfig{
			InitialBackoff: msDuration(a.cfg.InitialBackoffMS),
			MaxBackoff:     msDuration(a.cfg.MaxBackoffMS),
			JitterRatio:    a.cfg.JitterRatio,
		},
	}
}

// runner is satisfied by both *publish.Publisher and *publish.NoopPublisher.
type runner interface {
	RunForever(ctx context.Context) error
}

func (a *Agent) startPublisher(ctx context.Context, r runner) {
	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		if err := r.RunForever(ctx); err != nil && ctx.Err() == nil {
			log.WithComponent("aggregator").Error().Err(err).Msg("publisher exited unexpectedly")
		}
	}()
}

// Stop cancels every background goroutine and gracefully stops the gRPC
// server, blocking until all of them have returned.
func (a *Agent) Stop() {
	if a.cancel != nil {
		a.cancel()
	}
	if a.grpcServer != nil {
		a.grpcServer.GracefulStop()
	}
	a.wg.Wait()
}

// Buffer exposes the shared EventBuffer for diagnostics and tests.
func (a *Agent) Buffer() *eventbuffer.Buffer { return a.buffer }

func msDuration(ms int) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

func parseKinds(names []string) []model.Kind {
	out := make([]model.Kind, 0, len(names))
	for _, name := range names {
		out = append(out, model.KindFromString(name))
	}
	return out
}

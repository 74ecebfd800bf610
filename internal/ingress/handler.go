/*
Package ingress implements the aggregator's single gRPC entry point:
producers call AddEvents to hand over a batch of events (plus any
task-attempt metadata) for buffering and eventual publish. A struct
embedding the generated UnimplementedXServer and holding a pointer back
to the owning agent state.
*/
package ingress

import (
	"context"

	"github.com/cuemby/ray-aggregator/api/proto"
	"github.com/cuemby/ray-aggregator/internal/eventbuffer"
	"github.com/cuemby/ray-aggregator/internal/model"
	"github.com/cuemby/ray-aggregator/internal/taskmetadata"
	"github.com/cuemby/ray-aggregator/pkg/log"
	"github.com/cuemby/ray-aggregator/pkg/metrics"
)

// Handler implements proto.AggregatorServiceServer.
type Handler struct {
	proto.UnimplementedAggregatorServiceServer

	buffer   *eventbuffer.Buffer
	taskMeta *taskmetadata.Buffer

	// enabled gates all processing: when false, AddEvents accepts and
	// discards every event so producers can keep running unchanged while
	// the aggregator is administratively disabled.
	enabled func() bool
}

// New builds a Handler over buffer and taskMeta. enabled is polled on every
// call so the owning agent can flip it at runtime without recreating the
// handler.
func New(buffer *eventbuffer.Buffer, taskMeta *taskmetadata.Buffer, enabled func() bool) *Handler {
	return &Handler{buffer: buffer, taskMeta: taskMeta, enabled: enabled}
}

// AddEvents accepts a batch of events for buffering. It always returns an
// empty acknowledgement indicating ingress acceptance, never downstream
// delivery: per-event append failures are counted and logged, never
// surfaced as part of the RPC result.
func (h *Handler) AddEvents(ctx context.Context, req *proto.AddEventsRequest) (*proto.AddEventsReply, error) {
	if h.enabled != nil && !h.enabled() {
		return &proto.AddEventsReply{}, nil
	}

	h.taskMeta.Merge(fromWireMetadata(req.TaskEventsMetadata))

	for _, wireEvent := range req.Events {
		event := fromWireEvent(wireEvent)
		if err := h.append(event); err != nil {
			metrics.EventsBufferAddFailuresTotal.Inc()
			log.WithComponent("ingress").Warn().Err(err).Msg("failed to enqueue event")
			continue
		}
		metrics.EventsReceivedTotal.Inc()
	}

	return &proto.AddEventsReply{}, nil
}

// append exists only to give the enqueue step an error-returning shape: the
// buffer itself never fails, but per-event errors are part of the handler's
// documented contract and kept centralized here for clarity.
func (h *Handler) append(event model.Event) error {
	h.buffer.Append(event)
	return nil
}

func fromWireEvent(w *proto.EventData) model.Event {
	return model.Event{
		ID:                 w.Id,
		SourceKind:         w.SourceKind,
		Kind:               model.KindFromString(w.Kind),
		SourceAggregatorID: w.SourceAggregatorId,
		Timestamp: model.Timestamp{
			Seconds: w.TimestampSeconds,
			Nanos:   w.TimestampNanos,
		},
		Severity: model.Severity(w.Severity),
		Message:  w.Message,
	}
}

func fromWireMetadata(wire map[string]*proto.TaskEventMetadata) map[model.TaskAttemptID]*model.TaskMetadata {
	if len(wire) == 0 {
		return nil
	}
	out := make(map[model.TaskAttemptID]*model.TaskMetadata, len(wire))
	for id, md := range wire {
		out[model.TaskAttemptID(id)] = &model.TaskMetadata{
			TaskAttemptID: model.TaskAttemptID(id),
			JobID:         md.JobId,
			Attributes:    md.Attributes,
		}
	}
	return out
}

/*
Package controlplaneclient implements the PublisherClient that forwards
events to a co-located control-plane stub over gRPC, draining the shared
TaskMetadataBuffer into the same call so dropped-event metadata always
accompanies the next transmission. Unlike the HTTP sink it applies no
filter: the control plane is trusted internal infrastructure, not an
external collector.
*/
package controlplaneclient

import (
	"context"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/cuemby/ray-aggregator/api/proto"
	"github.com/cuemby/ray-aggregator/internal/model"
	"github.com/cuemby/ray-aggregator/internal/publish"
	"github.com/cuemby/ray-aggregator/internal/taskmetadata"
)

// Client streams batches to a co-located control-plane stub: a
// grpc.ClientConn plus generated stub plus context.WithTimeout per call.
// The control plane runs in the same process group on localhost, so the
// connection uses insecure transport credentials rather than mTLS.
type Client struct {
	conn     *grpc.ClientConn
	stub     proto.ControlPlaneServiceClient
	taskMeta *taskmetadata.Buffer
	timeout  time.Duration
}

// New returns a ControlPlaneClient for addr. No connection is made here:
// grpc.NewClient connects on the first RPC. taskMeta is the shared buffer
// drained on every Publish call.
func New(addr string, taskMeta *taskmetadata.Buffer, timeout time.Duration) (*Client, error) {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	return &Client{
		conn:     conn,
		stub:     proto.NewControlPlaneServiceClient(conn),
		taskMeta: taskMeta,
		timeout:  timeout,
	}, nil
}

// Publish drains the task-metadata buffer and sends it with batch in one
// IngestEvents call. Any transport or RPC-status failure is reported as
// PublishStats{Success: false}, never as an error.
func (c *Client) Publish(ctx context.Context, batch publish.Batch) (publish.PublishStats, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req := &proto.IngestEventsRequest{
		Events:             toWireEvents(batch),
		TaskEventsMetadata: toWireMetadata(c.taskMeta.Drain()),
	}

	if _, err := c.stub.IngestEvents(ctx, req); err != nil {
		return publish.PublishStats{Success: false}, nil
	}

	return publish.PublishStats{
		Success:       true,
		FilteredCount: 0,
		AcceptedCount: len(batch),
	}, nil
}

// CountEvents reports the total events in batch; the control-plane sink
// applies no filter so this equals the batch length.
func (c *Client) CountEvents(batch publish.Batch) int {
	return len(batch)
}

// Close tears down the gRPC connection.
func (c *Client) Close() error {
	return c.conn.Close()
}

func toWireEvents(batch publish.Batch) []*proto.EventData {
	out := make([]*proto.EventData, 0, len(batch))
	for _, e := range batch {
		out = append(out, &proto.EventData{
			Id:                 e.ID,
			SourceKind:         e.SourceKind,
			Kind:               e.Kind.String(),
			SourceAggregatorId: e.SourceAggregatorID,
			TimestampSeconds:   e.Timestamp.Seconds,
			TimestampNanos:     e.Timestamp.Nanos,
			Severity:           int32(e.Severity),
			Message:            e.Message,
		})
	}
	return out
}

func toWireMetadata(drained map[model.TaskAttemptID]*model.TaskMetadata) map[string]*proto.TaskEventMetadata {
	if len(drained) == 0 {
		return nil
	}
	out := make(map[string]*proto.TaskEventMetadata, len(drained))
	for id, md := range drained {
		out[string(id)] = &proto.TaskEventMetadata{
			JobId:      md.JobID,
			Attributes: md.Attributes,
		}
	}
	return out
}

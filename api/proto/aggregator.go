package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// EventData is the wire representation of one telemetry event.
type EventData struct {
	Id                 []byte `json:"id"`
	SourceKind         string `json:"source_kind"`
	Kind               string `json:"kind"`
	SourceAggregatorId string `json:"source_aggregator_id"`
	TimestampSeconds   int64  `json:"timestamp_seconds"`
	TimestampNanos     int32  `json:"timestamp_nanos"`
	Severity           int32  `json:"severity"`
	Message            []byte `json:"message"`
}

// TaskEventMetadata is the wire representation of one task attempt's
// metadata record.
type TaskEventMetadata struct {
	JobId      string            `json:"job_id"`
	Attributes map[string]string `json:"attributes"`
}

// AddEventsRequest is the single ingress RPC's request: a batch of events
// plus any task-attempt metadata discovered alongside them, keyed by
// attempt id.
type AddEventsRequest struct {
	Events             []*EventData                  `json:"events"`
	TaskEventsMetadata map[string]*TaskEventMetadata `json:"task_events_metadata"`
}

// AddEventsReply acknowledges ingress acceptance only; it carries no
// payload because per-event enqueue failures are never surfaced to the
// caller.
type AddEventsReply struct{}

// AggregatorServiceServer is the service implemented by IngressHandler.
type AggregatorServiceServer interface {
	AddEvents(context.Context, *AddEventsRequest) (*AddEventsReply, error)
}

// UnimplementedAggregatorServiceServer must be embedded by implementations
// to satisfy forward-compatible method-set extension, matching the
// embedding convention protoc-gen-go-grpc generates.
type UnimplementedAggregatorServiceServer struct{}

func (UnimplementedAggregatorServiceServer) AddEvents(context.Context, *AddEventsRequest) (*AddEventsReply, error) {
	return nil, status.Error(codes.Unimplemented, "method AddEvents not implemented")
}

// AggregatorServiceClient is the client side of AggregatorService.
type AggregatorServiceClient interface {
	AddEvents(ctx context.Context, in *AddEventsRequest, opts ...grpc.CallOption) (*AddEventsReply, error)
}

type aggregatorServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewAggregatorServiceClient builds a client bound to an established
// connection.
func NewAggregatorServiceClient(cc grpc.ClientConnInterface) AggregatorServiceClient {
	return &aggregatorServiceClient{cc: cc}
}

func (c *aggregatorServiceClient) AddEvents(ctx context.Context, in *AddEventsRequest, opts ...grpc.CallOption) (*AddEventsReply, error) {
	out := new(AddEventsReply)
	err := c.cc.Invoke(ctx, "/aggregator.AggregatorService/AddEvents", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _AggregatorService_AddEvents_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(AddEventsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(AggregatorServiceServer).AddEvents(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/aggregator.AggregatorService/AddEvents",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(AggregatorServiceServer).AddEvents(ctx, req.(*AddEventsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// AggregatorService_ServiceDesc is the grpc.ServiceDesc for AggregatorService.
var AggregatorService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "aggregator.AggregatorService",
	HandlerType: (*AggregatorServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "AddEvents",
			Handler:    _AggregatorService_AddEvents_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aggregator.proto",
}

// RegisterAggregatorServiceServer registers srv with s.
func RegisterAggregatorServiceServer(s grpc.ServiceRegistrar, srv AggregatorServiceServer) {
	s.RegisterService(&AggregatorService_ServiceDesc, srv)
}

package proto

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// IngestEventsRequest is what the aggregator sends to the co-located
// control-plane stub: a batch of events plus whatever task-attempt metadata
// was drained from the TaskMetadataBuffer immediately before this call.
type IngestEventsRequest struct {
	Events             []*EventData                  `json:"events"`
	TaskEventsMetadata map[string]*TaskEventMetadata `json:"task_events_metadata"`
}

// IngestEventsReply acknowledges receipt by the control plane.
type IngestEventsReply struct{}

// ControlPlaneServiceServer is implemented by the co-located control-plane
// stub this aggregator forwards to; the aggregator itself is only ever the
// client of this service.
type ControlPlaneServiceServer interface {
	IngestEvents(context.Context, *IngestEventsRequest) (*IngestEventsReply, error)
}

// UnimplementedControlPlaneServiceServer must be embedded by fake
// implementations in tests, matching the embedding convention
// protoc-gen-go-grpc generates.
type UnimplementedControlPlaneServiceServer struct{}

func (UnimplementedControlPlaneServiceServer) IngestEvents(context.Context, *IngestEventsRequest) (*IngestEventsReply, error) {
	return nil, status.Error(codes.Unimplemented, "method IngestEvents not implemented")
}

// ControlPlaneServiceClient is the client side of ControlPlaneService.
type ControlPlaneServiceClient interface {
	IngestEvents(ctx context.Context, in *IngestEventsRequest, opts ...grpc.CallOption) (*IngestEventsReply, error)
}

type controlPlaneServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewControlPlaneServiceClient builds a client bound to an established
// connection to the co-located control-plane stub.
func NewControlPlaneServiceClient(cc grpc.ClientConnInterface) ControlPlaneServiceClient {
	return &controlPlaneServiceClient{cc: cc}
}

func (c *controlPlaneServiceClient) IngestEvents(ctx context.Context, in *IngestEventsRequest, opts ...grpc.CallOption) (*IngestEventsReply, error) {
	out := new(IngestEventsReply)
	err := c.cc.Invoke(ctx, "/aggregator.ControlPlaneService/IngestEvents", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _ControlPlaneService_IngestEvents_Handler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(IngestEventsRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(ControlPlaneServiceServer).IngestEvents(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: "/aggregator.ControlPlaneService/IngestEvents",
	}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(ControlPlaneServiceServer).IngestEvents(ctx, req.(*IngestEventsRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// ControlPlaneService_ServiceDesc is the grpc.ServiceDesc for
// ControlPlaneService, kept alongside the client so a fake stub can be
// registered in tests.
var ControlPlaneService_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "aggregator.ControlPlaneService",
	HandlerType: (*ControlPlaneServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "IngestEvents",
			Handler:    _ControlPlaneService_IngestEvents_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "aggregator.proto",
}

// RegisterControlPlaneServiceServer registers srv with s; used only by
// tests standing in for the real control-plane process.
func RegisterControlPlaneServiceServer(s grpc.ServiceRegistrar, srv ControlPlaneServiceServer) {
	s.RegisterService(&ControlPlaneService_ServiceDesc, srv)
}

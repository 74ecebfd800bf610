/*
Package proto holds the message and service types for the aggregator's two
gRPC surfaces: the ingress AddEvents RPC exposed to local event producers,
and the outbound IngestEvents RPC the control-plane publisher calls on a
co-located control-plane stub. There is no protoc toolchain in this build
environment, so these are hand-written stand-ins for what protoc-gen-go and
protoc-gen-go-grpc would otherwise generate from a .proto source, wired to
grpc-go's pluggable codec (google.golang.org/grpc/encoding) rather than
real protobuf wire encoding: jsonCodec registers under the "proto" codec
name, so plain Go structs travel as JSON over the same gRPC/HTTP2 transport
instead of requiring generated ProtoReflect implementations.
*/
package proto

import (
	"encoding/json"

	"google.golang.org/grpc/encoding"
)

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements google.golang.org/grpc/encoding.Codec, replacing the
// default "proto" codec process-wide with plain JSON marshaling.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	return json.Marshal(v)
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

func (jsonCodec) Name() string {
	return "proto"
}

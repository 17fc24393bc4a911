// Package grpcpeer implements peerclient.Client and its server-side
// counterpart over gRPC, without a protoc code-generation step: every
// message is a plain Go struct marshaled through a custom JSON codec
// registered with the gRPC runtime, and the service is described by a
// hand-written grpc.ServiceDesc.
package grpcpeer

import (
	"encoding/json"
	"fmt"

	"google.golang.org/grpc/encoding"
)

// codecName is sent by clients via grpc.CallContentSubtype; the server
// looks the content-subtype up among registered codecs, so both ends
// agree to use jsonCodec instead of the default protobuf-wire codec.
const codecName = "chord-json"

func init() {
	encoding.RegisterCodec(jsonCodec{})
}

// jsonCodec implements encoding.Codec by marshaling messages as JSON.
// It works for any Go struct, so no .proto-generated types are needed.
type jsonCodec struct{}

func (jsonCodec) Marshal(v any) ([]byte, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("grpcpeer: marshal: %w", err)
	}
	return b, nil
}

func (jsonCodec) Unmarshal(data []byte, v any) error {
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("grpcpeer: unmarshal: %w", err)
	}
	return nil
}

func (jsonCodec) Name() string { return codecName }

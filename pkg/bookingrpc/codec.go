package bookingrpc

import (
	"fmt"

	"google.golang.org/grpc/encoding"
	encodingproto "google.golang.org/grpc/encoding/proto"
	"google.golang.org/protobuf/proto"
)

// wireMessage is implemented by the booking messages, which encode
// themselves in the protobuf wire format of proto/booking.proto.
type wireMessage interface {
	marshalWire() []byte
	unmarshalWire(b []byte) error
}

// codec replaces the default "proto" codec so the booking messages travel as
// plain application/grpc. Generated protobuf messages keep their usual encoding.
type codec struct{}

func (codec) Marshal(v any) ([]byte, error) {
	switch m := v.(type) {
	case wireMessage:
		return m.marshalWire(), nil
	case proto.Message:
		return proto.Marshal(m)
	}
	return nil, fmt.Errorf("bookingrpc: cannot marshal %T", v)
}

func (codec) Unmarshal(data []byte, v any) error {
	switch m := v.(type) {
	case wireMessage:
		return m.unmarshalWire(data)
	case proto.Message:
		return proto.Unmarshal(data, m)
	}
	return fmt.Errorf("bookingrpc: cannot unmarshal into %T", v)
}

func (codec) Name() string {
	return encodingproto.Name
}

func init() {
	encoding.RegisterCodec(codec{})
}

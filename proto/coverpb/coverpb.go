// Package coverpb holds the gRPC bindings for proto/cover.proto. The service
// only uses well-known message types, so no generated message code is needed;
// the file descriptor is built and registered by hand in descriptor.go.
package coverpb

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ServiceName is the fully qualified gRPC service name
	ServiceName = "cover.v1.CoverClassifier"
	// ClassifyFullMethod is the full method name of Classify
	ClassifyFullMethod = "/" + ServiceName + "/Classify"
)

// Response field names
const (
	FieldIdentifier  = "identifier"
	FieldTitle       = "title"
	FieldAuthor      = "author"
	FieldConfidence  = "confidence"
	FieldProbability = "probability"
	FieldLink        = "link"
	FieldIndex       = "index"
	FieldCached      = "cached"
)

// CoverClassifierClient is the client API for the CoverClassifier service.
type CoverClassifierClient interface {
	Classify(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error)
}

type coverClassifierClient struct {
	cc grpc.ClientConnInterface
}

// NewCoverClassifierClient wraps a client connection
func NewCoverClassifierClient(cc grpc.ClientConnInterface) CoverClassifierClient {
	return &coverClassifierClient{cc}
}

func (c *coverClassifierClient) Classify(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, ClassifyFullMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

// CoverClassifierServer is the server API for the CoverClassifier service.
type CoverClassifierServer interface {
	Classify(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error)
}

// UnimplementedCoverClassifierServer can be embedded to have forward compatible implementations.
type UnimplementedCoverClassifierServer struct{}

func (UnimplementedCoverClassifierServer) Classify(context.Context, *wrapperspb.BytesValue) (*structpb.Struct, error) {
	return nil, status.Errorf(codes.Unimplemented, "method Classify not implemented")
}

// RegisterCoverClassifierServer registers srv on s
func RegisterCoverClassifierServer(s grpc.ServiceRegistrar, srv CoverClassifierServer) {
	s.RegisterService(&CoverClassifier_ServiceDesc, srv)
}

func _CoverClassifier_Classify_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(CoverClassifierServer).Classify(ctx, in)
	}
	info := &grpc.UnaryServerInfo{
		Server:     srv,
		FullMethod: ClassifyFullMethod,
	}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(CoverClassifierServer).Classify(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

// CoverClassifier_ServiceDesc is the grpc.ServiceDesc for the CoverClassifier service.
var CoverClassifier_ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*CoverClassifierServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "Classify",
			Handler:    _CoverClassifier_Classify_Handler,
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "cover.proto",
}

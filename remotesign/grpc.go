package remotesign

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

// SignerServer is the server API for the Signer gRPC service.
//
// We intentionally use protobuf well-known wrapper types so this package
// does not require a protoc/codegen toolchain.
//
// Proto definition: signer.proto.
type SignerServer interface {
	Sign(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error)
	PublicKey(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error)
	Algorithm(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error)
}

// UnimplementedSignerServer can be embedded to have forward compatible implementations.
type UnimplementedSignerServer struct{}

func (UnimplementedSignerServer) Sign(context.Context, *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Sign not implemented")
}
func (UnimplementedSignerServer) PublicKey(context.Context, *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	return nil, status.Error(codes.Unimplemented, "method PublicKey not implemented")
}
func (UnimplementedSignerServer) Algorithm(context.Context, *emptypb.Empty) (*wrapperspb.StringValue, error) {
	return nil, status.Error(codes.Unimplemented, "method Algorithm not implemented")
}

// RegisterSignerServer registers the Signer service on a gRPC server.
func RegisterSignerServer(s grpc.ServiceRegistrar, srv SignerServer) {
	s.RegisterService(&Signer_ServiceDesc, srv)
}

// SignerClient is the client API for the Signer gRPC service.
type SignerClient interface {
	Sign(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	PublicKey(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error)
	Algorithm(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error)
}

type signerClient struct{ cc grpc.ClientConnInterface }

func NewSignerClient(cc grpc.ClientConnInterface) SignerClient { return &signerClient{cc: cc} }

func (c *signerClient) Sign(ctx context.Context, in *wrapperspb.BytesValue, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/sigil.remotesign.v1.Signer/Sign", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *signerClient) PublicKey(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.BytesValue, error) {
	out := new(wrapperspb.BytesValue)
	err := c.cc.Invoke(ctx, "/sigil.remotesign.v1.Signer/PublicKey", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (c *signerClient) Algorithm(ctx context.Context, in *emptypb.Empty, opts ...grpc.CallOption) (*wrapperspb.StringValue, error) {
	out := new(wrapperspb.StringValue)
	err := c.cc.Invoke(ctx, "/sigil.remotesign.v1.Signer/Algorithm", in, out, opts...)
	if err != nil {
		return nil, err
	}
	return out, nil
}

func _Signer_Sign_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(wrapperspb.BytesValue)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignerServer).Sign(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sigil.remotesign.v1.Signer/Sign"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignerServer).Sign(ctx, req.(*wrapperspb.BytesValue))
	}
	return interceptor(ctx, in, info, handler)
}

func _Signer_PublicKey_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignerServer).PublicKey(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sigil.remotesign.v1.Signer/PublicKey"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignerServer).PublicKey(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

func _Signer_Algorithm_Handler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(emptypb.Empty)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(SignerServer).Algorithm(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/sigil.remotesign.v1.Signer/Algorithm"}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(SignerServer).Algorithm(ctx, req.(*emptypb.Empty))
	}
	return interceptor(ctx, in, info, handler)
}

// Signer_ServiceDesc is the grpc.ServiceDesc for Signer service.
var Signer_ServiceDesc = grpc.ServiceDesc{
	ServiceName: "sigil.remotesign.v1.Signer",
	HandlerType: (*SignerServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Sign", Handler: _Signer_Sign_Handler},
		{MethodName: "PublicKey", Handler: _Signer_PublicKey_Handler},
		{MethodName: "Algorithm", Handler: _Signer_Algorithm_Handler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "signer.proto",
}

package remotesign

import (
	"context"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/sigkey"
)

// Server exposes a single identified private key over the Signer gRPC
// service. The private key never leaves the process; only signatures
// and the public half cross the wire.
type Server struct {
	UnimplementedSignerServer

	// Key signs incoming messages. Required.
	Key *sigkey.PrivateKey

	// Pool holds signature material between signing and serialization.
	// Defaults to secmem.Shared.
	Pool *secmem.Pool

	// PublicKeyBytes is the raw public half served to clients. Required.
	PublicKeyBytes []byte

	// Alg is the signing algorithm served to clients. Required.
	Alg sigalg.Algorithm
}

func (s *Server) pool() *secmem.Pool {
	if s.Pool != nil {
		return s.Pool
	}
	return secmem.Shared()
}

func (s *Server) Sign(ctx context.Context, in *wrapperspb.BytesValue) (*wrapperspb.BytesValue, error) {
	if s == nil || s.Key == nil {
		return nil, status.Error(codes.FailedPrecondition, "missing signing key")
	}
	sig, err := s.Key.Sign(ctx, in.GetValue(), s.pool())
	if err != nil {
		return nil, mapErr(err)
	}
	defer sig.Close()

	// Copy out before release: the wire owns a heap copy, the pool
	// segment is zeroed on Close.
	out := make([]byte, sig.Len())
	copy(out, sig.Bytes())
	return wrapperspb.Bytes(out), nil
}

func (s *Server) PublicKey(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.BytesValue, error) {
	_ = ctx
	if s == nil || len(s.PublicKeyBytes) == 0 {
		return nil, status.Error(codes.FailedPrecondition, "missing public key")
	}
	return wrapperspb.Bytes(s.PublicKeyBytes), nil
}

func (s *Server) Algorithm(ctx context.Context, _ *emptypb.Empty) (*wrapperspb.StringValue, error) {
	_ = ctx
	if s == nil || s.Alg == "" {
		return nil, status.Error(codes.FailedPrecondition, "missing algorithm")
	}
	return wrapperspb.String(string(s.Alg)), nil
}

func mapErr(err error) error {
	if err == nil {
		return nil
	}
	switch {
	case sigalg.IsKind(err, sigalg.KindKey):
		return status.Error(codes.FailedPrecondition, err.Error())
	case sigalg.IsKind(err, sigalg.KindBackend):
		return status.Error(codes.InvalidArgument, err.Error())
	case sigalg.IsKind(err, sigalg.KindRegistry):
		return status.Error(codes.Unimplemented, err.Error())
	default:
		return status.Error(codes.Internal, err.Error())
	}
}

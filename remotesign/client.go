package remotesign

import (
	"context"
	"sync"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/protobuf/types/known/emptypb"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/sigkey"
)

// Client talks to a Signer gRPC service.
type Client struct {
	cc     *grpc.ClientConn
	client SignerClient

	// Timeout applies per RPC when non-zero.
	Timeout time.Duration

	// Pool holds fetched key and signature material. Defaults to
	// secmem.Shared.
	Pool *secmem.Pool

	mu  sync.Mutex
	alg sigalg.Algorithm
}

type DialOptions struct {
	// Timeout applies to the initial dial when non-zero.
	Timeout time.Duration

	// MaxMsgBytes sets both send/recv max sizes when non-zero.
	MaxMsgBytes int
}

func Dial(target string, opts DialOptions) (*Client, error) {
	dialOpts := []grpc.DialOption{
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	}
	if opts.MaxMsgBytes > 0 {
		dialOpts = append(dialOpts,
			grpc.WithDefaultCallOptions(
				grpc.MaxCallRecvMsgSize(opts.MaxMsgBytes),
				grpc.MaxCallSendMsgSize(opts.MaxMsgBytes),
			),
		)
	}

	ctx := context.Background()
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	cc, err := grpc.DialContext(ctx, target, dialOpts...)
	if err != nil {
		return nil, err
	}
	return &Client{cc: cc, client: NewSignerClient(cc)}, nil
}

// NewClient wraps an existing connection, typically for tests.
func NewClient(cc *grpc.ClientConn) *Client {
	return &Client{cc: cc, client: NewSignerClient(cc)}
}

func (c *Client) Close() error {
	if c == nil || c.cc == nil {
		return nil
	}
	return c.cc.Close()
}

func (c *Client) pool() *secmem.Pool {
	if c.Pool != nil {
		return c.Pool
	}
	return secmem.Shared()
}

// Sign asks the remote signer to sign message and returns the raw
// signature bytes.
func (c *Client) Sign(ctx context.Context, message []byte) ([]byte, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Sign(ctx, wrapperspb.Bytes(message))
	if err != nil {
		return nil, err
	}
	return reply.GetValue(), nil
}

// PublicKey fetches the remote signer's raw public key bytes.
func (c *Client) PublicKey(ctx context.Context) ([]byte, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.PublicKey(ctx, &emptypb.Empty{})
	if err != nil {
		return nil, err
	}
	return reply.GetValue(), nil
}

// Algorithm fetches the remote signer's algorithm. The result is cached
// for the lifetime of the client.
func (c *Client) Algorithm(ctx context.Context) (sigalg.Algorithm, error) {
	c.mu.Lock()
	cached := c.alg
	c.mu.Unlock()
	if cached != "" {
		return cached, nil
	}

	ctx, cancel := c.ctx(ctx)
	defer cancel()

	reply, err := c.client.Algorithm(ctx, &emptypb.Empty{})
	if err != nil {
		return "", err
	}
	alg := sigalg.Algorithm(reply.GetValue())

	c.mu.Lock()
	c.alg = alg
	c.mu.Unlock()
	return alg, nil
}

// Signer returns an identified private key whose signing delegate calls
// the remote service. No key material ever exists on the client side.
func (c *Client) Signer(id string) (*sigkey.PrivateKey, error) {
	sign := func(ctx context.Context, _ []byte, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
		raw, err := c.Sign(ctx, message)
		if err != nil {
			return nil, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-003", "remote sign failed", err)
		}
		alg, err := c.Algorithm(ctx)
		if err != nil {
			return nil, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-003", "remote sign failed", err)
		}
		buf, err := dest.Rent(ctx, len(raw))
		if err != nil {
			return nil, err
		}
		copy(buf.Bytes(), raw)
		return keymat.NewSignature(buf, sigalg.TagFor(alg, sigalg.Signing)), nil
	}
	return sigkey.NewPrivateKey(id, nil, sign)
}

// Verifier returns an identified public key whose material is fetched
// from the remote service on first use. Verification itself runs
// locally through the registry delegate for the remote algorithm.
func (c *Client) Verifier(id string) (*sigkey.PublicKey, error) {
	resolve := func(ctx context.Context) (*keymat.PublicKey, error) {
		raw, err := c.PublicKey(ctx)
		if err != nil {
			return nil, err
		}
		alg, err := c.Algorithm(ctx)
		if err != nil {
			return nil, err
		}
		buf, err := c.pool().Rent(ctx, len(raw))
		if err != nil {
			return nil, err
		}
		copy(buf.Bytes(), raw)
		return keymat.NewPublicKey(buf, sigalg.TagFor(alg, sigalg.Verification)), nil
	}
	verify := func(ctx context.Context, message, signature, publicKey []byte) (bool, error) {
		alg, err := c.Algorithm(ctx)
		if err != nil {
			return false, err
		}
		delegate, err := sigalg.ResolveVerification(alg, sigalg.Verification)
		if err != nil {
			return false, err
		}
		return delegate(ctx, message, signature, publicKey)
	}
	return sigkey.BindPublicKey(id, resolve, verify)
}

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if c.Timeout <= 0 {
		return context.WithCancel(parent)
	}
	return context.WithTimeout(parent, c.Timeout)
}

package remotesign

import (
	"bytes"
	"context"
	"crypto/rand"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"

	"sigil.co/sigil/backend/ed25519std"
	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/sigkey"
)

func startSigner(t *testing.T, pool *secmem.Pool) *Client {
	t.Helper()

	pub, priv, err := ed25519std.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	key, err := sigkey.NewPrivateKey("test-signer", nil, func(ctx context.Context, _ []byte, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
		return ed25519std.Sign(ctx, priv, message, dest)
	})
	if err != nil {
		t.Fatalf("NewPrivateKey: %v", err)
	}
	t.Cleanup(func() { key.Close() })

	lis := bufconn.Listen(1024 * 1024)
	srv := grpc.NewServer()
	RegisterSignerServer(srv, &Server{
		Key:            key,
		Pool:           pool,
		PublicKeyBytes: pub,
		Alg:            sigalg.Ed25519,
	})

	go func() {
		_ = srv.Serve(lis)
	}()
	t.Cleanup(srv.Stop)

	dialer := func(ctx context.Context, s string) (net.Conn, error) { return lis.Dial() }
	cc, err := grpc.DialContext(
		context.Background(),
		"bufnet",
		grpc.WithContextDialer(dialer),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("DialContext: %v", err)
	}
	t.Cleanup(func() { cc.Close() })

	client := NewClient(cc)
	client.Timeout = 2 * time.Second
	client.Pool = pool
	return client
}

func TestRemoteSign_RoundTrip(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()
	client := startSigner(t, pool)

	signer, err := client.Signer("remote")
	if err != nil {
		t.Fatalf("Signer: %v", err)
	}
	defer signer.Close()
	verifier, err := client.Verifier("remote")
	if err != nil {
		t.Fatalf("Verifier: %v", err)
	}
	defer verifier.Close()

	msg := []byte("remote signing round trip")
	sig, err := signer.Sign(context.Background(), msg, pool)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	defer sig.Close()

	ok, err := verifier.Verify(context.Background(), msg, sig.Bytes())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if !ok {
		t.Fatal("expected valid signature")
	}
}

func TestRemoteSign_TamperedSignatureFails(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()
	client := startSigner(t, pool)

	verifier, err := client.Verifier("remote")
	if err != nil {
		t.Fatalf("Verifier: %v", err)
	}
	defer verifier.Close()

	msg := []byte("tamper detection")
	raw, err := client.Sign(context.Background(), msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	raw[0] ^= 0xff

	ok, err := verifier.Verify(context.Background(), msg, raw)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatal("tampered signature verified")
	}
}

func TestRemoteSign_PublicKeyAndAlgorithm(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()
	client := startSigner(t, pool)

	alg, err := client.Algorithm(context.Background())
	if err != nil {
		t.Fatalf("Algorithm: %v", err)
	}
	if alg != sigalg.Ed25519 {
		t.Fatalf("algorithm = %q, want %q", alg, sigalg.Ed25519)
	}

	pub, err := client.PublicKey(context.Background())
	if err != nil {
		t.Fatalf("PublicKey: %v", err)
	}
	if len(pub) == 0 {
		t.Fatal("empty public key")
	}

	// Cached algorithm survives a second call without hitting the wire.
	again, err := client.Algorithm(context.Background())
	if err != nil || again != alg {
		t.Fatalf("cached Algorithm = %q, %v", again, err)
	}

	// Local verification against the fetched material matches the
	// remote signer's output.
	msg := []byte("fetched public key")
	raw, err := client.Sign(context.Background(), msg)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	ok, err := ed25519std.Verify(context.Background(), msg, raw, pub)
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}
	if bytes.Equal(raw, msg) {
		t.Fatal("signature equals message")
	}
}

func TestServer_MissingKey(t *testing.T) {
	srv := &Server{}
	if _, err := srv.Sign(context.Background(), nil); err == nil {
		t.Fatal("expected error from server without key")
	}
}

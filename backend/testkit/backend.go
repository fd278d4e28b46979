// Package testkit provides a conformance harness shared by every
// signing backend. A backend package's tests hand their delegates and
// key generator to RunBackendConformance and get the library-wide
// contract checked for free.
package testkit

import (
	"context"
	"crypto/rand"
	"io"
	"testing"

	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/tag"
)

// Backend describes one signing backend under test.
type Backend struct {
	Algorithm sigalg.Algorithm
	Sign      sigalg.SignFunc
	Verify    sigalg.VerifyFunc

	// Generate produces a fresh keypair in the backend's raw byte
	// formats.
	Generate func(rand io.Reader) (publicKey, privateKey []byte, err error)
}

// RunBackendConformance checks the delegate contract every backend MUST
// satisfy:
//   - a signature over fresh key material verifies;
//   - tampering one byte of the signature or the message makes
//     verification return false, not an error;
//   - the signature is pool-owned, non-empty, and tagged with the
//     backend's algorithm;
//   - a cancelled context is an error, not a false verdict.
func RunBackendConformance(t *testing.T, b Backend) {
	t.Helper()

	newKeys := func(t *testing.T) (pub, priv []byte) {
		t.Helper()
		pub, priv, err := b.Generate(rand.Reader)
		if err != nil {
			t.Fatalf("Generate: %v", err)
		}
		return pub, priv
	}

	newPool := func(t *testing.T) *secmem.Pool {
		t.Helper()
		p := secmem.New(secmem.Config{})
		t.Cleanup(func() { _ = p.Close() })
		return p
	}

	message := []byte("sigil backend conformance message")

	t.Run("SignVerifyRoundTrip", func(t *testing.T) {
		pub, priv := newKeys(t)
		pool := newPool(t)

		sig, err := b.Sign(context.Background(), priv, message, pool)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		defer sig.Close()
		if sig.Len() == 0 {
			t.Fatalf("empty signature")
		}

		ok, err := b.Verify(context.Background(), message, sig.Bytes(), pub)
		if err != nil {
			t.Fatalf("Verify: %v", err)
		}
		if !ok {
			t.Fatalf("signature did not verify")
		}
	})

	t.Run("TamperedSignatureFails", func(t *testing.T) {
		pub, priv := newKeys(t)
		pool := newPool(t)

		sig, err := b.Sign(context.Background(), priv, message, pool)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		defer sig.Close()

		tampered := make([]byte, sig.Len())
		copy(tampered, sig.Bytes())
		tampered[0] ^= 0x01

		ok, err := b.Verify(context.Background(), message, tampered, pub)
		if err != nil {
			t.Fatalf("Verify returned error for tampered signature: %v", err)
		}
		if ok {
			t.Fatalf("tampered signature verified")
		}
	})

	t.Run("TamperedMessageFails", func(t *testing.T) {
		pub, priv := newKeys(t)
		pool := newPool(t)

		sig, err := b.Sign(context.Background(), priv, message, pool)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		defer sig.Close()

		tampered := make([]byte, len(message))
		copy(tampered, message)
		tampered[len(tampered)-1] ^= 0x80

		ok, err := b.Verify(context.Background(), tampered, sig.Bytes(), pub)
		if err != nil {
			t.Fatalf("Verify returned error for tampered message: %v", err)
		}
		if ok {
			t.Fatalf("signature verified over tampered message")
		}
	})

	t.Run("SignatureTagCarriesAlgorithm", func(t *testing.T) {
		_, priv := newKeys(t)
		pool := newPool(t)

		sig, err := b.Sign(context.Background(), priv, message, pool)
		if err != nil {
			t.Fatalf("Sign: %v", err)
		}
		defer sig.Close()

		v, ok := sig.Tag().Lookup(tag.KindAlgorithm)
		if !ok {
			t.Fatalf("signature tag carries no algorithm")
		}
		if alg, _ := v.(sigalg.Algorithm); alg != b.Algorithm {
			t.Fatalf("signature algorithm = %v, want %v", v, b.Algorithm)
		}
	})

	t.Run("CancelledContext", func(t *testing.T) {
		pub, priv := newKeys(t)
		pool := newPool(t)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := b.Sign(ctx, priv, message, pool); err == nil {
			t.Fatalf("Sign accepted cancelled context")
		}
		if _, err := b.Verify(ctx, message, []byte{0}, pub); err == nil {
			t.Fatalf("Verify accepted cancelled context")
		}
	})
}

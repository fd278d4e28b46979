package ecdsap256

import (
	"context"
	"crypto/rand"
	"testing"

	"sigil.co/sigil/backend/testkit"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

func TestConformance(t *testing.T) {
	testkit.RunBackendConformance(t, testkit.Backend{
		Algorithm: sigalg.ECDSAP256,
		Sign:      Sign,
		Verify:    Verify,
		Generate:  GenerateKey,
	})
}

func TestVerify_RejectsGarbagePoint(t *testing.T) {
	_, err := Verify(context.Background(), []byte("m"), []byte("s"), []byte{0x04, 1, 2, 3})
	if !sigalg.IsKind(err, sigalg.KindBackend) {
		t.Fatalf("expected backend error for malformed point, got %v", err)
	}
}

func TestSign_RejectsShortScalar(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	_, err := Sign(context.Background(), []byte{1, 2, 3}, []byte("m"), pool)
	if sigalg.RuleID(err) != "SIGIL-BK-001" {
		t.Fatalf("expected SIGIL-BK-001, got %v", err)
	}
}

func TestSignaturesAreRandomizedButBothVerify(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	pub, priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	msg := []byte("ecdsa nonce randomization")

	a, err := Sign(context.Background(), priv, msg, pool)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	defer a.Close()
	b, err := Sign(context.Background(), priv, msg, pool)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	defer b.Close()

	for _, sig := range [][]byte{a.Bytes(), b.Bytes()} {
		ok, err := Verify(context.Background(), msg, sig, pub)
		if err != nil || !ok {
			t.Fatalf("Verify = %v, %v", ok, err)
		}
	}
}

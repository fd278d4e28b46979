package ed25519circl

import (
	"context"
	"crypto/rand"
	"testing"

	"sigil.co/sigil/backend/ed25519std"
	"sigil.co/sigil/backend/testkit"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

func TestConformance(t *testing.T) {
	testkit.RunBackendConformance(t, testkit.Backend{
		Algorithm: sigalg.Ed25519,
		Sign:      Sign,
		Verify:    Verify,
		Generate:  GenerateKey,
	})
}

// Ed25519 signatures are fully deterministic, so two providers given
// the same raw key bytes must be interchangeable in both directions.
func TestCrossBackendInterop(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	pub, priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	msg := []byte("cross-provider message")

	circlSig, err := Sign(context.Background(), priv, msg, pool)
	if err != nil {
		t.Fatalf("circl Sign: %v", err)
	}
	defer circlSig.Close()
	stdSig, err := ed25519std.Sign(context.Background(), priv, msg, pool)
	if err != nil {
		t.Fatalf("std Sign: %v", err)
	}
	defer stdSig.Close()

	if !circlSig.Equal(stdSig) {
		t.Fatalf("providers produced different signatures for the same key")
	}

	ok, err := ed25519std.Verify(context.Background(), msg, circlSig.Bytes(), pub)
	if err != nil || !ok {
		t.Fatalf("std verify of circl signature = %v, %v", ok, err)
	}
	ok, err = Verify(context.Background(), msg, stdSig.Bytes(), pub)
	if err != nil || !ok {
		t.Fatalf("circl verify of std signature = %v, %v", ok, err)
	}
}

// Importing ed25519std above installs it as the Ed25519 provider for
// this test binary; a second provider must be rejected, not silently
// swapped in.
func TestRegister_ConflictsWithInstalledProvider(t *testing.T) {
	err := Register()
	if err == nil {
		t.Fatalf("Register succeeded with another Ed25519 provider installed")
	}
	if sigalg.RuleID(err) != "SIGIL-REG-002" {
		t.Fatalf("unexpected error: %v (rule %s)", err, sigalg.RuleID(err))
	}
}

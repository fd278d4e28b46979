package ed25519std

import (
	"context"
	"crypto/rand"
	"testing"

	"sigil.co/sigil/backend/testkit"
	"sigil.co/sigil/keyid"
	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
	"sigil.co/sigil/sigkey"
)

func TestConformance(t *testing.T) {
	testkit.RunBackendConformance(t, testkit.Backend{
		Algorithm: sigalg.Ed25519,
		Sign:      Sign,
		Verify:    Verify,
		Generate:  GenerateKey,
	})
}

func TestRegistryRoundTrip(t *testing.T) {
	sign, err := sigalg.ResolveSigning(sigalg.Ed25519, sigalg.Signing)
	if err != nil {
		t.Fatalf("ResolveSigning: %v", err)
	}
	verify, err := sigalg.ResolveVerification(sigalg.Ed25519, sigalg.Verification)
	if err != nil {
		t.Fatalf("ResolveVerification: %v", err)
	}

	pub, priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	msg := []byte("resolved through the registry")
	sig, err := sign(context.Background(), priv, msg, pool)
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	defer sig.Close()

	ok, err := verify(context.Background(), msg, sig.Bytes(), pub)
	if err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}
}

func TestSeedFormPrivateKey(t *testing.T) {
	pub, priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	// The 32-byte seed form must produce the same signatures as the
	// 64-byte expanded form.
	seed := priv[:32]
	msg := []byte("seed form")
	fromSeed, err := Sign(context.Background(), seed, msg, pool)
	if err != nil {
		t.Fatalf("Sign(seed): %v", err)
	}
	defer fromSeed.Close()
	fromFull, err := Sign(context.Background(), priv, msg, pool)
	if err != nil {
		t.Fatalf("Sign(full): %v", err)
	}
	defer fromFull.Close()

	if !fromSeed.Equal(fromFull) {
		t.Fatalf("seed and expanded forms disagree")
	}
	ok, err := Verify(context.Background(), msg, fromSeed.Bytes(), pub)
	if err != nil || !ok {
		t.Fatalf("verify = %v, %v", ok, err)
	}
}

func TestIdentifiedKeyFromTag(t *testing.T) {
	pub, priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	privBuf, err := pool.Rent(context.Background(), len(priv))
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	copy(privBuf.Bytes(), priv)
	signer, err := sigkey.PrivateKeyFromTag("signer",
		keymat.NewPrivateKey(privBuf, sigalg.TagFor(sigalg.Ed25519, sigalg.Signing)))
	if err != nil {
		t.Fatalf("PrivateKeyFromTag: %v", err)
	}
	defer signer.Close()

	pubBuf, err := pool.Rent(context.Background(), len(pub))
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	copy(pubBuf.Bytes(), pub)
	verifier, err := sigkey.PublicKeyFromTag("verifier",
		keymat.NewPublicKey(pubBuf, sigalg.TagFor(sigalg.Ed25519, sigalg.Verification)))
	if err != nil {
		t.Fatalf("PublicKeyFromTag: %v", err)
	}
	defer verifier.Close()

	msg := []byte("identified key end to end")
	sig, err := signer.Sign(context.Background(), msg, pool)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	defer sig.Close()

	ok, err := verifier.Verify(context.Background(), msg, sig.Bytes())
	if err != nil || !ok {
		t.Fatalf("Verify = %v, %v", ok, err)
	}

	ok, err = verifier.Verify(context.Background(), []byte("different message"), sig.Bytes())
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if ok {
		t.Fatalf("verification succeeded for wrong message")
	}
}

func TestDerivedIdentifier(t *testing.T) {
	pub, _, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	pubBuf, err := pool.Rent(context.Background(), len(pub))
	if err != nil {
		t.Fatalf("Rent: %v", err)
	}
	copy(pubBuf.Bytes(), pub)
	verifier, err := sigkey.PublicKeyWithDerivedID(
		keymat.NewPublicKey(pubBuf, sigalg.TagFor(sigalg.Ed25519, sigalg.Verification)))
	if err != nil {
		t.Fatalf("PublicKeyWithDerivedID: %v", err)
	}
	defer verifier.Close()

	if verifier.ID() != keyid.String(pub) {
		t.Fatalf("derived ID %q != keyid %q", verifier.ID(), keyid.String(pub))
	}
}

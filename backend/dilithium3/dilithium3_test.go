package dilithium3

import (
	"context"
	"crypto/rand"
	"testing"

	"github.com/cloudflare/circl/sign/dilithium/mode3"

	"sigil.co/sigil/backend/testkit"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

func TestConformance(t *testing.T) {
	testkit.RunBackendConformance(t, testkit.Backend{
		Algorithm: sigalg.Dilithium3,
		Sign:      Sign,
		Verify:    Verify,
		Generate:  GenerateKey,
	})
}

func TestRawFormSizes(t *testing.T) {
	pub, priv, err := GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	if len(pub) != mode3.PublicKeySize {
		t.Fatalf("public key size = %d, want %d", len(pub), mode3.PublicKeySize)
	}
	if len(priv) != mode3.PrivateKeySize {
		t.Fatalf("private key size = %d, want %d", len(priv), mode3.PrivateKeySize)
	}

	pool := secmem.New(secmem.Config{})
	defer pool.Close()
	sig, err := Sign(context.Background(), priv, []byte("m"), pool)
	if err != nil {
		t.Fatalf("Sign: %v", err)
	}
	defer sig.Close()
	if sig.Len() != mode3.SignatureSize {
		t.Fatalf("signature size = %d, want %d", sig.Len(), mode3.SignatureSize)
	}
}

func TestSign_RejectsTruncatedKey(t *testing.T) {
	pool := secmem.New(secmem.Config{})
	defer pool.Close()

	_, err := Sign(context.Background(), make([]byte, 16), []byte("m"), pool)
	if sigalg.RuleID(err) != "SIGIL-BK-001" {
		t.Fatalf("expected SIGIL-BK-001, got %v", err)
	}
}

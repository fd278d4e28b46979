package keyid

import (
	"strings"
	"testing"

	"github.com/ipfs/go-cid"
)

func TestForPublicKey_Deterministic(t *testing.T) {
	key := []byte{1, 2, 3, 4, 5}

	a, err := ForPublicKey(key)
	if err != nil {
		t.Fatalf("ForPublicKey: %v", err)
	}
	b, err := ForPublicKey(key)
	if err != nil {
		t.Fatalf("ForPublicKey: %v", err)
	}
	if a != b {
		t.Fatalf("identifier not deterministic: %s vs %s", a, b)
	}

	other, err := ForPublicKey([]byte{1, 2, 3, 4, 6})
	if err != nil {
		t.Fatalf("ForPublicKey: %v", err)
	}
	if a == other {
		t.Fatalf("distinct keys produced equal identifiers")
	}
}

func TestString_RoundTripsThroughDecode(t *testing.T) {
	s := String([]byte("public key bytes"))
	if s == "" {
		t.Fatalf("String returned empty identifier")
	}
	// CIDv1 default text encoding is lowercase base32.
	if !strings.HasPrefix(s, "b") {
		t.Fatalf("unexpected identifier prefix: %q", s)
	}

	id, err := cid.Decode(s)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if id.Version() != 1 || id.Type() != cid.Raw {
		t.Fatalf("unexpected CID shape: version %d type %d", id.Version(), id.Type())
	}
}

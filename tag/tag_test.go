package tag

import "testing"

func TestLookup(t *testing.T) {
	tg := New(
		Entry{Kind: KindAlgorithm, Value: "ed25519"},
		Entry{Kind: KindPurpose, Value: "signing"},
	)

	v, ok := tg.Lookup(KindAlgorithm)
	if !ok || v != "ed25519" {
		t.Fatalf("Lookup(algorithm) = %v, %v", v, ok)
	}
	if _, ok := tg.Lookup(KindEncoding); ok {
		t.Fatalf("Lookup(encoding) should be absent")
	}
	if tg.Len() != 2 {
		t.Fatalf("Len = %d", tg.Len())
	}
}

func TestEqualAndHash_OrderIndependent(t *testing.T) {
	a := New(
		Entry{Kind: KindAlgorithm, Value: "ed25519"},
		Entry{Kind: KindPurpose, Value: "signing"},
	)
	b := New(
		Entry{Kind: KindPurpose, Value: "signing"},
		Entry{Kind: KindAlgorithm, Value: "ed25519"},
	)
	if !a.Equal(b) || !b.Equal(a) {
		t.Fatalf("equal tags compared unequal")
	}
	if a.Hash() != b.Hash() {
		t.Fatalf("equal tags hashed differently")
	}

	c := New(Entry{Kind: KindAlgorithm, Value: "ecdsa-p256"})
	if a.Equal(c) {
		t.Fatalf("distinct tags compared equal")
	}
	if a.Hash() == c.Hash() {
		t.Fatalf("distinct tags unexpectedly hashed equal")
	}
}

func TestEmpty(t *testing.T) {
	if Empty.Len() != 0 {
		t.Fatalf("Empty.Len() = %d", Empty.Len())
	}
	if !Empty.Equal(New()) {
		t.Fatalf("Empty != New()")
	}
	if _, ok := Empty.Lookup(KindAlgorithm); ok {
		t.Fatalf("Empty lookup should miss")
	}
}

func TestNew_LaterEntriesWin(t *testing.T) {
	tg := New(
		Entry{Kind: KindAlgorithm, Value: "ed25519"},
		Entry{Kind: KindAlgorithm, Value: "dilithium3"},
	)
	v, _ := tg.Lookup(KindAlgorithm)
	if v != "dilithium3" {
		t.Fatalf("Lookup = %v, want dilithium3", v)
	}
	if tg.Len() != 1 {
		t.Fatalf("Len = %d, want 1", tg.Len())
	}
}

func TestString(t *testing.T) {
	tg := New(
		Entry{Kind: KindPurpose, Value: "signing"},
		Entry{Kind: KindAlgorithm, Value: "ed25519"},
	)
	if got := tg.String(); got != "tag{algorithm=ed25519, purpose=signing}" {
		t.Fatalf("String = %q", got)
	}
	if got := Empty.String(); got != "tag{}" {
		t.Fatalf("Empty.String = %q", got)
	}
}

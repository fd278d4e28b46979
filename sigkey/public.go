package sigkey

import (
	"context"
	"sync"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/sigalg"
)

// PublicKey is an identified key bound to a verification delegate.
// It owns its key material: Close disposes it.
type PublicKey struct {
	id     string
	verify sigalg.VerifyFunc

	mu      sync.Mutex
	key     *keymat.PublicKey
	resolve func(context.Context) (*keymat.PublicKey, error)
	closed  bool
}

// NewPublicKey builds an identified public key from an explicit
// delegate, bypassing the registry.
func NewPublicKey(id string, key *keymat.PublicKey, verify sigalg.VerifyFunc) (*PublicKey, error) {
	if id == "" {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-100", "key identifier is required")
	}
	if verify == nil {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-120", "nil verification delegate")
	}
	return &PublicKey{id: id, key: key, verify: verify}, nil
}

// PublicKeyFromTag builds an identified public key by reading the
// algorithm and purpose from the key material's tag and resolving the
// delegate through the registry. When the tag carries no purpose,
// Verification is assumed.
func PublicKeyFromTag(id string, key *keymat.PublicKey) (*PublicKey, error) {
	if key == nil {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-104", "key material is required")
	}
	alg, err := tagAlgorithm(key.Tag())
	if err != nil {
		return nil, err
	}
	purpose, err := tagPurpose(key.Tag(), sigalg.Verification)
	if err != nil {
		return nil, err
	}
	verify, err := sigalg.ResolveVerification(alg, purpose)
	if err != nil {
		return nil, err
	}
	return NewPublicKey(id, key, verify)
}

// BindPublicKey builds an identified public key whose material is
// fetched lazily: resolve runs at most once, on the first Verify.
func BindPublicKey(id string, resolve func(context.Context) (*keymat.PublicKey, error), verify sigalg.VerifyFunc) (*PublicKey, error) {
	key, err := NewPublicKey(id, nil, verify)
	if err != nil {
		return nil, err
	}
	key.resolve = resolve
	return key, nil
}

// ID returns the key identifier.
func (k *PublicKey) ID() string { return k.id }

// Verify checks signature over message. An invalid signature is a
// normal (false, nil) result; errors are reserved for structural misuse.
func (k *PublicKey) Verify(ctx context.Context, message, signature []byte) (bool, error) {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return false, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-110", "verify on disposed key")
	}
	if k.key == nil && k.resolve != nil {
		material, err := k.resolve(ctx)
		if err != nil {
			k.mu.Unlock()
			return false, sigalg.WrapError(sigalg.KindKey, "SIGIL-KEY-111", "key resolution failed", err)
		}
		k.key = material
		k.resolve = nil
	}
	material := k.key
	k.mu.Unlock()

	var keyBytes []byte
	if material != nil {
		keyBytes = material.Bytes()
	}
	return k.verify(ctx, message, signature, keyBytes)
}

// Close disposes the owned key material. Idempotent.
func (k *PublicKey) Close() error {
	k.mu.Lock()
	defer k.mu.Unlock()
	if k.closed {
		return nil
	}
	k.closed = true
	k.resolve = nil
	if k.key != nil {
		return k.key.Close()
	}
	return nil
}

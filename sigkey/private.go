package sigkey

import (
	"context"
	"sync"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

// PrivateKey is an identified key bound to a signing delegate.
// It owns its key material: Close disposes it.
type PrivateKey struct {
	id   string
	sign sigalg.SignFunc

	mu      sync.Mutex
	key     *keymat.PrivateKey
	resolve func(context.Context) (*keymat.PrivateKey, error)
	closed  bool
}

// NewPrivateKey builds an identified private key from an explicit
// delegate, bypassing the registry. key may be nil when the delegate
// does not need local key material (remote or hardware signers).
func NewPrivateKey(id string, key *keymat.PrivateKey, sign sigalg.SignFunc) (*PrivateKey, error) {
	if id == "" {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-100", "key identifier is required")
	}
	if sign == nil {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-120", "nil signing delegate")
	}
	return &PrivateKey{id: id, key: key, sign: sign}, nil
}

// PrivateKeyFromTag builds an identified private key by reading the
// algorithm and purpose from the key material's tag and resolving the
// delegate through the registry. When the tag carries no purpose,
// Signing is assumed.
func PrivateKeyFromTag(id string, key *keymat.PrivateKey) (*PrivateKey, error) {
	if key == nil {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-104", "key material is required")
	}
	alg, err := tagAlgorithm(key.Tag())
	if err != nil {
		return nil, err
	}
	purpose, err := tagPurpose(key.Tag(), sigalg.Signing)
	if err != nil {
		return nil, err
	}
	sign, err := sigalg.ResolveSigning(alg, purpose)
	if err != nil {
		return nil, err
	}
	return NewPrivateKey(id, key, sign)
}

// BindPrivateKey builds an identified private key whose material is
// fetched lazily: resolve runs at most once, on the first Sign. resolve
// may be nil when the delegate needs no local key bytes at all.
func BindPrivateKey(id string, resolve func(context.Context) (*keymat.PrivateKey, error), sign sigalg.SignFunc) (*PrivateKey, error) {
	key, err := NewPrivateKey(id, nil, sign)
	if err != nil {
		return nil, err
	}
	key.resolve = resolve
	return key, nil
}

// ID returns the key identifier.
func (k *PrivateKey) ID() string { return k.id }

// Sign produces a signature over message. The signature is rented from
// dest and owned by the caller, who must release it.
func (k *PrivateKey) Sign(ctx context.Context, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
	k.mu.Lock()
	if k.closed {
		k.mu.Unlock()
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-110", "sign on disposed key")
	}
	if k.key == nil && k.resolve != nil {
		material, err := k.resolve(ctx)
		if err != nil {
			k.mu.Unlock()
			return nil, sigalg.WrapError(sigalg.KindKey, "SIGIL-KEY-111", "key resolution failed", err)
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
	return k.sign(ctx, keyBytes, message, dest)
}

// Close disposes the owned key material. Idempotent.
func (k *PrivateKey) Close() error {
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

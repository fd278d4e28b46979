// Package sigalg defines the algorithm and purpose descriptors, the
// asynchronous delegate shapes for signing and verification, and the
// process-wide registry that maps an (Algorithm, Purpose) pair to one
// delegate.
//
// The package never names a concrete cryptographic implementation.
// Backend packages (see backend/...) register their delegates from their
// own init path; a binary enables a backend by importing it, often as a
// blank import. The set of registered algorithms is therefore statically
// visible in the importing binary.
package sigalg

import (
	"context"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/tag"
)

// Algorithm identifies a signature algorithm by value.
type Algorithm string

const (
	Ed25519    Algorithm = "ed25519"
	ECDSAP256  Algorithm = "ecdsa-p256"
	RSAPSS     Algorithm = "rsa-pss"
	Dilithium3 Algorithm = "dilithium3"
)

// Purpose distinguishes what a piece of key material is for. The same
// algorithm registers separate delegates per purpose.
type Purpose string

const (
	Signing      Purpose = "signing"
	Verification Purpose = "verification"
)

// SignFunc is the delegate shape for signing. privateKey may be nil for
// bound delegates whose key material lives elsewhere (remote or hardware
// signers). The returned Signature is rented from dest and owned by the
// caller.
//
// Implementations may suspend on ctx (I/O-bound or CPU-bound work);
// cancellation must not leak pool segments.
type SignFunc func(ctx context.Context, privateKey, message []byte, dest *secmem.Pool) (*keymat.Signature, error)

// VerifyFunc is the delegate shape for verification. A signature that
// fails to verify is reported as (false, nil), never as an error; errors
// are reserved for structural misuse such as malformed key material or
// cancellation.
type VerifyFunc func(ctx context.Context, message, signature, publicKey []byte) (bool, error)

// TagFor builds the canonical metadata bag for key or signature material
// belonging to an algorithm and purpose.
func TagFor(alg Algorithm, purpose Purpose) tag.Tag {
	return tag.New(
		tag.Entry{Kind: tag.KindAlgorithm, Value: alg},
		tag.Entry{Kind: tag.KindPurpose, Value: purpose},
	)
}

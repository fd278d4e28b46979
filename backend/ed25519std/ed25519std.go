// Package ed25519std provides the Ed25519 signing backend backed by the
// standard library. Importing the package registers its delegates for
// (ed25519, signing) and (ed25519, verification).
//
// Raw formats: the private key is either a 32-byte seed or the 64-byte
// expanded form; the public key is 32 bytes; signatures are 64 bytes.
package ed25519std

import (
	"context"
	"crypto/ed25519"
	"fmt"
	"io"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

func init() {
	sigalg.MustRegisterSigning(sigalg.Ed25519, sigalg.Signing, Sign)
	sigalg.MustRegisterVerification(sigalg.Ed25519, sigalg.Verification, Verify)
}

// GenerateKey returns a fresh keypair in raw form: 32-byte public key,
// 64-byte private key.
func GenerateKey(rand io.Reader) (publicKey, privateKey []byte, err error) {
	pub, priv, err := ed25519.GenerateKey(rand)
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

func privateFrom(raw []byte) (ed25519.PrivateKey, error) {
	switch len(raw) {
	case ed25519.SeedSize:
		return ed25519.NewKeyFromSeed(raw), nil
	case ed25519.PrivateKeySize:
		return ed25519.PrivateKey(raw), nil
	default:
		return nil, sigalg.NewError(sigalg.KindBackend, "SIGIL-BK-001",
			fmt.Sprintf("ed25519 private key must be %d or %d bytes, got %d",
				ed25519.SeedSize, ed25519.PrivateKeySize, len(raw)))
	}
}

// Sign implements sigalg.SignFunc.
func Sign(ctx context.Context, privateKey, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	priv, err := privateFrom(privateKey)
	if err != nil {
		return nil, err
	}
	raw := ed25519.Sign(priv, message)

	buf, err := dest.Rent(ctx, len(raw))
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), raw)
	return keymat.NewSignature(buf, sigalg.TagFor(sigalg.Ed25519, sigalg.Signing)), nil
}

// Verify implements sigalg.VerifyFunc. A malformed or mismatched
// signature is a normal false verdict; a malformed public key is a
// structural error.
func Verify(ctx context.Context, message, signature, publicKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	if len(publicKey) != ed25519.PublicKeySize {
		return false, sigalg.NewError(sigalg.KindBackend, "SIGIL-BK-002",
			fmt.Sprintf("ed25519 public key must be %d bytes, got %d",
				ed25519.PublicKeySize, len(publicKey)))
	}
	if len(signature) != ed25519.SignatureSize {
		return false, nil
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature), nil
}

// Package dilithium3 provides the post-quantum Dilithium3 signing
// backend backed by cloudflare/circl. Importing the package registers
// its delegates for (dilithium3, signing) and (dilithium3, verification).
//
// Raw formats: the binary marshalling of circl's mode3 keys. Messages
// are digested with SHA3-256 before signing.
package dilithium3

import (
	"context"
	"fmt"
	"io"

	"github.com/cloudflare/circl/sign/dilithium/mode3"
	"golang.org/x/crypto/sha3"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

func init() {
	sigalg.MustRegisterSigning(sigalg.Dilithium3, sigalg.Signing, Sign)
	sigalg.MustRegisterVerification(sigalg.Dilithium3, sigalg.Verification, Verify)
}

// GenerateKey returns a fresh keypair in raw binary form.
func GenerateKey(random io.Reader) (publicKey, privateKey []byte, err error) {
	pk, sk, err := mode3.GenerateKey(random)
	if err != nil {
		return nil, nil, err
	}
	pub, err := pk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	priv, err := sk.MarshalBinary()
	if err != nil {
		return nil, nil, err
	}
	return pub, priv, nil
}

// Sign implements sigalg.SignFunc.
func Sign(ctx context.Context, privateKey, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var sk mode3.PrivateKey
	if err := sk.UnmarshalBinary(privateKey); err != nil {
		return nil, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-001",
			fmt.Sprintf("dilithium3 private key must be %d bytes", mode3.PrivateKeySize), err)
	}
	digest := sha3.Sum256(message)
	raw := make([]byte, mode3.SignatureSize)
	mode3.SignTo(&sk, digest[:], raw)

	buf, err := dest.Rent(ctx, len(raw))
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), raw)
	return keymat.NewSignature(buf, sigalg.TagFor(sigalg.Dilithium3, sigalg.Signing)), nil
}

// Verify implements sigalg.VerifyFunc.
func Verify(ctx context.Context, message, signature, publicKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	var pk mode3.PublicKey
	if err := pk.UnmarshalBinary(publicKey); err != nil {
		return false, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-002",
			fmt.Sprintf("dilithium3 public key must be %d bytes", mode3.PublicKeySize), err)
	}
	if len(signature) != mode3.SignatureSize {
		return false, nil
	}
	digest := sha3.Sum256(message)
	return mode3.Verify(&pk, digest[:], signature), nil
}

// Package ecdsap256 provides the ECDSA P-256 signing backend backed by
// the standard library. Importing the package registers its delegates
// for (ecdsa-p256, signing) and (ecdsa-p256, verification).
//
// Raw formats: the private key is the 32-byte big-endian scalar; the
// public key is the 65-byte uncompressed SEC1 point; signatures are
// ASN.1 DER as produced by crypto/ecdsa. Messages are digested with
// SHA-256 before signing.
package ecdsap256

import (
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/sha256"
	"fmt"
	"io"
	"math/big"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

const scalarSize = 32

func init() {
	sigalg.MustRegisterSigning(sigalg.ECDSAP256, sigalg.Signing, Sign)
	sigalg.MustRegisterVerification(sigalg.ECDSAP256, sigalg.Verification, Verify)
}

// GenerateKey returns a fresh keypair in raw form: 65-byte uncompressed
// public point, 32-byte private scalar.
func GenerateKey(random io.Reader) (publicKey, privateKey []byte, err error) {
	key, err := ecdsa.GenerateKey(elliptic.P256(), random)
	if err != nil {
		return nil, nil, err
	}
	priv := key.D.FillBytes(make([]byte, scalarSize))
	pub := elliptic.Marshal(elliptic.P256(), key.X, key.Y)
	return pub, priv, nil
}

func privateFrom(raw []byte) (*ecdsa.PrivateKey, error) {
	if len(raw) != scalarSize {
		return nil, sigalg.NewError(sigalg.KindBackend, "SIGIL-BK-001",
			fmt.Sprintf("p-256 private key must be %d bytes, got %d", scalarSize, len(raw)))
	}
	curve := elliptic.P256()
	d := new(big.Int).SetBytes(raw)
	if d.Sign() == 0 || d.Cmp(curve.Params().N) >= 0 {
		return nil, sigalg.NewError(sigalg.KindBackend, "SIGIL-BK-001",
			"p-256 private scalar out of range")
	}
	key := &ecdsa.PrivateKey{D: d}
	key.Curve = curve
	key.X, key.Y = curve.ScalarBaseMult(raw)
	return key, nil
}

// Sign implements sigalg.SignFunc.
func Sign(ctx context.Context, privateKey, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := privateFrom(privateKey)
	if err != nil {
		return nil, err
	}
	digest := sha256.Sum256(message)
	raw, err := ecdsa.SignASN1(rand.Reader, key, digest[:])
	if err != nil {
		return nil, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-003", "p-256 signing failed", err)
	}

	buf, err := dest.Rent(ctx, len(raw))
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), raw)
	return keymat.NewSignature(buf, sigalg.TagFor(sigalg.ECDSAP256, sigalg.Signing)), nil
}

// Verify implements sigalg.VerifyFunc.
func Verify(ctx context.Context, message, signature, publicKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	x, y := elliptic.Unmarshal(elliptic.P256(), publicKey)
	if x == nil {
		return false, sigalg.NewError(sigalg.KindBackend, "SIGIL-BK-002",
			"p-256 public key is not a valid uncompressed point")
	}
	pub := &ecdsa.PublicKey{Curve: elliptic.P256(), X: x, Y: y}
	digest := sha256.Sum256(message)
	return ecdsa.VerifyASN1(pub, digest[:], signature), nil
}

// Package rsapss provides the RSA-PSS signing backend backed by the
// standard library. Importing the package registers its delegates for
// (rsa-pss, signing) and (rsa-pss, verification).
//
// Raw formats: PKCS#1 DER for both keys. Messages are digested with
// SHA-256; PSS salt length is the digest length.
package rsapss

import (
	"context"
	"crypto"
	"crypto/rand"
	"crypto/rsa"
	"crypto/sha256"
	"crypto/x509"
	"io"

	"sigil.co/sigil/keymat"
	"sigil.co/sigil/secmem"
	"sigil.co/sigil/sigalg"
)

// KeyBits is the modulus size GenerateKey produces.
const KeyBits = 2048

func init() {
	sigalg.MustRegisterSigning(sigalg.RSAPSS, sigalg.Signing, Sign)
	sigalg.MustRegisterVerification(sigalg.RSAPSS, sigalg.Verification, Verify)
}

// GenerateKey returns a fresh keypair in raw form: PKCS#1 DER public
// key, PKCS#1 DER private key.
func GenerateKey(random io.Reader) (publicKey, privateKey []byte, err error) {
	key, err := rsa.GenerateKey(random, KeyBits)
	if err != nil {
		return nil, nil, err
	}
	return x509.MarshalPKCS1PublicKey(&key.PublicKey), x509.MarshalPKCS1PrivateKey(key), nil
}

// Sign implements sigalg.SignFunc.
func Sign(ctx context.Context, privateKey, message []byte, dest *secmem.Pool) (*keymat.Signature, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key, err := x509.ParsePKCS1PrivateKey(privateKey)
	if err != nil {
		return nil, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-001",
			"rsa private key is not valid PKCS#1 DER", err)
	}
	digest := sha256.Sum256(message)
	raw, err := rsa.SignPSS(rand.Reader, key, crypto.SHA256, digest[:], nil)
	if err != nil {
		return nil, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-003", "rsa-pss signing failed", err)
	}

	buf, err := dest.Rent(ctx, len(raw))
	if err != nil {
		return nil, err
	}
	copy(buf.Bytes(), raw)
	return keymat.NewSignature(buf, sigalg.TagFor(sigalg.RSAPSS, sigalg.Signing)), nil
}

// Verify implements sigalg.VerifyFunc.
func Verify(ctx context.Context, message, signature, publicKey []byte) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	pub, err := x509.ParsePKCS1PublicKey(publicKey)
	if err != nil {
		return false, sigalg.WrapError(sigalg.KindBackend, "SIGIL-BK-002",
			"rsa public key is not valid PKCS#1 DER", err)
	}
	digest := sha256.Sum256(message)
	if err := rsa.VerifyPSS(pub, crypto.SHA256, digest[:], signature, nil); err != nil {
		return false, nil
	}
	return true, nil
}

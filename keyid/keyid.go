// Package keyid derives stable identifiers for public keys. An
// identifier is a CIDv1 over the raw public key bytes ("raw" multicodec,
// sha2-256 multihash), so any party holding the same key bytes derives
// the same identifier without coordination.
package keyid

import (
	"github.com/ipfs/go-cid"
	"github.com/multiformats/go-multihash"
)

// ForPublicKey returns the CIDv1 (raw + sha2-256) identifier for raw
// public key bytes.
func ForPublicKey(publicKey []byte) (cid.Cid, error) {
	sum, err := multihash.Sum(publicKey, multihash.SHA2_256, -1)
	if err != nil {
		return cid.Undef, err
	}
	return cid.NewCidV1(cid.Raw, sum), nil
}

// String returns the textual identifier for raw public key bytes.
func String(publicKey []byte) string {
	id, err := ForPublicKey(publicKey)
	if err != nil {
		// multihash.Sum only errors for invalid inputs; with SHA2_256
		// and -1 length, this should be unreachable.
		return ""
	}
	return id.String()
}

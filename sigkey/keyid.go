package sigkey

import (
	"sigil.co/sigil/keyid"
	"sigil.co/sigil/keymat"
	"sigil.co/sigil/sigalg"
)

// PublicKeyWithDerivedID builds an identified public key like
// PublicKeyFromTag, deriving the identifier from the key material
// itself. The same public key bytes always yield the same identifier.
func PublicKeyWithDerivedID(key *keymat.PublicKey) (*PublicKey, error) {
	if key == nil {
		return nil, sigalg.NewError(sigalg.KindKey, "SIGIL-KEY-104", "key material is required")
	}
	return PublicKeyFromTag(keyid.String(key.Bytes()), key)
}

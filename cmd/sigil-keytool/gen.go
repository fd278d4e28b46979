package main

import (
	"io"

	"sigil.co/sigil/backend/dilithium3"
	"sigil.co/sigil/backend/ecdsap256"
	"sigil.co/sigil/backend/ed25519std"
	"sigil.co/sigil/backend/rsapss"
	"sigil.co/sigil/sigalg"
)

// generators maps each built-in algorithm to its raw keypair generator.
var generators = map[sigalg.Algorithm]func(rand io.Reader) (pub, priv []byte, err error){
	sigalg.Ed25519:    ed25519std.GenerateKey,
	sigalg.ECDSAP256:  ecdsap256.GenerateKey,
	sigalg.RSAPSS:     rsapss.GenerateKey,
	sigalg.Dilithium3: dilithium3.GenerateKey,
}

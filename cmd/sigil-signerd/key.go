package main

import (
	"crypto/ed25519"
	"fmt"
)

// publicKeyBytes derives the raw Ed25519 public key from stored seed
// material.
func publicKeyBytes(seed []byte) ([]byte, error) {
	if len(seed) != ed25519.SeedSize {
		return nil, fmt.Errorf("expected %d-byte seed, got %d", ed25519.SeedSize, len(seed))
	}
	priv := ed25519.NewKeyFromSeed(seed)
	return priv.Public().(ed25519.PublicKey), nil
}

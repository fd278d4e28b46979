// Package keystore provides a simple local-first store for Ed25519
// seeds.
//
// Features:
//   - Stores seeds on the local filesystem (0700 directories, 0600 files)
//   - Generates deterministic role-scoped subkeys from a root seed
//   - Loads seeds directly into pool-owned key material
//
// The store is a leaf convenience for tools and daemons; the library
// core does not depend on it and does not persist keys.
package keystore

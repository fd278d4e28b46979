// Package keymat defines the ownership-tracked value types for raw
// cryptographic material: PrivateKey, PublicKey, and Signature. Each
// wraps exactly one pool-owned secmem.Buffer plus one tag.Tag.
//
// Equality is defined over byte content only — two values built from
// byte-identical content compare equal even when their tags differ — and
// comparison is constant-time. String renderings never leak the full
// content: they show a byte count and a short hex preview.
//
// Closing a value releases its buffer back to the pool and marks the
// value inert. Any further access to the bytes panics; a second Close is
// a no-op. Access after release is a programming error, not a
// recoverable condition.
package keymat

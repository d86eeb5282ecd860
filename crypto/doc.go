// Package crypto contains the cryptographic routines used by
// avltree-go, to:
// - hash arbitrary data (`Digest`) with the default tree hasher
// - generate a random slice of bytes
// - sign data and verify signatures using ed25519 (see crypto/sign).
//
// Tree hashers live in crypto/hashers; the default is BLAKE2b-256.
package crypto

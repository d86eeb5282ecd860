// Package sign wraps the ed25519 signature scheme used to sign
// published tree digests.
package sign

import (
	"crypto/ed25519"
	"io"
)

const (
	// PrivateKeySize is the size of a serialized private key in bytes.
	PrivateKeySize = ed25519.PrivateKeySize
	// PublicKeySize is the size of a serialized public key in bytes.
	PublicKeySize = ed25519.PublicKeySize
	// SignatureSize is the size of a signature in bytes.
	SignatureSize = ed25519.SignatureSize
)

// PrivateKey wraps the ed25519 private key type.
type PrivateKey ed25519.PrivateKey

// PublicKey wraps the ed25519 public key type.
type PublicKey ed25519.PublicKey

// GenerateKey generates a fresh keypair using randomness from rnd,
// or from crypto/rand when rnd is nil, and returns the private key.
func GenerateKey(rnd io.Reader) (PrivateKey, error) {
	_, sk, err := ed25519.GenerateKey(rnd)
	return PrivateKey(sk), err
}

// Sign returns the signature of the message.
func (key PrivateKey) Sign(message []byte) []byte {
	return ed25519.Sign(ed25519.PrivateKey(key), message)
}

// Public returns the public key corresponding to the private key.
func (key PrivateKey) Public() (PublicKey, bool) {
	pk, ok := ed25519.PrivateKey(key).Public().(ed25519.PublicKey)
	return PublicKey(pk), ok
}

// Verify reports whether sig is a valid signature of the message
// under the public key.
func (pk PublicKey) Verify(message, sig []byte) bool {
	if len(pk) != PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(pk), message, sig)
}

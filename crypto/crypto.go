package crypto

import (
	"crypto/rand"

	"github.com/ergoplatform/avltree-go/crypto/hashers"
	"github.com/ergoplatform/avltree-go/crypto/hashers/blake2b256"
)

const (
	// HashSizeByte is the size of the default hash output in bytes.
	HashSizeByte = 32
	// HashID identifies the default hash as a string.
	HashID = blake2b256.Blake2b256
)

// NewDefaultHasher returns an instance of the default tree hasher.
func NewDefaultHasher() hashers.TreeHasher {
	return blake2b256.New()
}

// Digest hashes all passed byte slices using the default hasher.
// The passed slices won't be mutated.
func Digest(ms ...[]byte) []byte {
	return blake2b256.New().Digest(ms...)
}

// MakeRand returns a random slice of bytes.
// It returns an error if there was a problem while generating
// the random slice.
// The system PRNG output is hashed before it is returned, so raw
// PRNG bytes never leave the process.
func MakeRand() ([]byte, error) {
	r := make([]byte, HashSizeByte)
	if _, err := rand.Read(r); err != nil {
		return nil, err
	}
	return Digest(r), nil
}

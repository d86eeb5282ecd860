// Package blake2b256 implements the default tree hasher, BLAKE2b-256.
package blake2b256

import (
	"github.com/ergoplatform/avltree-go/crypto/hashers"
	"golang.org/x/crypto/blake2b"
)

func init() {
	hashers.RegisterHasher(Blake2b256, New)
}

// Blake2b256 is the identity of the BLAKE2b hashing strategy with a
// 256-bit output length.
const Blake2b256 = "BLAKE2b-256"

type hasher struct{}

// New returns an instance of BLAKE2b-256.
func New() hashers.TreeHasher {
	return &hasher{}
}

func (hasher) ID() string {
	return Blake2b256
}

func (hasher) Size() int {
	return blake2b.Size256
}

// Digest hashes the concatenation of all passed byte slices.
// The passed slices won't be mutated.
func (hasher) Digest(ms ...[]byte) []byte {
	size := 0
	for _, m := range ms {
		size += len(m)
	}
	buf := make([]byte, 0, size)
	for _, m := range ms {
		buf = append(buf, m...)
	}
	sum := blake2b.Sum256(buf)
	return sum[:]
}

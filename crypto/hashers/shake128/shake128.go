// Package shake128 implements an alternate tree hasher based on the
// SHAKE128 extendable-output function with a 256-bit output length.
package shake128

import (
	"github.com/ergoplatform/avltree-go/crypto/hashers"
	"golang.org/x/crypto/sha3"
)

func init() {
	hashers.RegisterHasher(Shake128, New)
}

// Shake128 is the identity of the SHAKE128 hashing strategy.
const Shake128 = "SHAKE128"

// hashSizeByte is the size of the hash output in bytes.
const hashSizeByte = 32

type hasher struct{}

// New returns an instance of SHAKE128.
func New() hashers.TreeHasher {
	return &hasher{}
}

func (hasher) ID() string {
	return Shake128
}

func (hasher) Size() int {
	return hashSizeByte
}

// Digest hashes all passed byte slices. The passed slices won't be mutated.
func (hasher) Digest(ms ...[]byte) []byte {
	h := sha3.NewShake128()
	for _, m := range ms {
		h.Write(m)
	}
	ret := make([]byte, hashSizeByte)
	h.Read(ret)
	return ret
}

// Package hashers defines the hash function interface used to label
// authenticated tree nodes, and a registry of implementations.
package hashers

import "fmt"

// TreeHasher provides the hash function for computing node labels.
// The tree core treats it as an opaque collision-resistant function;
// a tree and the verifiers of its proofs must use the same hasher.
type TreeHasher interface {
	// ID returns the name of the cryptographic hash function.
	ID() string
	// Size returns the size of the hash output in bytes.
	Size() int
	// Digest hashes all passed byte slices. The passed slices won't be mutated.
	Digest(ms ...[]byte) []byte
}

var hashers = make(map[string]TreeHasher)

// RegisterHasher registers a hasher for use.
func RegisterHasher(h string, f func() TreeHasher) {
	if _, ok := hashers[h]; ok {
		panic(fmt.Sprintf("%s is already registered", h))
	}
	hashers[h] = f()
}

// NewTreeHasher returns a registered TreeHasher identified by the given
// string. If no such TreeHasher exists, it returns an error.
func NewTreeHasher(h string) (TreeHasher, error) {
	if f, ok := hashers[h]; ok {
		return f, nil
	}
	return nil, fmt.Errorf("%s is an unknown hasher", h)
}

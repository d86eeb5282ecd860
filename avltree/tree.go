package avltree

import (
	"fmt"

	"github.com/ergoplatform/avltree-go/crypto"
	"github.com/ergoplatform/avltree-go/crypto/hashers"
)

const (
	// DefaultKeyLength is the key length in bytes used when no
	// WithKeyLength option is given.
	DefaultKeyLength = 32

	// MaxHeight is the largest tree height the digest's trailing height
	// byte can carry.
	MaxHeight = 255
)

// treeContext holds the parameters shared by a tree and the proofs it
// produces. A prover and the verifiers of its proofs must agree on all
// of them.
type treeContext struct {
	hasher           hashers.TreeHasher
	keyLength        int
	fixedValueLength int // 0 means variable-length values
	minKey           []byte
	maxKey           []byte

	// verifier-side batch bounds; 0 means unbounded
	maxOperations int
	maxDeletes    int

	// current copy-on-write generation; prover-side only
	gen uint64
}

// An Option configures a Prover or Verifier at construction time.
type Option func(*treeContext)

// WithHasher selects the tree hasher. Defaults to BLAKE2b-256.
func WithHasher(h hashers.TreeHasher) Option {
	return func(c *treeContext) { c.hasher = h }
}

// WithKeyLength fixes the length in bytes of every key in the tree.
// Defaults to DefaultKeyLength.
func WithKeyLength(n int) Option {
	return func(c *treeContext) { c.keyLength = n }
}

// WithFixedValueLength requires every inserted value to be exactly n
// bytes. By default values are variable-length.
func WithFixedValueLength(n int) Option {
	return func(c *treeContext) { c.fixedValueLength = n }
}

// WithMaxOperations bounds the number of operations a Verifier accepts
// in a single Verify call. Provers ignore it.
func WithMaxOperations(n int) Option {
	return func(c *treeContext) { c.maxOperations = n }
}

// WithMaxDeletes bounds the number of Remove and RemoveIfExists
// operations a Verifier accepts in a single Verify call. Provers
// ignore it.
func WithMaxDeletes(n int) Option {
	return func(c *treeContext) { c.maxDeletes = n }
}

func newTreeContext(opts []Option) (*treeContext, error) {
	c := &treeContext{
		hasher:    crypto.NewDefaultHasher(),
		keyLength: DefaultKeyLength,
		gen:       1,
	}
	for _, opt := range opts {
		opt(c)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	c.minKey = make([]byte, c.keyLength)
	c.maxKey = make([]byte, c.keyLength)
	for i := range c.maxKey {
		c.maxKey[i] = 0xFF
	}
	return c, nil
}

// validate rejects parameter combinations no tree can satisfy.
func (c *treeContext) validate() error {
	if c.hasher == nil {
		return fmt.Errorf("[avltree] tree hasher must not be nil")
	}
	if c.keyLength < 1 {
		return fmt.Errorf("[avltree] key length %d is not positive", c.keyLength)
	}
	if c.fixedValueLength < 0 {
		return fmt.Errorf("[avltree] fixed value length %d is negative", c.fixedValueLength)
	}
	if c.maxOperations < 0 {
		return fmt.Errorf("[avltree] operation bound %d is negative", c.maxOperations)
	}
	if c.maxDeletes < 0 {
		return fmt.Errorf("[avltree] deletion bound %d is negative", c.maxDeletes)
	}
	return nil
}

// labelLength returns the length in bytes of node labels.
func (c *treeContext) labelLength() int {
	return c.hasher.Size()
}

// digestLength returns the length in bytes of tree digests: one label
// plus the trailing height byte.
func (c *treeContext) digestLength() int {
	return c.labelLength() + 1
}

// computeDigest encodes the digest of a tree with the given root and
// height: the root label followed by the height byte.
func (c *treeContext) computeDigest(root node, height int) []byte {
	lbl := root.label(c.hasher)
	d := make([]byte, len(lbl)+1)
	copy(d, lbl)
	d[len(lbl)] = byte(height)
	return d
}

// newSentinel returns a fresh minimum-key sentinel leaf. It anchors the
// nextLeafKey chain: an otherwise empty tree consists of just this
// leaf, whose successor is the maximum sentinel key.
func (c *treeContext) newSentinel() *leafNode {
	return &leafNode{
		key:         append([]byte(nil), c.minKey...),
		value:       []byte{},
		nextLeafKey: append([]byte(nil), c.maxKey...),
		gen:         c.gen,
	}
}

// mutableLeaf returns n if it belongs to the current generation, or a
// fresh copy stamped with it. The returned leaf is safe to mutate
// without disturbing committed snapshots; its label cache is cleared.
func (c *treeContext) mutableLeaf(n *leafNode) *leafNode {
	if n.gen == c.gen {
		n.lbl = nil
		return n
	}
	return &leafNode{
		key:         n.key,
		value:       n.value,
		nextLeafKey: n.nextLeafKey,
		gen:         c.gen,
	}
}

// mutableInternal returns n if it belongs to the current generation, or
// a fresh copy stamped with it.
func (c *treeContext) mutableInternal(n *internalNode) *internalNode {
	if n.gen == c.gen {
		n.lbl = nil
		return n
	}
	return &internalNode{
		key:     n.key,
		balance: n.balance,
		left:    n.left,
		right:   n.right,
		gen:     c.gen,
	}
}

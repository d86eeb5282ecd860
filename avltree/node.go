package avltree

import "github.com/ergoplatform/avltree-go/crypto/hashers"

// Domain separation prefixes for node labels.
const (
	leafPrefix     byte = 0x00
	internalPrefix byte = 0x01
)

// node is the closed variant set of tree nodes. The prover's live tree
// consists of leafNodes and internalNodes; the verifier additionally
// uses labelNodes for subtrees it knows only by label.
type node interface {
	// label returns the node's label, computing and caching it with h
	// if no cached value is present.
	label(h hashers.TreeHasher) []byte
}

// A leafNode stores one key/value pair and links to the key of its
// in-order successor leaf. The leftmost leaf is a permanent sentinel
// carrying the minimum key; the last leaf's nextLeafKey is the maximum
// sentinel key.
type leafNode struct {
	key         []byte
	value       []byte
	nextLeafKey []byte

	lbl []byte // cached label; nil when stale
	gen uint64
}

func (n *leafNode) label(h hashers.TreeHasher) []byte {
	if n.lbl == nil {
		n.lbl = h.Digest([]byte{leafPrefix}, n.key, n.nextLeafKey, n.value)
	}
	return n.lbl
}

// An internalNode routes lookups: keys strictly below its separator key
// belong to the left subtree. The separator equals the minimum key of
// the right subtree. Separators are never hashed, so verifier-side
// internal nodes leave key nil and navigate by recorded directions.
// balance is height(left) - height(right) and stays within {-1, 0, +1}.
type internalNode struct {
	key     []byte
	balance int8
	left    node
	right   node

	lbl []byte // cached label; nil when stale
	gen uint64
}

func (n *internalNode) label(h hashers.TreeHasher) []byte {
	if n.lbl == nil {
		n.lbl = h.Digest([]byte{internalPrefix}, []byte{byte(n.balance)},
			n.left.label(h), n.right.label(h))
	}
	return n.lbl
}

// A labelNode stands in for a subtree the verifier knows only by label.
// Rotations move it without inspecting it; when its content is needed
// the proof stream must supply an expansion record for it.
type labelNode struct {
	lbl []byte
}

func (n *labelNode) label(hashers.TreeHasher) []byte {
	return n.lbl
}

// child returns the left or right child of n.
func (n *internalNode) child(right bool) node {
	if right {
		return n.right
	}
	return n.left
}

// setChild replaces the left or right child of n and invalidates the
// cached label.
func (n *internalNode) setChild(right bool, c node) {
	if right {
		n.right = c
	} else {
		n.left = c
	}
	n.lbl = nil
}

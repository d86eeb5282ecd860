package avltree

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/ergoplatform/avltree-go/crypto"
)

// testKey derives a fixed-length key from an index by hashing it, so
// keys spread over the whole key space in no particular order.
func testKey(i int) []byte {
	return crypto.Digest([]byte(fmt.Sprintf("key-%d", i)))
}

func testValue(i int) []byte {
	return crypto.Digest([]byte(fmt.Sprintf("value-%d", i)))[:8]
}

func newTestProver(t *testing.T, opts ...Option) *Prover {
	t.Helper()
	p, err := NewProver(opts...)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func mustPerform(t *testing.T, p *Prover, ops ...Operation) []OperationResult {
	t.Helper()
	results, err := p.Perform(ops)
	if err != nil {
		t.Fatal(err)
	}
	for i, res := range results {
		if res.Err != nil {
			t.Fatalf("operation %d: %v", i, res.Err)
		}
	}
	return results
}

// checkTree fails the test if any structural invariant of the prover's
// tree is broken: cached balances must match recomputed subtree heights
// and stay within one, every separator must equal the minimum key of
// its right subtree, and the leaves must form an ordered chain from the
// minimum sentinel key to the maximum one.
func checkTree(t *testing.T, p *Prover) {
	t.Helper()
	var leaves []*leafNode
	var walk func(n node) int
	walk = func(n node) int {
		switch n := n.(type) {
		case *leafNode:
			leaves = append(leaves, n)
			return 0
		case *internalNode:
			hl := walk(n.left)
			hr := walk(n.right)
			if n.balance < -1 || n.balance > 1 {
				t.Fatalf("balance %d out of range", n.balance)
			}
			if int(n.balance) != hl-hr {
				t.Fatalf("stored balance %d, subtree heights %d and %d", n.balance, hl, hr)
			}
			if !bytes.Equal(minLeaf(n.right).key, n.key) {
				t.Fatalf("separator %x is not the minimum of its right subtree", n.key)
			}
			if hr > hl {
				return hr + 1
			}
			return hl + 1
		}
		t.Fatalf("unexpected node type %T", n)
		return 0
	}
	height := walk(p.root)
	if height != p.height {
		t.Fatalf("stored height %d, walked height %d", p.height, height)
	}

	if !bytes.Equal(leaves[0].key, p.ctx.minKey) {
		t.Fatal("leftmost leaf is not the sentinel")
	}
	for i, l := range leaves {
		if i+1 < len(leaves) {
			if bytes.Compare(l.key, leaves[i+1].key) >= 0 {
				t.Fatal("leaf keys out of order")
			}
			if !bytes.Equal(l.nextLeafKey, leaves[i+1].key) {
				t.Fatalf("leaf %x points at %x, expected %x",
					l.key, l.nextLeafKey, leaves[i+1].key)
			}
		} else if !bytes.Equal(l.nextLeafKey, p.ctx.maxKey) {
			t.Fatal("last leaf does not point at the maximum key")
		}
	}
	if len(leaves)-1 != p.size {
		t.Fatalf("stored size %d, counted %d non-sentinel leaves", p.size, len(leaves)-1)
	}
}

func minLeaf(n node) *leafNode {
	for {
		inode, ok := n.(*internalNode)
		if !ok {
			return n.(*leafNode)
		}
		n = inode.left
	}
}

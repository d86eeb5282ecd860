package avltree

// resolveFunc materializes an opaque child node whose balance and
// children the rebalancing code needs. The prover reveals such nodes
// into the proof trace; the verifier consumes expansion records. The
// returned node is safe to mutate.
type resolveFunc func(n node) (*internalNode, error)

// rebalanceChild restores the AVL invariant at parent after the height
// of one of its children changed by delta (+1 or -1; 0 means only
// labels changed). The changed child must already be linked in. It
// returns the subtree root that takes parent's place and the height
// change of the whole subtree relative to before the child changed.
//
// Separator keys are untouched: every rotation keeps each internal
// node's key describing the same right subtree minimum as before.
func rebalanceChild(parent *internalNode, changedRight bool, delta int, resolve resolveFunc) (node, int, error) {
	if delta == 0 {
		parent.lbl = nil
		return parent, 0, nil
	}

	bal := int(parent.balance)
	if changedRight {
		bal -= delta
	} else {
		bal += delta
	}

	if bal >= -1 && bal <= 1 {
		parent.balance = int8(bal)
		parent.lbl = nil
		if delta > 0 {
			// A child grew. The subtree grew unless the other child
			// was already taller.
			if bal != 0 {
				return parent, 1, nil
			}
			return parent, 0, nil
		}
		// A child shrank. The subtree shrank only if it was leaning
		// toward that child.
		if bal == 0 {
			return parent, -1, nil
		}
		return parent, 0, nil
	}

	// The imbalance is exactly 2: a rotation is due. The pre-rotation
	// subtree height is one above the pre-change height after a growth
	// and unchanged after a shrink.
	preRotation := 0
	if delta > 0 {
		preRotation = 1
	}

	var root node
	var rotDelta int
	if bal > 0 {
		heavy, rerr := resolve(parent.left)
		if rerr != nil {
			return nil, 0, rerr
		}
		if heavy.balance >= 0 {
			root, rotDelta = rotateRight(parent, heavy)
		} else {
			inner, rerr := resolve(heavy.right)
			if rerr != nil {
				return nil, 0, rerr
			}
			root, rotDelta = rotateLeftRight(parent, heavy, inner)
		}
	} else {
		heavy, rerr := resolve(parent.right)
		if rerr != nil {
			return nil, 0, rerr
		}
		if heavy.balance <= 0 {
			root, rotDelta = rotateLeft(parent, heavy)
		} else {
			inner, rerr := resolve(heavy.left)
			if rerr != nil {
				return nil, 0, rerr
			}
			root, rotDelta = rotateRightLeft(parent, heavy, inner)
		}
	}
	return root, preRotation + rotDelta, nil
}

// rotateRight fixes a left-heavy z whose left child y does not lean
// right:
//
//	      z              y
//	     / \            / \
//	    y   C    =>    A   z
//	   / \                / \
//	  A   B              B   C
//
// It returns the new subtree root y and the height change relative to
// the pre-rotation subtree rooted at z.
func rotateRight(z, y *internalNode) (node, int) {
	z.left = y.right
	y.right = z

	if y.balance == 0 {
		// Only reachable after a removal on z's right side.
		z.balance = 1
		y.balance = -1
		z.lbl, y.lbl = nil, nil
		return y, 0
	}
	z.balance = 0
	y.balance = 0
	z.lbl, y.lbl = nil, nil
	return y, -1
}

// rotateLeft mirrors rotateRight for a right-heavy z whose right child
// y does not lean left.
func rotateLeft(z, y *internalNode) (node, int) {
	z.right = y.left
	y.left = z

	if y.balance == 0 {
		z.balance = -1
		y.balance = 1
		z.lbl, y.lbl = nil, nil
		return y, 0
	}
	z.balance = 0
	y.balance = 0
	z.lbl, y.lbl = nil, nil
	return y, -1
}

// rotateLeftRight fixes a left-heavy z whose left child y leans right;
// x is y's right child:
//
//	      z                x
//	     / \             /   \
//	    y   D           y     z
//	   / \      =>     / \   / \
//	  A   x           A   B E   D
//	     / \
//	    B   E
//
// It returns the new subtree root x and the height change relative to
// the pre-rotation subtree rooted at z.
func rotateLeftRight(z, y, x *internalNode) (node, int) {
	y.right = x.left
	z.left = x.right
	x.left = y
	x.right = z

	switch x.balance {
	case 1:
		y.balance = 0
		z.balance = -1
	case -1:
		y.balance = 1
		z.balance = 0
	default:
		y.balance = 0
		z.balance = 0
	}
	x.balance = 0
	x.lbl, y.lbl, z.lbl = nil, nil, nil
	return x, -1
}

// rotateRightLeft mirrors rotateLeftRight for a right-heavy z whose
// right child y leans left; x is y's left child.
func rotateRightLeft(z, y, x *internalNode) (node, int) {
	y.left = x.right
	z.right = x.left
	x.right = y
	x.left = z

	switch x.balance {
	case 1:
		z.balance = 0
		y.balance = -1
	case -1:
		z.balance = 1
		y.balance = 0
	default:
		z.balance = 0
		y.balance = 0
	}
	x.balance = 0
	x.lbl, y.lbl, z.lbl = nil, nil, nil
	return x, -1
}

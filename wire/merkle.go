// Copyright (c) 2013-2016 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package wire

import "github.com/Rust-Boy/btc-sotamo/chainhash"

// MerkleBranch returns the sibling hashes along the path from leaf index
// txIndex to the root of the tree built over leafHashes.
func MerkleBranch(leafHashes []chainhash.Hash, txIndex int) []chainhash.Hash {
	var branch []chainhash.Hash
	tree := make([]chainhash.Hash, len(leafHashes))
	copy(tree, leafHashes)

	index := txIndex
	for size := len(tree); size > 1; size = (size + 1) / 2 {
		i := index ^ 1
		if i > size-1 {
			i = size - 1
		}
		branch = append(branch, tree[i])

		next := make([]chainhash.Hash, 0, (size+1)/2)
		for j := 0; j < size; j += 2 {
			j2 := j + 1
			if j2 > size-1 {
				j2 = size - 1
			}
			next = append(next, hashMerkleBranches(&tree[j], &tree[j2]))
		}
		tree = next
		index >>= 1
	}

	return branch
}

// CheckMerkleBranch recomputes the root implied by leaf, branch, and the
// leaf's original index, folding sibling hashes up the tree exactly as
// MerkleBranch walked down it.
func CheckMerkleBranch(leaf chainhash.Hash, branch []chainhash.Hash, index int) chainhash.Hash {
	hash := leaf
	for _, otherSide := range branch {
		if index&1 != 0 {
			hash = hashMerkleBranches(&otherSide, &hash)
		} else {
			hash = hashMerkleBranches(&hash, &otherSide)
		}
		index >>= 1
	}
	return hash
}

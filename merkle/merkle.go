// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package merkle computes the deterministic Merkle root over an ordered
// list of block-body leaves, per spec section 4.2.
//
// Grounded on blockchain/merkle.go's HashMerkleBranches tree-building
// shape from the teacher repo, generalized to a domain-separated,
// odd-count-duplicating combiner instead of btcd's double-SHA256.
package merkle

import (
	"crypto/sha256"

	"github.com/coinjecture/consensus/chainhash"
)

const (
	leafTag     = 0x00
	internalTag = 0x01
)

// LeafHash hashes a single leaf's content with the leaf domain tag,
// preventing a leaf from being mistaken for an internal node (and vice
// versa) in a second-preimage attack.
func LeafHash(content []byte) chainhash.Hash {
	h := sha256.New()
	h.Write([]byte{leafTag})
	h.Write(content)
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// combine hashes two child node hashes into their parent.
func combine(left, right chainhash.Hash) chainhash.Hash {
	h := sha256.New()
	h.Write([]byte{internalTag})
	h.Write(left[:])
	h.Write(right[:])
	var out chainhash.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Root computes the Merkle root over leaves, which must already be
// leaf-hashed (see LeafHash). Leaves are taken in insertion order. An odd
// leaf count duplicates the last leaf at that level, an explicit rule
// rather than a length-dependent pad. An empty leaf set yields the
// all-zero hash.
func Root(leaves []chainhash.Hash) chainhash.Hash {
	if len(leaves) == 0 {
		return chainhash.ZeroHash
	}

	level := make([]chainhash.Hash, len(leaves))
	copy(level, leaves)

	for len(level) > 1 {
		if len(level)%2 != 0 {
			level = append(level, level[len(level)-1])
		}
		next := make([]chainhash.Hash, 0, len(level)/2)
		for i := 0; i < len(level); i += 2 {
			next = append(next, combine(level[i], level[i+1]))
		}
		level = next
	}
	return level[0]
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package merkle

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/chainhash"
)

func TestRootOfEmptyLeavesIsZeroHash(t *testing.T) {
	require.Equal(t, chainhash.ZeroHash, Root(nil))
	require.Equal(t, chainhash.ZeroHash, Root([]chainhash.Hash{}))
}

func TestRootOfSingleLeafIsTheLeafItself(t *testing.T) {
	leaf := LeafHash([]byte("only"))
	require.Equal(t, leaf, Root([]chainhash.Hash{leaf}))
}

func TestRootOfOddCountDuplicatesLastLeaf(t *testing.T) {
	a := LeafHash([]byte("a"))
	b := LeafHash([]byte("b"))
	c := LeafHash([]byte("c"))

	odd := Root([]chainhash.Hash{a, b, c})
	withDuplicate := Root([]chainhash.Hash{a, b, c, c})
	require.Equal(t, withDuplicate, odd)
}

func TestRootIsOrderSensitive(t *testing.T) {
	a := LeafHash([]byte("a"))
	b := LeafHash([]byte("b"))

	require.NotEqual(t, Root([]chainhash.Hash{a, b}), Root([]chainhash.Hash{b, a}))
}

func TestInternalNodeHashDiffersFromLeafHashes(t *testing.T) {
	// The leaf/internal domain tags must matter: a leaf hash should
	// never collide with an internal combine of two different leaves.
	a := LeafHash([]byte("a"))
	b := LeafHash([]byte("b"))
	internal := combine(a, b)
	require.NotEqual(t, a, internal)
	require.NotEqual(t, b, internal)
}

func TestLeafHashDeterministic(t *testing.T) {
	content := []byte("deterministic content")
	require.Equal(t, LeafHash(content), LeafHash(content))
}

func TestRootMatchesManualTwoLevelTree(t *testing.T) {
	a := LeafHash([]byte("a"))
	b := LeafHash([]byte("b"))
	c := LeafHash([]byte("c"))
	d := LeafHash([]byte("d"))

	want := combine(combine(a, b), combine(c, d))
	got := Root([]chainhash.Hash{a, b, c, d})
	require.Equal(t, want, got)
}

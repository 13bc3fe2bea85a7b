// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package commitment

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/problem"
)

func TestEpochSaltIsDeterministicAndNetworkSeparated(t *testing.T) {
	a := EpochSalt(7, "mainnet")
	b := EpochSalt(7, "mainnet")
	require.Equal(t, a, b)

	c := EpochSalt(7, "testnet")
	require.NotEqual(t, a, c)

	d := EpochSalt(8, "mainnet")
	require.NotEqual(t, a, d)
}

func TestEpochNumberDivides(t *testing.T) {
	require.Equal(t, uint64(0), EpochNumber(0, 100))
	require.Equal(t, uint64(0), EpochNumber(99, 100))
	require.Equal(t, uint64(1), EpochNumber(100, 100))
	require.Equal(t, uint64(2), EpochNumber(250, 100))
}

func testReveal(t *testing.T) *block.Reveal {
	t.Helper()
	instance, err := problem.Generate([32]byte{0x01}, problem.TierDesktop, 1, problem.DefaultTierLimits())
	require.NoError(t, err)
	solution, ok := problem.Solve(instance)
	require.True(t, ok)
	return &block.Reveal{
		Problem:   instance,
		Solution:  solution,
		MinerSalt: [32]byte{0x02},
	}
}

func TestMakeIsDeterministicAndBindsAllFields(t *testing.T) {
	salt := EpochSalt(1, "mainnet")
	parent := chainhash.Hash{0x01}
	minerSalt := [32]byte{0x02}
	problemHash := chainhash.Hash{0x03}
	solutionHash := chainhash.Hash{0x04}

	a := Make(salt, parent, minerSalt, problemHash, solutionHash)
	b := Make(salt, parent, minerSalt, problemHash, solutionHash)
	require.Equal(t, a, b)

	otherParent := chainhash.Hash{0xFF}
	c := Make(salt, otherParent, minerSalt, problemHash, solutionHash)
	require.NotEqual(t, a, c)
}

func TestVerifyAcceptsMatchingCommitmentAndRejectsTampering(t *testing.T) {
	rv := testReveal(t)
	salt := EpochSalt(3, "mainnet")
	parent := chainhash.Hash{0x09}

	commit := Make(salt, parent, rv.MinerSalt, rv.Problem.Hash(), rv.Solution.Hash())
	header := &block.Header{ParentHash: parent, Commitment: commit}
	require.True(t, Verify(header, rv, salt))

	header.Commitment[0] ^= 0xFF
	require.False(t, Verify(header, rv, salt))
}

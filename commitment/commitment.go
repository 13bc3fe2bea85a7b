// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package commitment implements the commit-reveal anti-grinding protocol
// of spec section 4.3: epoch-salt derivation and the HMAC-SHA-256 binding
// between a header's commitment and its eventual reveal.
package commitment

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/binary"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
)

// epochSaltKey is the fixed HMAC key used to derive every epoch's salt
// (spec section 3.1).
const epochSaltKey = "coinjecture-epoch-v1"

// EpochSalt derives the deterministic 32-byte salt for epochNumber,
// domain-separated by networkID so distinct networks never share salts
// (spec section 3.1: `HMAC-SHA-256(key, epoch_number || network_id)`).
func EpochSalt(epochNumber uint64, networkID string) chainhash.Hash {
	var msg [8]byte
	binary.BigEndian.PutUint64(msg[:], epochNumber)

	mac := hmac.New(sha256.New, []byte(epochSaltKey))
	mac.Write(msg[:])
	mac.Write([]byte(networkID))
	var out chainhash.Hash
	copy(out[:], mac.Sum(nil))
	return out
}

// EpochNumber returns the epoch a given block height falls in, for
// epochLength E.
func EpochNumber(blockIndex, epochLength uint64) uint64 {
	return blockIndex / epochLength
}

// Make computes the 32-byte commitment binding parentHash, minerSalt,
// and the hashes of the problem and solution to epochSalt (spec section
// 4.3): `HMAC-SHA-256(epoch_salt, parent_hash || miner_salt ||
// hash(problem) || hash(solution))`.
func Make(epochSalt, parentHash chainhash.Hash, minerSalt [32]byte, problemHash, solutionHash chainhash.Hash) chainhash.Hash {
	mac := hmac.New(sha256.New, epochSalt[:])
	mac.Write(parentHash[:])
	mac.Write(minerSalt[:])
	mac.Write(problemHash[:])
	mac.Write(solutionHash[:])
	var out chainhash.Hash
	copy(out[:], mac.Sum(nil))
	return out
}

// Verify recomputes the commitment for header/reveal and reports whether
// it binds, per spec section 4.3: `verify_reveal`. The comparison uses
// hmac.Equal's constant-time semantics since the commitment otherwise
// double-duties as a side channel (naive byte comparison would leak
// timing on the first differing byte).
func Verify(header *block.Header, reveal *block.Reveal, epochSalt chainhash.Hash) bool {
	problemHash := reveal.Problem.Hash()
	solutionHash := reveal.Solution.Hash()
	recomputed := Make(epochSalt, header.ParentHash, reveal.MinerSalt, problemHash, solutionHash)
	return hmac.Equal(recomputed[:], header.Commitment[:])
}

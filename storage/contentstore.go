// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package storage

import (
	"github.com/btcsuite/btcd/btcutil/base58"
	"golang.org/x/crypto/blake2b"
)

// CID is a canonical base58btc content identifier (spec section 6.2).
type CID string

// ComputeCID derives the canonical CID for bytes: base58btc-encoded
// BLAKE2b-256, matching IPFS's own preferred multihash function rather
// than reusing the consensus-path SHA-256 (spec section 1 restricts
// SHA-256/HMAC-SHA-256 to the consensus hot path; CIDs for the
// off-chain proof-bundle store are explicitly not a consensus value, so
// a distinct hash here cannot be confused with one).
func ComputeCID(b []byte) CID {
	sum := blake2b.Sum256(b)
	return CID(base58.Encode(sum[:]))
}

// ContentStore is the content-addressed store port of spec section 6.2.
// Consensus code MUST NOT block on a missing CID for an ancestor already
// admitted (spec section 6.2); Get returning ok=false is a normal,
// non-fatal outcome.
type ContentStore interface {
	Put(b []byte) (CID, error)
	Get(cid CID) ([]byte, bool, error)
}

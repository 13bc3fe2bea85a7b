// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chainhash provides the fixed-size hash type used throughout the
// consensus core for header hashes, commitments, and Merkle roots.
package chainhash

import (
	"encoding/hex"
	"fmt"
)

// HashSize is the number of bytes in a consensus hash.
const HashSize = 32

// Hash is a 32-byte SHA-256 (or HMAC-SHA-256) digest.
type Hash [HashSize]byte

// ZeroHash is the all-zero hash, used for genesis's parent_hash.
var ZeroHash = Hash{}

// String returns the hash as a hex string in big-endian (display) order.
func (h Hash) String() string {
	return hex.EncodeToString(h[:])
}

// IsZero reports whether the hash is the all-zero value.
func (h Hash) IsZero() bool {
	return h == ZeroHash
}

// CloneBytes returns a newly allocated copy of the hash bytes.
func (h Hash) CloneBytes() []byte {
	out := make([]byte, HashSize)
	copy(out, h[:])
	return out
}

// Less reports whether h sorts lexicographically before other. Used for the
// deterministic fork-choice tie-break on header_hash.
func (h Hash) Less(other Hash) bool {
	for i := 0; i < HashSize; i++ {
		if h[i] != other[i] {
			return h[i] < other[i]
		}
	}
	return false
}

// NewHash constructs a Hash from a byte slice, which must be exactly
// HashSize bytes long.
func NewHash(b []byte) (Hash, error) {
	var h Hash
	if len(b) != HashSize {
		return h, fmt.Errorf("chainhash: invalid hash length %d, expected %d", len(b), HashSize)
	}
	copy(h[:], b)
	return h, nil
}

// NewHashFromStr parses a hex-encoded hash.
func NewHashFromStr(s string) (Hash, error) {
	b, err := hex.DecodeString(s)
	if err != nil {
		return Hash{}, fmt.Errorf("chainhash: %w", err)
	}
	return NewHash(b)
}

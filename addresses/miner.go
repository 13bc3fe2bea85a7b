// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package addresses implements miner address derivation (spec section
// 3.1: `miner_address = SHA-256(miner_public_key)`) and a bech32
// presentation encoding for display and configuration purposes only --
// the consensus-checked value is always the raw 32-byte MinerAddress
// hash, never the bech32 string.
//
// Grounded on addresses/shell_addresses.go's bech32 presentation layer
// from the teacher repo, generalized from Shell's Taproot witness-program
// encoding to a flat hash presentation.
package addresses

import (
	"crypto/ed25519"
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/btcsuite/btcd/btcutil/bech32"

	"github.com/coinjecture/consensus/chainhash"
)

// HRP is the human-readable part COINjecture miner addresses are
// bech32-encoded under.
const HRP = "cjm"

// ErrInvalidAddress is returned when a bech32 string does not decode to
// a well-formed miner address.
var ErrInvalidAddress = errors.New("addresses: invalid miner address format")

// DeriveMinerAddress computes miner_address = SHA-256(miner_public_key),
// the canonical consensus-checked derivation of spec section 3.1.
func DeriveMinerAddress(pubKey ed25519.PublicKey) chainhash.Hash {
	return chainhash.Hash(sha256.Sum256(pubKey))
}

// String bech32-encodes a miner address hash for display/configuration,
// never for consensus comparison.
func String(addr chainhash.Hash) string {
	conv, err := bech32.ConvertBits(addr[:], 8, 5, true)
	if err != nil {
		return ""
	}
	encoded, err := bech32.Encode(HRP, conv)
	if err != nil {
		return ""
	}
	return encoded
}

// Parse decodes a bech32-presented miner address back to its raw hash.
func Parse(s string) (chainhash.Hash, error) {
	hrp, data, err := bech32.Decode(s)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	if hrp != HRP {
		return chainhash.Hash{}, fmt.Errorf("%w: unexpected prefix %q", ErrInvalidAddress, hrp)
	}
	conv, err := bech32.ConvertBits(data, 5, 8, false)
	if err != nil {
		return chainhash.Hash{}, fmt.Errorf("%w: %v", ErrInvalidAddress, err)
	}
	return chainhash.NewHash(conv)
}

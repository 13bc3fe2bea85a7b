// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package block holds the shared consensus data model -- BlockHeader,
// Reveal, and ComplexityRecord -- and their canonical encode/decode/hash
// operations (spec sections 3.1 and 4.1). It is the one package every
// other consensus package (commitment, admission, blocktree, gossip,
// consensus) depends on for these shared types, keeping the block-tree
// owner (blocktree) and the pipeline stages (admission, commitment,
// problem) decoupled from each other.
package block

import (
	"crypto/ed25519"
	"crypto/sha256"
	"fmt"

	"github.com/coinjecture/consensus/chainhash"
	"github.com/coinjecture/consensus/codec"
	"github.com/coinjecture/consensus/problem"
)

// CodecVersion is the current consensus codec version. It is bumped only
// by a labeled consensus change (spec section 3.1).
const CodecVersion uint8 = 1

// MaxOffchainCIDLen is the hard cap on the offchain_cid opaque field.
const MaxOffchainCIDLen = 128

// maxSignatureSkewSeconds is not defined here; clock-skew bounds belong
// to the admission package, which is where the local clock is consulted.

// Header is the immutable, signed block header of spec section 3.1.
type Header struct {
	CodecVersion     uint8
	BlockIndex       uint64
	Timestamp        int64
	ParentHash       chainhash.Hash
	MerkleRoot       chainhash.Hash
	MinerAddress     chainhash.Hash
	Commitment       chainhash.Hash
	DifficultyTarget uint64
	Tier             problem.Tier
	OffchainCID      []byte
	MinerPublicKey   [ed25519.PublicKeySize]byte
	MinerSignature   [ed25519.SignatureSize]byte
}

// encodeForHash writes every field except MinerSignature, in the fixed
// field order spec section 3.1 specifies for the header hash preimage.
func (h *Header) encodeForHash(w *codec.Writer) {
	w.PutUint8(h.CodecVersion)
	w.PutUint64(h.BlockIndex)
	w.PutInt64(h.Timestamp)
	w.PutFixed(h.ParentHash[:])
	w.PutFixed(h.MerkleRoot[:])
	w.PutFixed(h.MinerAddress[:])
	w.PutFixed(h.Commitment[:])
	w.PutUint64(h.DifficultyTarget)
	w.PutUint8(uint8(h.Tier))
	w.PutVarBytes(h.OffchainCID)
	w.PutFixed(h.MinerPublicKey[:])
}

// Hash computes the header hash: SHA-256 of the canonical encoding of
// every field except the signature (spec section 3.1, invariant 1). The
// signature is verified against this hash but never folded into it.
func (h *Header) Hash() chainhash.Hash {
	w := codec.NewWriter(256)
	h.encodeForHash(w)
	sum := sha256.Sum256(w.Bytes())
	return chainhash.Hash(sum)
}

// Encode writes the full transport encoding: the hash preimage fields
// followed by the signature, per spec section 3.1 ("the signature is
// appended to the transport encoding").
func (h *Header) Encode() []byte {
	w := codec.NewWriter(256)
	h.encodeForHash(w)
	w.PutFixed(h.MinerSignature[:])
	return w.Bytes()
}

// DecodeHeader strictly decodes a transport-encoded header, rejecting
// unknown codec versions, illegal tiers, and oversized/trailing data.
func DecodeHeader(b []byte) (*Header, error) {
	r := codec.NewReader(b)
	h := &Header{}

	v, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	if v != CodecVersion {
		return nil, fmt.Errorf("block: unsupported codec version %d", v)
	}
	h.CodecVersion = v

	if h.BlockIndex, err = r.GetUint64(); err != nil {
		return nil, err
	}
	if h.Timestamp, err = r.GetInt64(); err != nil {
		return nil, err
	}
	parentBytes, err := r.GetFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	copy(h.ParentHash[:], parentBytes)

	merkleBytes, err := r.GetFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	copy(h.MerkleRoot[:], merkleBytes)

	addrBytes, err := r.GetFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	copy(h.MinerAddress[:], addrBytes)

	commitBytes, err := r.GetFixed(chainhash.HashSize)
	if err != nil {
		return nil, err
	}
	copy(h.Commitment[:], commitBytes)

	if h.DifficultyTarget, err = r.GetUint64(); err != nil {
		return nil, err
	}

	tierByte, err := r.GetUint8()
	if err != nil {
		return nil, err
	}
	h.Tier = problem.Tier(tierByte)
	if !h.Tier.Valid() {
		return nil, fmt.Errorf("block: illegal tier %d", tierByte)
	}

	cid, err := r.GetVarBytes(MaxOffchainCIDLen)
	if err != nil {
		return nil, err
	}
	h.OffchainCID = cid

	pubKeyBytes, err := r.GetFixed(ed25519.PublicKeySize)
	if err != nil {
		return nil, err
	}
	copy(h.MinerPublicKey[:], pubKeyBytes)

	sigBytes, err := r.GetFixed(ed25519.SignatureSize)
	if err != nil {
		return nil, err
	}
	copy(h.MinerSignature[:], sigBytes)

	if err := r.Finish(); err != nil {
		return nil, err
	}
	return h, nil
}

// VerifySignature checks the Ed25519 signature over the header hash
// against MinerPublicKey (spec section 3.1 / section 4.7 step 2).
func (h *Header) VerifySignature() bool {
	hash := h.Hash()
	return ed25519.Verify(h.MinerPublicKey[:], hash[:], h.MinerSignature[:])
}

// Sign computes the header hash and signs it with priv, filling in
// MinerPublicKey and MinerSignature. Used by the reference miner and by
// tests constructing valid headers.
func (h *Header) Sign(priv ed25519.PrivateKey) {
	pub := priv.Public().(ed25519.PublicKey)
	copy(h.MinerPublicKey[:], pub)
	hash := h.Hash()
	sig := ed25519.Sign(priv, hash[:])
	copy(h.MinerSignature[:], sig)
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package storage defines the two external storage ports of spec section
// 6: a column-family key/value store and a content-addressed store. Both
// are interfaces-only at the consensus boundary, per spec section 6 --
// "the core issues only single-request calls and tolerates failure as
// specified in section 7" -- with storage/leveldbkv providing a concrete
// reference adapter for the KV side.
package storage

// ColumnFamily names one of the fixed column families of spec section
// 6.1.
type ColumnFamily string

const (
	// CFHeaders holds header_hash -> canonical header bytes.
	CFHeaders ColumnFamily = "headers"
	// CFReveals holds header_hash -> canonical reveal bytes.
	CFReveals ColumnFamily = "reveals"
	// CFTree holds header_hash -> encoded BlockNode tree-state record.
	CFTree ColumnFamily = "tree"
	// CFTips holds the constant key "tip" -> the selected tip's header_hash.
	CFTips ColumnFamily = "tips"
	// CFFinality holds height -> the header_hash finalized at that height.
	CFFinality ColumnFamily = "finality"
	// CFReplay holds commitment -> epoch_number.
	CFReplay ColumnFamily = "replay"
	// CFEpochMeta holds epoch_number -> {salt, difficulty_target_per_tier}.
	CFEpochMeta ColumnFamily = "epoch_meta"
)

// TipKey is the constant key the CFTips column family is written under.
const TipKey = "tip"

// WriteOp is a single put within an atomic Batch (spec section 6.1:
// "all mutations affecting a single state transition must be atomic as a
// batch").
type WriteOp struct {
	Family ColumnFamily
	Key    []byte
	Value  []byte
}

// KVStore is the column-family key/value store port of spec section 6.1.
// Implementations MUST apply WriteBatch atomically: either every op in
// the batch is visible to subsequent Get calls, or none are.
type KVStore interface {
	Get(family ColumnFamily, key []byte) ([]byte, bool, error)
	WriteBatch(ops []WriteOp) error
	Close() error
}

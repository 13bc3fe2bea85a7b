// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package blocktree owns the block DAG: admission of headers and
// reveals into BlockNodes, heaviest-work fork choice with deterministic
// tie-breaks, bounded-depth reorganization, and k-deep finality (spec
// section 4.8). Per spec section 5, a Tree value is meant to be owned by
// a single actor; all of its methods mutate shared state and are not
// safe for unsynchronized concurrent use -- callers serialize access
// through a single goroutine (see package consensus) the way the
// teacher's blockchain.BlockChain is only ever driven by one
// rule-processing goroutine at a time.
package blocktree

import (
	"time"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
)

// State is a BlockNode's lifecycle stage (spec section 3.1/3.3).
type State uint8

const (
	// HeaderOnly means the header is admitted but its reveal has not
	// yet arrived (or has expired).
	HeaderOnly State = iota
	// Revealed means the reveal arrived, verified, and the node's
	// work score and cumulative work are known.
	Revealed
	// Final means the node is at least FinalityDepth below the
	// selected tip and will never be reverted.
	Final
)

func (s State) String() string {
	switch s {
	case HeaderOnly:
		return "HEADER_ONLY"
	case Revealed:
		return "REVEALED"
	case Final:
		return "FINAL"
	default:
		return "UNKNOWN"
	}
}

// Node is a single entry in the block tree (spec section 3.1: BlockNode).
type Node struct {
	HeaderHash chainhash.Hash
	Header     *block.Header
	Reveal     *block.Reveal

	WorkScore      float64 // 0 until Revealed
	CumulativeWork float64 // parent.CumulativeWork + WorkScore; 0 for genesis
	cumulativeKnown bool

	Children []chainhash.Hash
	Height   uint64
	State    State

	ArrivalSeq  uint64
	ArrivalTime time.Time
}

// HasCumulativeWork reports whether this node's cumulative work has been
// computed yet. A node can be Revealed with its work score known but
// still awaiting a cumulative-work assignment if its parent has not
// resolved cumulative work yet (spec section 4.8's "a node's cumulative
// work is fixed at admission and never edited thereafter" only binds
// once that assignment happens; out-of-order reveal arrival can delay
// it without violating the invariant).
func (n *Node) HasCumulativeWork() bool { return n.cumulativeKnown }

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package admission

import (
	"sync"

	"github.com/coinjecture/consensus/chainhash"
)

// minerEpoch identifies one miner's activity within one epoch.
type minerEpoch struct {
	miner chainhash.Hash
	epoch uint64
}

// NonceSequencer enforces spec section 4.7 step 6: per-miner nonce
// sequencing, monotone per epoch. spec.md's BlockHeader carries no
// separate "nonce" field (see DESIGN.md's open-question resolution), so
// the header's own block_index -- already strictly increasing along any
// admitted chain -- serves as the sequence number: a second header from
// the same miner_address in the same epoch must carry a strictly greater
// block_index than the miner's previous admitted header in that epoch.
type NonceSequencer struct {
	mu   sync.Mutex
	last map[minerEpoch]uint64
}

// NewNonceSequencer creates an empty NonceSequencer.
func NewNonceSequencer() *NonceSequencer {
	return &NonceSequencer{last: make(map[minerEpoch]uint64)}
}

// CheckAndAdvance reports whether blockIndex is an admissible next nonce
// for (miner, epoch); if so, it records blockIndex as the new high-water
// mark.
func (n *NonceSequencer) CheckAndAdvance(miner chainhash.Hash, epoch, blockIndex uint64) bool {
	key := minerEpoch{miner: miner, epoch: epoch}

	n.mu.Lock()
	defer n.mu.Unlock()

	prev, seen := n.last[key]
	if seen && blockIndex <= prev {
		return false
	}
	n.last[key] = blockIndex
	return true
}

// EvictEpoch drops sequencing state for epochs strictly older than
// keepFrom, bounding memory the way ReplayCache rotates forward at each
// epoch boundary.
func (n *NonceSequencer) EvictEpoch(keepFrom uint64) {
	n.mu.Lock()
	defer n.mu.Unlock()
	for key := range n.last {
		if key.epoch < keepFrom {
			delete(n.last, key)
		}
	}
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package admission

import (
	"sync"

	"github.com/decred/dcrd/lru"

	"github.com/coinjecture/consensus/chainhash"
)

// replayCacheLimit bounds the number of distinct commitments tracked per
// epoch. An epoch admits at most a handful of blocks per tier in
// practice; this ceiling only guards against a malicious flood of
// distinct-commitment headers within a single epoch.
const replayCacheLimit = 1 << 20

// ReplayCache suppresses duplicate (commitment, epoch_number) admissions
// within an epoch (spec section 3.1's ReplayEntry, section 4.7 step 5).
// It is backed by github.com/decred/dcrd/lru.Cache, the same bounded-LRU
// primitive the teacher's dependency set carries for exactly this shape
// of "have we seen this key recently" gate -- replacing the
// mempool.TxPool orphan pool's plain, unbounded map with a capacity-
// bounded cache.
//
// An LRU cache alone doesn't know about epoch boundaries, so ReplayCache
// additionally partitions entries into a "current epoch" cache and a
// "previous epoch" cache; SeenOrAdd rotates them forward when it first
// sees a commitment from a later epoch, giving an effective TTL of one epoch length as spec section
// 3.1 requires, without walking the whole cache to find timed-out
// entries.
type ReplayCache struct {
	mu       sync.Mutex
	epoch    uint64
	current  *lru.Cache[chainhash.Hash]
	previous *lru.Cache[chainhash.Hash]
}

// NewReplayCache creates an empty ReplayCache for epoch 0.
func NewReplayCache() *ReplayCache {
	return &ReplayCache{
		current:  lru.NewCache[chainhash.Hash](replayCacheLimit),
		previous: lru.NewCache[chainhash.Hash](replayCacheLimit),
	}
}

// SeenOrAdd reports whether (commitment, epochNumber) has already been
// admitted. If not, it is recorded and false is returned; the caller
// proceeds with admission. If the epoch has advanced past what the cache
// has tracked, the cache rotates forward first.
func (c *ReplayCache) SeenOrAdd(commitment chainhash.Hash, epochNumber uint64) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.rotateToLocked(epochNumber)

	key := commitment
	if c.current.Contains(key) || c.previous.Contains(key) {
		return true
	}
	c.current.Add(key)
	return false
}

// rotateToLocked advances the current/previous window so that epoch
// lands in "current", evicting anything older than one epoch back. Must
// be called with mu held.
func (c *ReplayCache) rotateToLocked(epoch uint64) {
	if epoch == c.epoch {
		return
	}
	if epoch == c.epoch+1 {
		c.previous = c.current
		c.current = lru.NewCache[chainhash.Hash](replayCacheLimit)
		c.epoch = epoch
		return
	}
	// Epoch jumped by more than one (e.g. catching up after being
	// offline); there is nothing useful left to carry forward.
	c.previous = lru.NewCache[chainhash.Hash](replayCacheLimit)
	c.current = lru.NewCache[chainhash.Hash](replayCacheLimit)
	c.epoch = epoch
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package admission

import (
	"sync"
	"time"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
)

// orphanExpireScanInterval mirrors mempool.orphanExpireScanInterval from
// the teacher repo: the buffer is only swept for expired entries when a
// new orphan arrives, not on an unconditional timer.
const orphanExpireScanInterval = time.Minute * 5

// orphanHeader is a header buffered because its parent is not yet known,
// mirroring the shape of the teacher's mempool.orphanTx (a payload plus
// an expiration deadline).
type orphanHeader struct {
	header     *block.Header
	expiration time.Time
}

// OrphanBuffer holds headers whose parent_hash references an unknown
// BlockNode, keyed by the missing parent hash so that a single parent
// arrival can re-admit every header that was waiting on it, in arrival
// order (spec section 4.8 "Orphan handling").
type OrphanBuffer struct {
	ttl time.Duration

	mu             sync.Mutex
	byParent       map[chainhash.Hash][]*orphanHeader
	nextExpireScan time.Time
}

// NewOrphanBuffer creates an OrphanBuffer with the given TTL (spec
// section 3.3 default: TTL = reveal window W).
func NewOrphanBuffer(ttl time.Duration) *OrphanBuffer {
	return &OrphanBuffer{
		ttl:            ttl,
		byParent:       make(map[chainhash.Hash][]*orphanHeader),
		nextExpireScan: time.Now().Add(orphanExpireScanInterval),
	}
}

// Add buffers header under its parent hash.
func (b *OrphanBuffer) Add(h *block.Header, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if now.After(b.nextExpireScan) {
		b.expireLocked(now)
		b.nextExpireScan = now.Add(orphanExpireScanInterval)
	}

	b.byParent[h.ParentHash] = append(b.byParent[h.ParentHash], &orphanHeader{
		header:     h,
		expiration: now.Add(b.ttl),
	})
}

// TakeChildrenOf removes and returns, in arrival order, every buffered
// header whose parent_hash equals parentHash. Called when parentHash
// becomes known so those headers can be re-admitted (spec section 4.8).
func (b *OrphanBuffer) TakeChildrenOf(parentHash chainhash.Hash, now time.Time) []*block.Header {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.byParent[parentHash]
	if len(entries) == 0 {
		return nil
	}
	delete(b.byParent, parentHash)

	out := make([]*block.Header, 0, len(entries))
	for _, e := range entries {
		if now.Before(e.expiration) {
			out = append(out, e.header)
		}
	}
	return out
}

// expireLocked drops every orphan past its TTL. Must be called with mu
// held.
func (b *OrphanBuffer) expireLocked(now time.Time) {
	for parent, entries := range b.byParent {
		kept := entries[:0]
		for _, e := range entries {
			if now.Before(e.expiration) {
				kept = append(kept, e)
			}
		}
		if len(kept) == 0 {
			delete(b.byParent, parent)
		} else {
			b.byParent[parent] = kept
		}
	}
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"sync"
	"time"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/chainhash"
)

// pendingReveal is a reveal buffered because its header is not yet
// known, mirroring admission.OrphanBuffer's orphanHeader shape (a
// payload plus an expiration deadline) but keyed the opposite direction:
// by the header_hash it binds rather than by a missing parent hash (spec
// section 8.3: "Reveal received before header -> buffered as orphan;
// arrives later -> admitted normally").
type pendingReveal struct {
	reveal     *block.Reveal
	expiration time.Time
}

// revealBuffer holds reveals whose header_hash is not yet admitted,
// keyed by that hash so a single header arrival re-admits every reveal
// that was waiting on it, in arrival order.
type revealBuffer struct {
	ttl time.Duration

	mu     sync.Mutex
	byHash map[chainhash.Hash][]*pendingReveal
}

// newRevealBuffer creates a revealBuffer with the given TTL (same
// default as the header orphan buffer: the reveal window W).
func newRevealBuffer(ttl time.Duration) *revealBuffer {
	return &revealBuffer{
		ttl:    ttl,
		byHash: make(map[chainhash.Hash][]*pendingReveal),
	}
}

// add buffers rv under headerHash.
func (b *revealBuffer) add(headerHash chainhash.Hash, rv *block.Reveal, now time.Time) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.byHash[headerHash] = append(b.byHash[headerHash], &pendingReveal{reveal: rv, expiration: now.Add(b.ttl)})
}

// take removes and returns, in arrival order, every buffered reveal for
// headerHash, dropping any that expired while waiting.
func (b *revealBuffer) take(headerHash chainhash.Hash, now time.Time) []*block.Reveal {
	b.mu.Lock()
	defer b.mu.Unlock()

	entries := b.byHash[headerHash]
	if len(entries) == 0 {
		return nil
	}
	delete(b.byHash, headerHash)

	out := make([]*block.Reveal, 0, len(entries))
	for _, e := range entries {
		if now.Before(e.expiration) {
			out = append(out, e.reveal)
		}
	}
	return out
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package admission

import (
	"sync"
	"time"

	"github.com/aead/siphash"
)

// rateBucketCount bounds the rate gate's memory use regardless of peer
// count, the same fixed-bucket-count trick btcd-family addrmgr uses to
// bucket addresses by keyed siphash rather than keeping one entry per
// address forever.
const rateBucketCount = 1024

// tokenBucket is a classic token-bucket limiter: capacity tokens,
// refilled at refillPerSecond, consumed one per admitted message.
type tokenBucket struct {
	tokens     float64
	lastRefill time.Time
}

// RateGate is the per-peer rate gate of spec section 4.7 step 7: a
// token bucket per peer, outside consensus logic proper, but one that
// consensus MUST consult to drop over-rate messages rather than buffer
// them indefinitely.
//
// Peers are bucketed by siphash(peer_id) into a fixed-size array rather
// than keyed directly by peer_id, bounding memory the way
// btcsuite-family addrmgr buckets addresses by keyed siphash for
// eviction fairness (an indirect teacher dependency, aead/siphash, given
// a home here).
type RateGate struct {
	key             [16]byte
	capacity        float64
	refillPerSecond float64

	mu      sync.Mutex
	buckets [rateBucketCount]tokenBucket
}

// NewRateGate creates a RateGate with the given per-bucket-shard
// capacity and refill rate. key should be a random, process-local
// 16-byte value so bucket assignment cannot be predicted and gamed by a
// peer picking an adversarial identifier.
func NewRateGate(key [16]byte, capacity, refillPerSecond float64) *RateGate {
	g := &RateGate{key: key, capacity: capacity, refillPerSecond: refillPerSecond}
	now := time.Now()
	for i := range g.buckets {
		g.buckets[i] = tokenBucket{tokens: capacity, lastRefill: now}
	}
	return g
}

func (g *RateGate) bucketIndex(peerID []byte) int {
	sum := siphash.Sum64(peerID, g.key[:])
	return int(sum % rateBucketCount)
}

// Allow reports whether peerID may admit one more message right now,
// consuming a token if so. Messages that fail this check are dropped,
// never buffered (spec section 4.7).
func (g *RateGate) Allow(peerID []byte, now time.Time) bool {
	idx := g.bucketIndex(peerID)

	g.mu.Lock()
	defer g.mu.Unlock()

	b := &g.buckets[idx]
	elapsed := now.Sub(b.lastRefill).Seconds()
	if elapsed > 0 {
		b.tokens += elapsed * g.refillPerSecond
		if b.tokens > g.capacity {
			b.tokens = g.capacity
		}
		b.lastRefill = now
	}

	if b.tokens < 1 {
		return false
	}
	b.tokens--
	return true
}

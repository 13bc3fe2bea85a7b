// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package gossip implements the critically-damped outbound broadcast
// pacer of spec section 4.9: this node's own headers and reveals are
// queued and flushed as a batch on a fixed tick, rather than broadcast
// the instant they are produced.
//
// Grounded on the timer-driven queue-flush shape of
// mempool/mempool.go's orphan/expiry sweep in the teacher repo, adapted
// from a passive TTL sweep to an active periodic flush.
package gossip

import (
	"sync"
	"time"
)

// pacingLambda is lambda_pace = eta = 1/sqrt(2), the marginal-stability
// damping/coupling constant of spec section 4.9: the fastest broadcast
// response without oscillation, derived from the eigenvalue analysis of
// the two-state (propagation, absorption) linear model under the
// lambda^2 + eta^2 = 1 unit-norm constraint.
const pacingLambda = 0.70710678118654752440

// Interval is I = 1 / lambda_pace, the fixed broadcast tick (spec
// section 4.9).
var Interval = time.Duration(float64(time.Second) / pacingLambda)

// Item is one outbound broadcast unit: an encoded header or reveal bound
// for every connected peer.
type Item struct {
	Kind    Kind
	Payload []byte
}

// Kind distinguishes the two broadcastable message kinds (spec section
// 4.10's on_bytes_in classification, mirrored on the outbound side).
type Kind uint8

const (
	// KindHeader is an outbound HEADER message.
	KindHeader Kind = iota
	// KindReveal is an outbound REVEAL message.
	KindReveal
)

// Sender delivers a flushed batch to the network layer. Implementations
// are expected to fan out to every connected peer; the pacer itself has
// no notion of peer topology (spec section 6.3 owns wire framing).
type Sender interface {
	SendBatch(items []Item)
}

// Pacer is the single-threaded, timer-driven actor of spec section 5's
// "Pacer actor": it owns the outbound queue and is the only goroutine
// that drains it; other goroutines append through Enqueue under the
// mutex.
type Pacer struct {
	sender Sender
	ticker *time.Ticker

	mu     sync.Mutex
	queue  []Item
	stopCh chan struct{}
	doneCh chan struct{}
}

// New constructs a Pacer that flushes to sender every Interval.
// Deviating from Interval does not violate consensus (spec section 4.9)
// -- it only changes this node's own reorg exposure -- so tests may
// override it via NewWithInterval.
func New(sender Sender) *Pacer {
	return NewWithInterval(sender, Interval)
}

// NewWithInterval constructs a Pacer with an explicit flush interval,
// used by tests exercising the queue/flush mechanics without waiting on
// the real-time constant.
func NewWithInterval(sender Sender, interval time.Duration) *Pacer {
	return &Pacer{
		sender: sender,
		ticker: time.NewTicker(interval),
		stopCh: make(chan struct{}),
		doneCh: make(chan struct{}),
	}
}

// Enqueue appends item to the pending outbound queue. Safe to call from
// any goroutine; only the pacer's own run loop drains the queue (spec
// section 5: cross-actor communication via bounded message channels --
// here, a mutex-guarded slice standing in for that channel, since the
// pacer has exactly one reader).
func (p *Pacer) Enqueue(item Item) {
	p.mu.Lock()
	p.queue = append(p.queue, item)
	p.mu.Unlock()
}

// Run drives the pacer's tick loop until Stop is called. The daemon
// (cmd/coinjectured) launches it in its own goroutine.
func (p *Pacer) Run() {
	defer close(p.doneCh)
	for {
		select {
		case <-p.ticker.C:
			p.flush()
		case <-p.stopCh:
			p.ticker.Stop()
			return
		}
	}
}

// flush drains the queue and hands the batch to the sender. An empty
// queue still "flushes" (a no-op send is skipped) rather than signal an
// error; an idle node is not a fault.
func (p *Pacer) flush() {
	p.mu.Lock()
	if len(p.queue) == 0 {
		p.mu.Unlock()
		return
	}
	batch := p.queue
	p.queue = nil
	p.mu.Unlock()

	log.Debugf("gossip: flushing %d queued item(s)", len(batch))
	p.sender.SendBatch(batch)
}

// Stop halts the tick loop and waits for Run to return.
func (p *Pacer) Stop() {
	close(p.stopCh)
	<-p.doneCh
}

// Pending returns the number of items currently queued, for tests and
// telemetry.
func (p *Pacer) Pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

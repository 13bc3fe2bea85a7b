// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package consensus

import (
	"github.com/coinjecture/consensus/admission"
	"github.com/coinjecture/consensus/blocktree"
)

// EventSink receives the downstream events the orchestrator emits after
// a tip change (spec section 4.10's on_tip_change: "emit events: REORG,
// FINALIZED(N...)"). Rewards and telemetry are external collaborators
// (spec section 1); this interface is their only coupling point to the
// consensus core.
type EventSink interface {
	// Reorg is called once per tip switch, listing the blocks unwound
	// and applied, in order.
	Reorg(ev *blocktree.ReorgEvent)
	// Finalized is called once per batch of nodes newly transitioning
	// to FINAL.
	Finalized(ev *blocktree.FinalizedEvent)
}

// NoopSink discards every event; the zero value of Orchestrator's sink
// field when the caller supplies none.
type NoopSink struct{}

// Reorg implements EventSink.
func (NoopSink) Reorg(*blocktree.ReorgEvent) {}

// Finalized implements EventSink.
func (NoopSink) Finalized(*blocktree.FinalizedEvent) {}

// AckKind is the coarse outcome of a submit call (spec section 7:
// "integer status (accepted, accepted-as-duplicate,
// rejected-with-reason-code)").
type AckKind uint8

const (
	// AckAccepted means the message was newly admitted.
	AckAccepted AckKind = iota
	// AckAcceptedDuplicate means the message was already admitted;
	// tree and replay cache are unchanged (spec section 8.2's
	// "idempotence of admission").
	AckAcceptedDuplicate
	// AckRejected means the message was dropped; Reason names why.
	AckRejected
)

func (k AckKind) String() string {
	switch k {
	case AckAccepted:
		return "Accepted"
	case AckAcceptedDuplicate:
		return "AcceptedDuplicate"
	case AckRejected:
		return "Rejected"
	default:
		return "Unknown"
	}
}

// Ack is the result of submit/on_bytes_in, returned to the calling shim
// (spec section 6.4/7).
type Ack struct {
	Kind   AckKind
	Reason admission.ErrorCode // meaningful only when Kind == AckRejected
}

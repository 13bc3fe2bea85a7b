// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package admission implements the admission-control gate of spec
// section 4.7: syntactic, signature, tier, timestamp, replay, nonce, and
// rate checks that run before the expensive budget-limited problem
// verifier.
//
// Grounded on the ruleError/ErrorCode idiom used throughout the teacher's
// blockchain package (e.g. blockchain/shell_validate.go,
// blockchain/merkle.go), generalized from Bitcoin-script validation
// errors to the admission rejection kinds of spec section 7.
package admission

import "fmt"

// ErrorCode enumerates the typed, exhaustive rejection kinds of spec
// section 7.
type ErrorCode int

const (
	// ErrCodec means the header or reveal failed strict decode.
	ErrCodec ErrorCode = iota
	// ErrSignatureInvalid means the Ed25519 signature or address
	// derivation failed.
	ErrSignatureInvalid
	// ErrTierViolation means the problem size falls outside the
	// declared tier's limits.
	ErrTierViolation
	// ErrTimestampOutOfWindow means the timestamp falls outside the
	// +/-2h local clock window.
	ErrTimestampOutOfWindow
	// ErrTimestampNotMonotone means the timestamp did not strictly
	// exceed the median of the previous 11 timestamps on the chain.
	ErrTimestampNotMonotone
	// ErrReplay means (commitment, epoch_number) was already admitted;
	// not a fault, a legitimate retry.
	ErrReplay
	// ErrParentUnknown means the header's parent is not yet known;
	// buffered as an orphan, not a fault.
	ErrParentUnknown
	// ErrCommitmentMismatch means the reveal does not bind the header's
	// commitment.
	ErrCommitmentMismatch
	// ErrVerificationInvalid means the solution does not solve the
	// problem.
	ErrVerificationInvalid
	// ErrBudgetExceeded means verification was aborted by the budget.
	ErrBudgetExceeded
	// ErrReorgRefused means a reorg's unwind depth exceeds the bound.
	ErrReorgRefused
	// ErrNonceOutOfSequence means a miner's nonce did not monotonically
	// follow its predecessor within the epoch.
	ErrNonceOutOfSequence
	// ErrRateLimited means the sending peer exceeded its token-bucket
	// rate and the message was dropped rather than buffered.
	ErrRateLimited
	// ErrInternal means decode succeeded but an invariant failed; the
	// only fatal path (spec section 7).
	ErrInternal
)

func (c ErrorCode) String() string {
	switch c {
	case ErrCodec:
		return "CodecError"
	case ErrSignatureInvalid:
		return "SignatureInvalid"
	case ErrTierViolation:
		return "TierViolation"
	case ErrTimestampOutOfWindow:
		return "TimestampOutOfWindow"
	case ErrTimestampNotMonotone:
		return "TimestampNotMonotone"
	case ErrReplay:
		return "Replay"
	case ErrParentUnknown:
		return "ParentUnknown"
	case ErrCommitmentMismatch:
		return "CommitmentMismatch"
	case ErrVerificationInvalid:
		return "VerificationInvalid"
	case ErrBudgetExceeded:
		return "BudgetExceeded"
	case ErrReorgRefused:
		return "ReorgRefused"
	case ErrNonceOutOfSequence:
		return "NonceOutOfSequence"
	case ErrRateLimited:
		return "RateLimited"
	case ErrInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// IsFault reports whether code counts against a peer's fault counter,
// per spec section 7's propagation policy (Replay and ParentUnknown are
// explicitly not faults).
func (c ErrorCode) IsFault() bool {
	return c != ErrReplay && c != ErrParentUnknown
}

// RuleError pairs an ErrorCode with a human-readable description,
// matching the teacher's ruleError(ErrX, "...") construction idiom.
type RuleError struct {
	ErrorCode   ErrorCode
	Description string
}

func (e RuleError) Error() string {
	return fmt.Sprintf("admission: %s: %s", e.ErrorCode, e.Description)
}

func ruleError(c ErrorCode, desc string) RuleError {
	return RuleError{ErrorCode: c, Description: desc}
}

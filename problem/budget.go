// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package problem

import "time"

// Budget bounds the cost of verifying a single instance, per spec
// section 3.1 (VerifyBudget) and section 4.4. Verification MUST abort
// with Outcome BudgetExceeded if either bound is exhausted, and that
// outcome is treated as rejection, never retry.
type Budget struct {
	MaxOps        uint64
	MaxDuration   time.Duration
	CheckInterval uint64 // wall-clock is sampled every CheckInterval ops
}

// DefaultCheckInterval matches spec section 5's "explicit budget
// checkpoints at each 4096-op interval" suspension-point rule: the
// verifier only samples the wall clock (and becomes cancellable) every
// 4096 ops, not on every single op.
const DefaultCheckInterval = 4096

// DefaultBudgetForTier returns a generous multiple of a tier's maximum
// element count, per spec section 4.4 ("a generous multiple (e.g. 10n)").
// Subset-Sum's verifier is O(n): n ops to validate indices plus at most n
// additions, so 10x the max tier size comfortably covers both passes with
// headroom for a defensive implementation.
func DefaultBudgetForTier(t Tier, limits map[Tier]TierLimits) Budget {
	n := limits[t].MaxElements
	return Budget{
		MaxOps:        uint64(n) * 10,
		MaxDuration:   50 * time.Millisecond,
		CheckInterval: DefaultCheckInterval,
	}
}

// Outcome is the result of a budget-limited verification, per spec
// section 4.4: exactly Valid, Invalid, or BudgetExceeded.
type Outcome int

const (
	// Valid means the solution verifies against the instance.
	Valid Outcome = iota
	// Invalid means the solution does not solve the instance.
	Invalid
	// BudgetExceeded means verification was aborted by the op or
	// wall-time budget before a verdict was reached. Treated as
	// rejection, per spec section 3.1.
	BudgetExceeded
)

func (o Outcome) String() string {
	switch o {
	case Valid:
		return "Valid"
	case Invalid:
		return "Invalid"
	case BudgetExceeded:
		return "BudgetExceeded"
	default:
		return "Unknown"
	}
}

// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package problem implements the NP-problem registry: deterministic
// instance generation, budget-limited verification, and the hard
// per-tier size limits of spec section 4.4. The only shipped variant is
// Subset-Sum; the registry is open-ended by design (see Registry).
package problem

import "fmt"

// Tier is the declared hardware class a block was produced for. Tiers
// bound the legal problem size (spec section 3.1/4.4) and the work-score
// constants (spec section 4.5); they never make two tiers' work directly
// comparable except through those fixed per-tier constants.
//
// Named MOBILE/DESKTOP/SERVER to match the three hardware classes in
// spec.md, mirroring the role mining/mobilex and mining/randomx play in
// the teacher repo as tier-specific mining back ends -- COINjecture has
// one proving algorithm (Subset-Sum) shared across tiers, so the tiers
// here only gate problem size and reward constants, not the algorithm.
type Tier uint8

const (
	// TierMobile is the smallest hardware class.
	TierMobile Tier = iota
	// TierDesktop is the mid-range hardware class.
	TierDesktop
	// TierServer is the largest hardware class.
	TierServer
)

// String implements fmt.Stringer.
func (t Tier) String() string {
	switch t {
	case TierMobile:
		return "MOBILE"
	case TierDesktop:
		return "DESKTOP"
	case TierServer:
		return "SERVER"
	default:
		return fmt.Sprintf("Tier(%d)", uint8(t))
	}
}

// Valid reports whether t is one of the three declared tiers.
func (t Tier) Valid() bool {
	return t == TierMobile || t == TierDesktop || t == TierServer
}

// TierLimits are the hard, consensus-enforced Subset-Sum element-count
// bounds for a tier (spec section 4.4).
type TierLimits struct {
	MinElements int
	MaxElements int
}

// Contains reports whether n lies within the tier's legal element count.
func (l TierLimits) Contains(n int) bool {
	return n >= l.MinElements && n <= l.MaxElements
}

// DefaultTierLimits returns the tier limits table from spec section 4.4:
// MOBILE n in [8,16], DESKTOP n in [16,24], SERVER n in [24,32].
func DefaultTierLimits() map[Tier]TierLimits {
	return map[Tier]TierLimits{
		TierMobile:  {MinElements: 8, MaxElements: 16},
		TierDesktop: {MinElements: 16, MaxElements: 24},
		TierServer:  {MinElements: 24, MaxElements: 32},
	}
}

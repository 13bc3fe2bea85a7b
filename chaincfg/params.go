// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package chaincfg defines the network parameters a COINjecture node is
// launched with: the network ID domain-separating commitments and epoch
// salts, the epoch length, per-tier problem-size limits and verify
// budgets, the per-tier difficulty controller parameters, and the
// genesis header every node's block tree is seeded from.
//
// Grounded on chaincfg/params.go's Params-struct-plus-package-level-vars
// shape from the teacher repo, generalized from Bitcoin-style
// proof-of-work limits and checkpoints to COINjecture's tier tables.
package chaincfg

import (
	"crypto/ed25519"

	"github.com/coinjecture/consensus/block"
	"github.com/coinjecture/consensus/difficulty"
	"github.com/coinjecture/consensus/problem"
)

// Params bundles every network-wide constant the consensus packages
// need (spec section 6.5).
type Params struct {
	NetworkID string

	// EpochLength is E, the number of blocks per commit-reveal epoch
	// (spec section 3.1/4.3).
	EpochLength uint64

	TierLimits       map[problem.Tier]problem.TierLimits
	VerifyBudget     map[problem.Tier]problem.Budget
	DifficultyParams map[problem.Tier]difficulty.Params

	// InitialDifficultyTargets seeds the difficulty adjuster per tier at
	// genesis.
	InitialDifficultyTargets map[problem.Tier]uint64

	// FinalityDepth and MaxReorgDepth override blocktree's package
	// defaults for this network (spec section 3.2 invariants 10/11).
	FinalityDepth uint64
	MaxReorgDepth uint64

	// GenesisHeader is the network's root BlockHeader; its parent_hash
	// is the zero hash.
	GenesisHeader *block.Header
}

// MainNetParams are the production network parameters.
var MainNetParams = Params{
	NetworkID:        "coinjecture-mainnet",
	EpochLength:      2016,
	TierLimits:       problem.DefaultTierLimits(),
	VerifyBudget:     defaultVerifyBudgets(),
	DifficultyParams: difficulty.DefaultParams(),
	InitialDifficultyTargets: map[problem.Tier]uint64{
		problem.TierMobile:  1 << 20,
		problem.TierDesktop: 1 << 24,
		problem.TierServer:  1 << 28,
	},
	FinalityDepth: 32,
	MaxReorgDepth: 100,
	GenesisHeader: genesisHeader(),
}

// TestNetParams are the public test network parameters: a much shorter
// epoch, a smaller reorg bound (50) and shallower finality (8) so test
// chains converge quickly.
var TestNetParams = Params{
	NetworkID:        "coinjecture-testnet",
	EpochLength:      144,
	TierLimits:       problem.DefaultTierLimits(),
	VerifyBudget:     defaultVerifyBudgets(),
	DifficultyParams: difficulty.DefaultParams(),
	InitialDifficultyTargets: map[problem.Tier]uint64{
		problem.TierMobile:  1 << 16,
		problem.TierDesktop: 1 << 18,
		problem.TierServer:  1 << 20,
	},
	FinalityDepth: 8,
	MaxReorgDepth: 50,
	GenesisHeader: genesisHeader(),
}

func defaultVerifyBudgets() map[problem.Tier]problem.Budget {
	limits := problem.DefaultTierLimits()
	return map[problem.Tier]problem.Budget{
		problem.TierMobile:  problem.DefaultBudgetForTier(problem.TierMobile, limits),
		problem.TierDesktop: problem.DefaultBudgetForTier(problem.TierDesktop, limits),
		problem.TierServer:  problem.DefaultBudgetForTier(problem.TierServer, limits),
	}
}

// genesisHeader builds the deterministic, unsigned root header shared by
// every network's block tree. Genesis is special-cased by
// blocktree.NewTree (seeded directly, never run through admission), so
// it does not need a signature that would verify.
func genesisHeader() *block.Header {
	h := &block.Header{
		CodecVersion:     block.CodecVersion,
		BlockIndex:       0,
		Timestamp:        0,
		DifficultyTarget: 1 << 20,
		Tier:             problem.TierMobile,
	}
	zeroPriv := make(ed25519.PrivateKey, ed25519.PrivateKeySize)
	h.Sign(zeroPriv)
	return h
}

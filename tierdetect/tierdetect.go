// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package tierdetect provides a non-consensus hint for which hardware
// tier (MOBILE/DESKTOP/SERVER) a miner is probably running on. The
// result is never consensus-checked: a block's declared tier is validated
// against its Subset-Sum instance size alone (spec section 4.4/4.7); a
// miner is free to mine any tier its hardware can keep up with, and a
// wrong hint here only costs that miner wasted work, never a consensus
// fault.
//
// Grounded on mining/mobilex/arm64.go's hand-rolled ARM feature
// detection from the teacher repo, replaced with
// golang.org/x/sys/cpu's portable feature flags -- an indirect teacher
// dependency (pulled in transitively through the module graph but unused
// in the retrieved source subset) given a concrete home here.
package tierdetect

import (
	"runtime"

	"golang.org/x/sys/cpu"

	"github.com/coinjecture/consensus/problem"
)

// Hint reports the detected CPU core count and SIMD capability alongside
// the suggested tier.
type Hint struct {
	Tier      problem.Tier
	NumCPU    int
	HasSIMD   bool
	Architecture string
}

// Detect returns a best-effort Hint for the local machine. Core count is
// the dominant signal: mobile-class devices rarely expose more than 8
// logical CPUs to a single process, server-class hosts commonly expose
// 32+.
func Detect() Hint {
	n := runtime.NumCPU()
	simd := hasSIMD()

	tier := problem.TierDesktop
	switch {
	case n <= 8 && !simd:
		tier = problem.TierMobile
	case n >= 32:
		tier = problem.TierServer
	}

	return Hint{Tier: tier, NumCPU: n, HasSIMD: simd, Architecture: runtime.GOARCH}
}

// hasSIMD reports whether the process is running on hardware with a
// wide SIMD instruction set (AVX2 on amd64, ASIMD on arm64), a loose
// proxy for "fast enough to be worth declaring above MOBILE".
func hasSIMD() bool {
	switch runtime.GOARCH {
	case "amd64":
		return cpu.X86.HasAVX2
	case "arm64":
		return cpu.ARM64.HasASIMD
	default:
		return false
	}
}

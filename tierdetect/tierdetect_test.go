// Copyright (c) 2025 The COINjecture developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package tierdetect

import (
	"runtime"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/coinjecture/consensus/problem"
)

func TestDetectReturnsValidTier(t *testing.T) {
	hint := Detect()
	require.True(t, hint.Tier.Valid())
	require.Equal(t, runtime.NumCPU(), hint.NumCPU)
	require.Equal(t, runtime.GOARCH, hint.Architecture)
}

func TestDetectTierMatchesCoreCountAndSIMDRule(t *testing.T) {
	hint := Detect()
	switch {
	case hint.NumCPU <= 8 && !hint.HasSIMD:
		require.Equal(t, problem.TierMobile, hint.Tier)
	case hint.NumCPU >= 32:
		require.Equal(t, problem.TierServer, hint.Tier)
	default:
		require.Equal(t, problem.TierDesktop, hint.Tier)
	}
}

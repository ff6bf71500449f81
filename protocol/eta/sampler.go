// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package eta implements the opinion update algorithm: sampling
// neighbors, tallying their opinions (the eta of the protocol), and the
// two independence-enforcing passes ELIM and COMP.
package eta

import (
	"math/rand"

	"github.com/luxfi/fpcs/fpcsid"
)

// sampleNeighbors draws min(k, len(neighborhood)) distinct NodeIds
// uniformly without replacement from neighborhood, via an unbiased
// partial Fisher-Yates shuffle. The Design Notes favor this over the
// reference's rejection-sampling-by-division scheme, which is slightly
// biased because dividing a 64-bit draw by the neighborhood size is not
// a perfect modulo; distinctness, not the exact sampling method, is what
// the protocol requires.
func sampleNeighbors(rng *rand.Rand, neighborhood []fpcsid.NodeID, k int) []fpcsid.NodeID {
	n := len(neighborhood)
	if k >= n {
		out := make([]fpcsid.NodeID, n)
		copy(out, neighborhood)
		return out
	}

	pool := make([]fpcsid.NodeID, n)
	copy(pool, neighborhood)

	for i := 0; i < k; i++ {
		j := i + rng.Intn(n-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:k]
}

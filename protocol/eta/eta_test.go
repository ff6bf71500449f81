// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package eta

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/graph"
	"github.com/luxfi/fpcs/vision"
)

func newTestNode(t *testing.T, rng *rand.Rand, universe *graph.Universe, conflicts map[fpcsid.TxID]graph.Conflicts) *vision.Node {
	t.Helper()
	return &vision.Node{
		ID:     fpcsid.NewNodeID(rng),
		Vision: vision.New(universe, conflicts),
		Type:   vision.Regular,
	}
}

func TestThresholdRange(t *testing.T) {
	const beta = 0.1
	q := 5

	lo := uint32(beta * (1 << 32))
	hi := uint32((1 - beta) * (1 << 32))

	for r := lo; r < hi; r += (hi - lo) / 37 {
		threshold := Threshold(r, q)
		// Threshold floors r*q/2^32, so the lower bound is floor(beta*q).
		require.GreaterOrEqual(t, float64(threshold), math.Floor(beta*float64(q)))
		require.Less(t, float64(threshold), (1-beta)*float64(q))
	}
}

// R2: running ELIM on an already-independent like set is a no-op.
func TestElimIdempotentOnIndependentInput(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	universe, conflicts := graph.GenerateComplete(rng, 4)
	txs := universe.Txs()

	like := map[fpcsid.TxID]bool{txs[0]: true}
	for _, tx := range txs[1:] {
		like[tx] = false
	}

	conflictsOf := func(tx fpcsid.TxID) (graph.Conflicts, error) { return conflicts[tx], nil }

	before := map[fpcsid.TxID]bool{}
	for k, v := range like {
		before[k] = v
	}

	require.NoError(t, elim(universe, txs, like, 42, conflictsOf))
	require.Equal(t, before, like)
}

// R3: running COMP on an already-maximal independent like set is a no-op.
func TestCompIdempotentOnMaximalInput(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	universe, conflicts := graph.GenerateStar(rng, 5)
	txs := universe.Txs()
	center := txs[0]

	// center alone liked is already maximal for a star graph.
	like := map[fpcsid.TxID]bool{center: true}
	for _, tx := range txs[1:] {
		like[tx] = false
	}

	conflictsOf := func(tx fpcsid.TxID) (graph.Conflicts, error) { return conflicts[tx], nil }

	before := map[fpcsid.TxID]bool{}
	for k, v := range like {
		before[k] = v
	}

	require.NoError(t, comp(universe, txs, like, 7, conflictsOf))
	require.Equal(t, before, like)
}

// P6: after ELIM+COMP, like' is a maximal independent set.
func TestUpdateProducesMaximalIndependentSet(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	universe, conflicts := graph.GenerateComplete(rng, 6)
	txs := universe.Txs()

	n := newTestNode(t, rng, universe, conflicts)
	for _, tx := range txs {
		require.NoError(t, n.Vision.SetOpinion(tx, vision.Pending(true, 0)))
	}
	n.Neighborhood = nil

	result, err := Update(rng, n, 123, 5, func(fpcsid.NodeID) (*vision.Node, bool) { return nil, false })
	require.NoError(t, err)

	likedCount := 0
	for _, liked := range result {
		if liked {
			likedCount++
		}
	}
	// Complete graph: maximal independent set has exactly one member.
	require.Equal(t, 1, likedCount)
}

func TestFaultyNeighborConsumesSlotWithoutContribution(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	universe, conflicts := graph.GenerateComplete(rng, 3)

	n := newTestNode(t, rng, universe, conflicts)
	faulty := newTestNode(t, rng, universe, conflicts)
	faulty.Type = vision.Faulty
	n.Neighborhood = []fpcsid.NodeID{faulty.ID}

	lookup := func(id fpcsid.NodeID) (*vision.Node, bool) {
		if id == faulty.ID {
			return faulty, true
		}
		return nil, false
	}

	result, err := Update(rng, n, 999, 1, lookup)
	require.NoError(t, err)

	// No like votes: every like' starts false, ELIM has nothing to drop,
	// and COMP alone decides the result.
	txs := universe.Txs()
	expected := make(map[fpcsid.TxID]bool, len(txs))
	for _, tx := range txs {
		expected[tx] = false
	}
	conflictsOf := func(tx fpcsid.TxID) (graph.Conflicts, error) { return conflicts[tx], nil }
	require.NoError(t, comp(universe, txs, expected, 999, conflictsOf))
	require.Equal(t, expected, result)
}

func TestMaliciousNeighborMimicsQuerier(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	universe, conflicts := graph.GenerateComplete(rng, 2)
	txs := universe.Txs()

	n := newTestNode(t, rng, universe, conflicts)
	require.NoError(t, n.Vision.SetOpinion(txs[0], vision.Pending(true, 0)))

	malicious := newTestNode(t, rng, universe, conflicts)
	malicious.Type = vision.Malicious
	n.Neighborhood = []fpcsid.NodeID{malicious.ID}

	lookup := func(id fpcsid.NodeID) (*vision.Node, bool) {
		if id == malicious.ID {
			return malicious, true
		}
		return nil, false
	}

	// With q=1 and r in the middle of uint32 range, threshold = floor(r/2^32)
	// which is 0 for r < 2^32, so any single like vote clears threshold.
	result, err := Update(rng, n, 1<<31, 1, lookup)
	require.NoError(t, err)
	require.True(t, result[txs[0]])
}

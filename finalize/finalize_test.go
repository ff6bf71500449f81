// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package finalize

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/graph"
	"github.com/luxfi/fpcs/vision"
)

func newNode(rng *rand.Rand, universe *graph.Universe, conflicts map[fpcsid.TxID]graph.Conflicts) *vision.Node {
	return &vision.Node{
		ID:     fpcsid.NewNodeID(rng),
		Vision: vision.New(universe, conflicts),
		Type:   vision.Regular,
	}
}

func TestApplyAgreementAdvancesStreak(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	universe, conflicts := graph.GenerateComplete(rng, 2)
	txs := universe.Txs()
	node := newNode(rng, universe, conflicts)

	require.NoError(t, node.Vision.SetOpinion(txs[0], vision.Pending(true, 0)))
	require.NoError(t, Apply(node, txs[0], true, 5))

	op, err := node.Vision.Opinion(txs[0])
	require.NoError(t, err)
	require.True(t, op.IsPending())
	require.Equal(t, uint32(1), op.Streak())
}

func TestApplyDisagreementResetsStreak(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	universe, conflicts := graph.GenerateComplete(rng, 2)
	txs := universe.Txs()
	node := newNode(rng, universe, conflicts)

	require.NoError(t, node.Vision.SetOpinion(txs[0], vision.Pending(true, 3)))
	require.NoError(t, Apply(node, txs[0], false, 5))

	op, err := node.Vision.Opinion(txs[0])
	require.NoError(t, err)
	require.Equal(t, vision.Pending(false, 0), op)
}

// P4: immediately after Final(true), every conflicter is Final(false).
func TestApplyFinalizesAndCascades(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	universe, conflicts := graph.GenerateComplete(rng, 4)
	txs := universe.Txs()
	node := newNode(rng, universe, conflicts)

	const l = 5
	require.NoError(t, node.Vision.SetOpinion(txs[0], vision.Pending(true, l-1)))
	require.NoError(t, Apply(node, txs[0], true, l))

	op, err := node.Vision.Opinion(txs[0])
	require.NoError(t, err)
	require.Equal(t, vision.Final(true), op)

	c, err := node.Vision.Conflicts(txs[0])
	require.NoError(t, err)
	for _, conflicter := range c.List() {
		cop, err := node.Vision.Opinion(conflicter)
		require.NoError(t, err)
		require.Equal(t, vision.Final(false), cop)
	}
}

// P1: Final opinions never change regardless of subsequent Apply calls.
func TestApplyLeavesFinalUnchanged(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	universe, conflicts := graph.GenerateComplete(rng, 2)
	txs := universe.Txs()
	node := newNode(rng, universe, conflicts)

	require.NoError(t, node.Vision.SetOpinion(txs[0], vision.Final(true)))
	require.NoError(t, Apply(node, txs[0], false, 5))

	op, err := node.Vision.Opinion(txs[0])
	require.NoError(t, err)
	require.Equal(t, vision.Final(true), op)
}

func TestApplyDislikeStreakNeverFinalizesDirectly(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	universe, conflicts := graph.GenerateComplete(rng, 2)
	txs := universe.Txs()
	node := newNode(rng, universe, conflicts)

	require.NoError(t, node.Vision.SetOpinion(txs[0], vision.Pending(false, 10)))
	require.NoError(t, Apply(node, txs[0], false, 5))

	op, err := node.Vision.Opinion(txs[0])
	require.NoError(t, err)
	require.True(t, op.IsPending())
	require.False(t, op.IsLike())
}

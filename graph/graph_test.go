// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package graph

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fpcs/fpcsid"
)

func TestGenerateCompleteEveryPairConflicts(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	universe, conflicts := GenerateComplete(rng, 5)
	txs := universe.Txs()

	for i, a := range txs {
		for j, b := range txs {
			if i == j {
				require.False(t, conflicts[a].Has(b), "tx must not conflict with itself")
				continue
			}
			require.True(t, conflicts[a].Has(b))
		}
	}
}

func TestGenerateStarTopology(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	universe, conflicts := GenerateStar(rng, 5)
	txs := universe.Txs()
	center := txs[0]
	leaves := txs[1:]

	for _, leaf := range leaves {
		require.True(t, conflicts[center].Has(leaf))
		require.True(t, conflicts[leaf].Has(center))
	}

	for i, a := range leaves {
		for j, b := range leaves {
			if i == j {
				continue
			}
			require.False(t, conflicts[a].Has(b), "leaves must not conflict with each other")
		}
	}
}

func TestConflictsSymmetric(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	universe, conflicts := GenerateStar(rng, 20)
	for _, tx := range universe.Txs() {
		for _, other := range conflicts[tx].List() {
			require.True(t, conflicts[other].Has(tx))
		}
	}
}

func TestBitsetThresholdSwitchesRepresentation(t *testing.T) {
	old := BitsetThreshold
	defer func() { BitsetThreshold = old }()

	BitsetThreshold = 4
	rng := rand.New(rand.NewSource(4))
	universe, conflicts := GenerateComplete(rng, 10)
	require.True(t, universe.UsesBitset())

	txs := universe.Txs()
	_, ok := conflicts[txs[0]].(*bitConflicts)
	require.True(t, ok)

	liked := NewLikedSet(universe)
	liked.Add(txs[1])
	require.True(t, conflicts[txs[0]].IntersectsLiked(liked))
}

func TestDenseRepresentationBelowThreshold(t *testing.T) {
	old := BitsetThreshold
	defer func() { BitsetThreshold = old }()

	BitsetThreshold = 64
	rng := rand.New(rand.NewSource(5))
	universe, conflicts := GenerateComplete(rng, 3)
	require.False(t, universe.UsesBitset())

	txs := universe.Txs()
	_, ok := conflicts[txs[0]].(*denseConflicts)
	require.True(t, ok)
}

func TestLikedSetAddRemoveHas(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	universe, _ := GenerateComplete(rng, 5)
	txs := universe.Txs()

	liked := NewLikedSet(universe)
	require.False(t, liked.Has(txs[0]))

	liked.Add(txs[0])
	require.True(t, liked.Has(txs[0]))

	liked.Remove(txs[0])
	require.False(t, liked.Has(txs[0]))
}

func TestGenerateDistinctTxIDsNoDuplicates(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	universe, _ := GenerateComplete(rng, 50)
	txs := universe.Txs()

	seen := make(map[fpcsid.TxID]struct{}, len(txs))
	for _, tx := range txs {
		_, dup := seen[tx]
		require.False(t, dup)
		seen[tx] = struct{}{}
	}
}

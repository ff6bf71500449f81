// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vision

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/graph"
)

func TestNodeTypePredicates(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	universe, conflicts := graph.GenerateComplete(rng, 2)

	n := &Node{ID: fpcsid.NewNodeID(rng), Vision: New(universe, conflicts), Type: Malicious}
	require.False(t, n.IsRegular())
	require.False(t, n.IsFaulty())
	require.True(t, n.IsMalicious())
}

// I3: Node.status = Finalized iff every opinion in its vision is Final.
func TestRefreshStatus(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	universe, conflicts := graph.GenerateComplete(rng, 2)
	txs := universe.Txs()

	n := &Node{ID: fpcsid.NewNodeID(rng), Vision: New(universe, conflicts), Type: Regular}
	n.RefreshStatus()
	require.Equal(t, NotFinalized, n.Status)

	require.NoError(t, n.Vision.SetOpinion(txs[0], Final(true)))
	require.NoError(t, n.Vision.SetOpinion(txs[1], Final(false)))
	n.RefreshStatus()
	require.Equal(t, Finalized, n.Status)
}

func TestNodeTypeString(t *testing.T) {
	require.Equal(t, "Regular", Regular.String())
	require.Equal(t, "Faulty", Faulty.String())
	require.Equal(t, "Malicious", Malicious.String())
}

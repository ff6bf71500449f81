// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package eta

import (
	"math/rand"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/fpcs/bag"
	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/graph"
	"github.com/luxfi/fpcs/vision"
)

// NeighborLookup resolves a sampled NodeID to the node it identifies. The
// opinion update pipeline borrows read access to every sampled neighbor's
// vision through this; it never mutates the neighbor.
type NeighborLookup func(id fpcsid.NodeID) (*vision.Node, bool)

// Update runs one node's QUERY -> tally -> threshold -> ELIM -> COMP pass
// and returns the resulting auxiliary like' vector for every tx in the
// querying node's vision. r is the round's shared random; k is the
// configured sample size. r must already lie in the biased range
// [beta*2^32, (1-beta)*2^32) the round driver draws it from.
func Update(rng *rand.Rand, n *vision.Node, r uint32, k int, lookup NeighborLookup) (map[fpcsid.TxID]bool, error) {
	sampled := sampleNeighbors(rng, n.Neighborhood, k)
	q := len(sampled)

	likes := bag.New[fpcsid.TxID]()
	for _, id := range sampled {
		neighbor, ok := lookup(id)
		if !ok {
			continue
		}

		switch neighbor.Type {
		case vision.Regular:
			for _, tx := range n.Vision.Txs() {
				op, err := neighbor.Vision.Opinion(tx)
				if err != nil {
					return nil, err
				}
				if op.IsLike() {
					likes.Add(tx)
				}
			}
		case vision.Malicious:
			for _, tx := range n.Vision.Txs() {
				op, err := n.Vision.Opinion(tx)
				if err != nil {
					return nil, err
				}
				if op.IsLike() {
					likes.Add(tx)
				}
			}
		case vision.Faulty:
			// Contributes nothing; the slot is still consumed.
		default:
			return nil, errors.AssertionFailedf("eta: unknown node type %v", neighbor.Type)
		}
	}

	threshold := Threshold(r, q)

	txs := n.Vision.Txs()
	result := make(map[fpcsid.TxID]bool, len(txs))
	for _, tx := range txs {
		result[tx] = likes.Count(tx) > threshold
	}

	conflictsOf := func(tx fpcsid.TxID) (graph.Conflicts, error) {
		return n.Vision.Conflicts(tx)
	}
	universe := n.Vision.Universe()

	if err := elim(universe, txs, result, r, conflictsOf); err != nil {
		return nil, err
	}
	if err := comp(universe, txs, result, r, conflictsOf); err != nil {
		return nil, err
	}

	return result, nil
}

// Threshold computes floor(r*q / 2^32) in 64-bit space rather than the
// spec's stated 128-bit arithmetic: r and q are both well within 32 bits,
// so the product fits in 64 bits without overflow.
func Threshold(r uint32, q int) int {
	if q <= 0 {
		return 0
	}
	product := uint64(r) * uint64(q)
	return int(product >> 32)
}

// elim orders transactions by key(tx, r) descending and drops any
// currently-liked tx that conflicts with another still-liked tx, leaving
// like' an independent set (4.D.4). The running liked set uses
// graph.LikedSet so the conflict test is a single bitwise AND once the
// universe is large enough to use the bitset representation.
func elim(universe *graph.Universe, txs []fpcsid.TxID, like map[fpcsid.TxID]bool, r uint32, conflictsOf func(fpcsid.TxID) (graph.Conflicts, error)) error {
	order := fpcsid.OrderDescending(txs, r)

	liked := graph.NewLikedSet(universe)
	for _, tx := range txs {
		if like[tx] {
			liked.Add(tx)
		}
	}

	for _, tx := range order {
		if !like[tx] {
			continue
		}
		conflicts, err := conflictsOf(tx)
		if err != nil {
			return err
		}
		if conflicts.IntersectsLiked(liked) {
			like[tx] = false
			liked.Remove(tx)
		}
	}
	return nil
}

// comp orders transactions by key(tx, r) ascending and adds any
// currently-disliked tx that conflicts with nothing in the liked set,
// extending like' to maximality (4.D.5).
func comp(universe *graph.Universe, txs []fpcsid.TxID, like map[fpcsid.TxID]bool, r uint32, conflictsOf func(fpcsid.TxID) (graph.Conflicts, error)) error {
	order := fpcsid.OrderAscending(txs, r)

	liked := graph.NewLikedSet(universe)
	for _, tx := range txs {
		if like[tx] {
			liked.Add(tx)
		}
	}

	for _, tx := range order {
		if like[tx] {
			continue
		}
		conflicts, err := conflictsOf(tx)
		if err != nil {
			return err
		}
		if !conflicts.IntersectsLiked(liked) {
			like[tx] = true
			liked.Add(tx)
		}
	}
	return nil
}

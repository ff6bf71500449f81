// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vision

import "github.com/luxfi/fpcs/fpcsid"

// LikeDistribution selects how the round driver's initial-opinion
// seeding spreads starting likes across the tx universe (§4.F).
type LikeDistribution struct {
	concentrated bool
	m            int
}

// Equal distributes starting likes across every transaction in the universe.
func Equal() LikeDistribution {
	return LikeDistribution{}
}

// Concentrated distributes starting likes across only the first m
// transactions, in universe (generation) order.
func Concentrated(m int) LikeDistribution {
	return LikeDistribution{concentrated: true, m: m}
}

// LikedTxCount returns how many of the txCount universe transactions
// carry an initial like, for this distribution.
func (d LikeDistribution) LikedTxCount(txCount int) int {
	if !d.concentrated {
		return txCount
	}
	if d.m < txCount {
		return d.m
	}
	return txCount
}

// SeedInitialOpinions implements the round driver's initial-opinion
// seeding procedure (§4.F): honest nodes, in node_set order, are zipped
// with the expansion of the per-tx like multiset computed from dist;
// every remaining None opinion is then filled in vision iteration order,
// liking a tx unless it conflicts with the like-set built so far. This
// guarantees each honest node starts with an independent liked set.
//
// universeOrder must be the universe's generation order (graph.Universe.Txs),
// not a node's own ascending vision order: Concentrated(m) and the like
// multiset are defined over generation order.
func SeedInitialOpinions(universeOrder []fpcsid.TxID, honestNodes []*Node, dist LikeDistribution) error {
	if len(universeOrder) == 0 || len(honestNodes) == 0 {
		return nil
	}

	likedTxCount := dist.LikedTxCount(len(universeOrder))
	if likedTxCount <= 0 {
		likedTxCount = 1
	}

	h := len(honestNodes)
	base := h / likedTxCount
	remainder := h - base*likedTxCount

	likeCounts := make([]int, likedTxCount)
	for i := range likeCounts {
		likeCounts[i] = base
		if i < remainder {
			likeCounts[i]++
		}
	}

	expanded := make([]fpcsid.TxID, 0, h)
	for i, count := range likeCounts {
		for j := 0; j < count; j++ {
			expanded = append(expanded, universeOrder[i])
		}
	}

	for i, node := range honestNodes {
		if i >= len(expanded) {
			break
		}
		if err := node.Vision.SetOpinion(expanded[i], Pending(true, 0)); err != nil {
			return err
		}
	}

	for _, node := range honestNodes {
		liked := make(map[fpcsid.TxID]struct{})
		for _, tx := range node.Vision.Txs() {
			op, err := node.Vision.Opinion(tx)
			if err != nil {
				return err
			}
			if op.IsLike() {
				liked[tx] = struct{}{}
			}
		}

		for _, tx := range node.Vision.Txs() {
			op, err := node.Vision.Opinion(tx)
			if err != nil {
				return err
			}
			if !op.IsNone() {
				continue
			}

			conflicts, err := node.Vision.Conflicts(tx)
			if err != nil {
				return err
			}
			conflictsWithLiked := false
			for c := range liked {
				if conflicts.Has(c) {
					conflictsWithLiked = true
					break
				}
			}

			if conflictsWithLiked {
				if err := node.Vision.SetOpinion(tx, Pending(false, 0)); err != nil {
					return err
				}
			} else {
				if err := node.Vision.SetOpinion(tx, Pending(true, 0)); err != nil {
					return err
				}
				liked[tx] = struct{}{}
			}
		}
	}

	return nil
}

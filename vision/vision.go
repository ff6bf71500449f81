// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package vision implements the per-node view of the protocol: a
// mapping from every known transaction to its conflict set and current
// opinion (component C), plus the node record that owns one.
package vision

import (
	"sort"

	"github.com/cockroachdb/errors"

	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/graph"
)

// Vision maps every TxID in the shared universe to its Conflicts and the
// owning node's current Opinion on it (invariant I1: every node's vision
// covers the same transaction universe). Each node exclusively owns its
// own Vision, built with New; Clone returns an independent copy of an
// existing Vision.
type Vision struct {
	universe  *graph.Universe
	conflicts map[fpcsid.TxID]graph.Conflicts
	opinions  map[fpcsid.TxID]Opinion
	order     []fpcsid.TxID
}

// New builds a vision over universe and conflicts with every opinion set
// to None. conflicts is shared (read-only) across every node built from
// the same universe; opinions are private per Vision.
func New(universe *graph.Universe, conflicts map[fpcsid.TxID]graph.Conflicts) *Vision {
	txs := universe.Txs()
	opinions := make(map[fpcsid.TxID]Opinion, len(txs))
	for _, tx := range txs {
		opinions[tx] = None()
	}

	order := append([]fpcsid.TxID(nil), txs...)
	sort.Slice(order, func(i, j int) bool {
		return fpcsid.Uint32(order[i]) < fpcsid.Uint32(order[j])
	})

	return &Vision{
		universe:  universe,
		conflicts: conflicts,
		opinions:  opinions,
		order:     order,
	}
}

// Clone returns a deep, independently-owned copy of v. The conflict
// graph (read-only) is shared; the opinion map is duplicated.
func (v *Vision) Clone() *Vision {
	opinions := make(map[fpcsid.TxID]Opinion, len(v.opinions))
	for tx, op := range v.opinions {
		opinions[tx] = op
	}
	return &Vision{
		universe:  v.universe,
		conflicts: v.conflicts,
		opinions:  opinions,
		order:     v.order,
	}
}

// Txs returns every TxID this vision covers, in ascending-id order. This
// is "vision iteration order": the order the initial-opinion seeding
// fill step and the debug dump walk.
func (v *Vision) Txs() []fpcsid.TxID {
	return append([]fpcsid.TxID(nil), v.order...)
}

// Universe returns the shared transaction universe this vision ranges
// over, so callers can build a graph.LikedSet with a matching
// representation (dense vs bitset).
func (v *Vision) Universe() *graph.Universe {
	return v.universe
}

// Conflicts returns the conflict set for tx. Access to an unknown TxID
// is an invariant violation (§7): the caller asked about a transaction
// that should never have entered its sample in the first place.
func (v *Vision) Conflicts(tx fpcsid.TxID) (graph.Conflicts, error) {
	c, ok := v.conflicts[tx]
	if !ok {
		return nil, errors.AssertionFailedf("vision: unknown TxId %s", tx)
	}
	return c, nil
}

// Opinion returns the current opinion for tx.
func (v *Vision) Opinion(tx fpcsid.TxID) (Opinion, error) {
	op, ok := v.opinions[tx]
	if !ok {
		return Opinion{}, errors.AssertionFailedf("vision: unknown TxId %s", tx)
	}
	return op, nil
}

// SetOpinion records next as the opinion for tx. Final opinions are
// monotone (invariant I5): overwriting an existing Final with a Final of
// a different like value is an invariant violation and panics rather
// than silently corrupting state, per the reference's cascade
// write-through note (§4.E, §9).
func (v *Vision) SetOpinion(tx fpcsid.TxID, next Opinion) error {
	cur, err := v.Opinion(tx)
	if err != nil {
		return err
	}
	if cur.IsFinal() && next.IsFinal() && cur.like != next.like {
		panic(errors.AssertionFailedf(
			"vision: cascade would overwrite Final(%v) with Final(%v) for tx %s",
			cur.like, next.like, tx,
		))
	}
	v.opinions[tx] = next
	return nil
}

// HasFullyFinalized reports whether every opinion in this vision is Final.
func (v *Vision) HasFullyFinalized() bool {
	for _, op := range v.opinions {
		if !op.IsFinal() {
			return false
		}
	}
	return true
}

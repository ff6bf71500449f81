// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package graph builds the conflict graph every node's vision ranges
// over, and the per-transaction Conflicts sets nodes test their liked
// set against during ELIM/COMP.
package graph

import (
	"math/rand"

	"github.com/bits-and-blooms/bitset"

	"github.com/luxfi/fpcs/fpcsid"
)

// BitsetThreshold is the tx_count at or above which Conflicts and
// LikedSet switch from a dense map representation to a
// bits-and-blooms bitset, so Conflicts ∩ likedSet becomes a bitwise
// AND-test in one word per 64 txs rather than a per-element membership
// loop (see the conflict graph representation design note).
var BitsetThreshold = 64

// NodeTopology selects the shape of the node-to-node graph.
type NodeTopology int

const (
	// CompleteNodes connects every node to every other node; this is the
	// only topology the simulator supports.
	CompleteNodes NodeTopology = iota
)

// TxTopology selects the shape of the conflict graph.
type TxTopology int

const (
	// CompleteTx makes every pair of distinct transactions conflict, so
	// exactly one transaction can ever be liked.
	CompleteTx TxTopology = iota
	// StarTx makes one center conflict with every leaf; leaves do not
	// conflict with each other, so either the center alone is liked, or
	// every leaf is.
	StarTx
)

// Universe is the fixed, shared set of TxIDs every node's vision ranges
// over (invariant I1). Ordering is generation order: for StarTx the
// first id generated is the center, and initial-opinion distribution
// walks this same order.
type Universe struct {
	txs        []fpcsid.TxID
	index      map[fpcsid.TxID]uint
	useBitset  bool
}

func newUniverse(txs []fpcsid.TxID) *Universe {
	idx := make(map[fpcsid.TxID]uint, len(txs))
	for i, tx := range txs {
		idx[tx] = uint(i)
	}
	return &Universe{
		txs:       txs,
		index:     idx,
		useBitset: len(txs) >= BitsetThreshold,
	}
}

// Txs returns the transaction universe in generation order.
func (u *Universe) Txs() []fpcsid.TxID {
	return append([]fpcsid.TxID(nil), u.txs...)
}

// Len returns the size of the universe.
func (u *Universe) Len() int {
	return len(u.txs)
}

// UsesBitset reports whether Conflicts/LikedSet built from this universe
// use the bitset representation.
func (u *Universe) UsesBitset() bool {
	return u.useBitset
}

func (u *Universe) indexOf(tx fpcsid.TxID) (uint, bool) {
	i, ok := u.index[tx]
	return i, ok
}

// Conflicts is the unordered set of TxIds that conflict with one
// transaction. Generators build these symmetrically: a tx is never a
// member of its own conflict set, and an edge is always inserted in
// both directions.
type Conflicts interface {
	// Has reports whether tx is a member of this conflict set.
	Has(tx fpcsid.TxID) bool
	// IntersectsLiked reports whether this conflict set shares any
	// element with liked.
	IntersectsLiked(liked *LikedSet) bool
	// List returns the conflicting TxIds, in no particular order.
	List() []fpcsid.TxID
}

type denseConflicts struct {
	members map[fpcsid.TxID]struct{}
}

func newDenseConflicts(txs []fpcsid.TxID) *denseConflicts {
	m := make(map[fpcsid.TxID]struct{}, len(txs))
	for _, tx := range txs {
		m[tx] = struct{}{}
	}
	return &denseConflicts{members: m}
}

func (c *denseConflicts) Has(tx fpcsid.TxID) bool {
	_, ok := c.members[tx]
	return ok
}

func (c *denseConflicts) IntersectsLiked(liked *LikedSet) bool {
	for tx := range c.members {
		if liked.Has(tx) {
			return true
		}
	}
	return false
}

func (c *denseConflicts) List() []fpcsid.TxID {
	out := make([]fpcsid.TxID, 0, len(c.members))
	for tx := range c.members {
		out = append(out, tx)
	}
	return out
}

type bitConflicts struct {
	universe *Universe
	bits     *bitset.BitSet
}

func newBitConflicts(universe *Universe, txs []fpcsid.TxID) *bitConflicts {
	bs := bitset.New(uint(universe.Len()))
	for _, tx := range txs {
		if i, ok := universe.indexOf(tx); ok {
			bs.Set(i)
		}
	}
	return &bitConflicts{universe: universe, bits: bs}
}

func (c *bitConflicts) Has(tx fpcsid.TxID) bool {
	i, ok := c.universe.indexOf(tx)
	return ok && c.bits.Test(i)
}

func (c *bitConflicts) IntersectsLiked(liked *LikedSet) bool {
	return c.bits.IntersectionCardinality(liked.bits) > 0
}

func (c *bitConflicts) List() []fpcsid.TxID {
	out := make([]fpcsid.TxID, 0, c.bits.Count())
	for i, ok := c.bits.NextSet(0); ok; i, ok = c.bits.NextSet(i + 1) {
		out = append(out, c.universe.txs[i])
	}
	return out
}

// LikedSet is the mutable set of currently-liked transactions ELIM and
// COMP maintain while walking the hashed order. Its representation
// (dense map vs bitset) always mirrors the Universe it was built from,
// so IntersectsLiked is a same-representation test.
type LikedSet struct {
	universe *Universe
	dense    map[fpcsid.TxID]struct{}
	bits     *bitset.BitSet
}

// NewLikedSet creates an empty liked set scoped to universe.
func NewLikedSet(universe *Universe) *LikedSet {
	if universe.UsesBitset() {
		return &LikedSet{universe: universe, bits: bitset.New(uint(universe.Len()))}
	}
	return &LikedSet{universe: universe, dense: make(map[fpcsid.TxID]struct{})}
}

// Add inserts tx into the liked set.
func (s *LikedSet) Add(tx fpcsid.TxID) {
	if s.bits != nil {
		if i, ok := s.universe.indexOf(tx); ok {
			s.bits.Set(i)
		}
		return
	}
	s.dense[tx] = struct{}{}
}

// Remove deletes tx from the liked set.
func (s *LikedSet) Remove(tx fpcsid.TxID) {
	if s.bits != nil {
		if i, ok := s.universe.indexOf(tx); ok {
			s.bits.Clear(i)
		}
		return
	}
	delete(s.dense, tx)
}

// Has reports whether tx is currently liked.
func (s *LikedSet) Has(tx fpcsid.TxID) bool {
	if s.bits != nil {
		i, ok := s.universe.indexOf(tx)
		return ok && s.bits.Test(i)
	}
	_, ok := s.dense[tx]
	return ok
}

func generateDistinctTxIDs(rng *rand.Rand, txCount int) []fpcsid.TxID {
	seen := make(map[fpcsid.TxID]struct{}, txCount)
	txs := make([]fpcsid.TxID, 0, txCount)
	for len(txs) < txCount {
		tx := fpcsid.NewTxID(rng)
		if _, dup := seen[tx]; dup {
			continue
		}
		seen[tx] = struct{}{}
		txs = append(txs, tx)
	}
	return txs
}

// GenerateComplete builds a complete conflict graph over txCount fresh
// transactions: every pair of distinct transactions conflicts, so
// exactly one transaction can ever be liked.
func GenerateComplete(rng *rand.Rand, txCount int) (*Universe, map[fpcsid.TxID]Conflicts) {
	txs := generateDistinctTxIDs(rng, txCount)
	universe := newUniverse(txs)

	conflicts := make(map[fpcsid.TxID]Conflicts, txCount)
	for i, tx := range txs {
		others := make([]fpcsid.TxID, 0, txCount-1)
		others = append(others, txs[:i]...)
		others = append(others, txs[i+1:]...)
		conflicts[tx] = newConflicts(universe, others)
	}
	return universe, conflicts
}

// GenerateStar builds a star conflict graph over txCount fresh
// transactions: the first generated id is the center and conflicts with
// every leaf; leaves do not conflict with one another.
func GenerateStar(rng *rand.Rand, txCount int) (*Universe, map[fpcsid.TxID]Conflicts) {
	txs := generateDistinctTxIDs(rng, txCount)
	universe := newUniverse(txs)

	conflicts := make(map[fpcsid.TxID]Conflicts, txCount)
	if txCount == 0 {
		return universe, conflicts
	}
	center := txs[0]
	leaves := append([]fpcsid.TxID(nil), txs[1:]...)

	conflicts[center] = newConflicts(universe, leaves)
	for _, leaf := range leaves {
		conflicts[leaf] = newConflicts(universe, []fpcsid.TxID{center})
	}
	return universe, conflicts
}

func newConflicts(universe *Universe, txs []fpcsid.TxID) Conflicts {
	if universe.UsesBitset() {
		return newBitConflicts(universe, txs)
	}
	return newDenseConflicts(txs)
}

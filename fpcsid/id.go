// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fpcsid defines the opaque transaction and node identifiers used
// throughout the FPCS simulator, and the deterministic hashed ordering
// that the opinion update algorithm sorts transactions by.
package fpcsid

import (
	"encoding/binary"
	"math/rand"
	"sort"

	"github.com/cespare/xxhash/v2"
	"github.com/luxfi/ids"
)

// TxID identifies a transaction in the conflict graph.
type TxID = ids.ID

// NodeID identifies a node in the simulated network.
type NodeID = ids.NodeID

// NewTxID draws a fresh TxID from rng. Only the first four bytes carry
// entropy; the rest of the underlying array is left zero, which is fine
// since TxIDs are never compared byte-for-byte against externally
// produced ids in this simulator.
func NewTxID(rng *rand.Rand) TxID {
	var raw TxID
	binary.BigEndian.PutUint32(raw[:4], rng.Uint32())
	return raw
}

// NewNodeID draws a fresh NodeID from rng, same convention as NewTxID.
func NewNodeID(rng *rand.Rand) NodeID {
	var raw NodeID
	binary.BigEndian.PutUint32(raw[:4], rng.Uint32())
	return raw
}

// Uint32 returns the stable 32-bit projection of a TxID used for hashing.
func Uint32(id TxID) uint32 {
	return binary.BigEndian.Uint32(id[:4])
}

// NodeUint32 returns the stable 32-bit projection of a NodeID.
func NodeUint32(id NodeID) uint32 {
	return binary.BigEndian.Uint32(id[:4])
}

// HashKey computes key(tx, r) = H(u32(tx) || u32(r)) for a fresh,
// per-round total order on TxIds. H is cespare/xxhash's 64-bit
// non-cryptographic hash; any deterministic, well-mixing hash satisfies
// the protocol, and the implementation intentionally avoids depending on
// any particular constant xxhash happens to use internally.
func HashKey(tx TxID, r uint32) uint64 {
	var buf [8]byte
	binary.BigEndian.PutUint32(buf[0:4], Uint32(tx))
	binary.BigEndian.PutUint32(buf[4:8], r)
	return xxhash.Sum64(buf[:])
}

// OrderDescending returns txs sorted by key(tx, r) descending, the order
// ELIM walks in. The input slice is not mutated.
func OrderDescending(txs []TxID, r uint32) []TxID {
	out := append([]TxID(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := HashKey(out[i], r), HashKey(out[j], r)
		if ki != kj {
			return ki > kj
		}
		return Uint32(out[i]) > Uint32(out[j])
	})
	return out
}

// OrderAscending returns txs sorted by key(tx, r) ascending, the order
// COMP walks in. The input slice is not mutated.
func OrderAscending(txs []TxID, r uint32) []TxID {
	out := append([]TxID(nil), txs...)
	sort.SliceStable(out, func(i, j int) bool {
		ki, kj := HashKey(out[i], r), HashKey(out[j], r)
		if ki != kj {
			return ki < kj
		}
		return Uint32(out[i]) < Uint32(out[j])
	})
	return out
}

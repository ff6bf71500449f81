// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package database implements the round driver (component F): it owns
// every node, orchestrates synchronous rounds over the unfinalized
// honest ones, broadcasts the per-round random, and tracks each
// transaction's global finalization status.
package database

import (
	"fmt"
	"io"
	"math/rand"
	"sort"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/fpcs/config"
	"github.com/luxfi/fpcs/finalize"
	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/fpcslog"
	"github.com/luxfi/fpcs/graph"
	"github.com/luxfi/fpcs/metrics"
	"github.com/luxfi/fpcs/protocol/eta"
	"github.com/luxfi/fpcs/vision"
)

// TxGlobalStatus tracks whether every honest node agrees a transaction
// has finalized (invariant I4).
type TxGlobalStatus uint8

const (
	TxNotFinalized TxGlobalStatus = iota
	TxFinalized
)

type txEntry struct {
	id     fpcsid.TxID
	status TxGlobalStatus
}

type nodeEntry struct {
	id       fpcsid.NodeID
	nodeType vision.NodeType
	status   vision.NodeStatus
}

// RoundObservation summarizes one call to RunRound, for callers that
// want to drive their own loop or report progress.
type RoundObservation struct {
	Round           int
	R               uint32
	NewlyFinalized  []fpcsid.TxID
	AllHonestDone   bool
}

// Database owns every node and the global transaction/node record, and
// drives rounds over them. It is not goroutine-safe: rounds update node
// visions in place, sequentially, exactly as a single engine goroutine
// would (§8 of SPEC_FULL.md).
type Database struct {
	params   config.Parameters
	universe *graph.Universe
	conflict map[fpcsid.TxID]graph.Conflicts

	nodes    map[fpcsid.NodeID]*vision.Node
	txSet    []*txEntry
	nodeSet  []*nodeEntry

	honestIDs []fpcsid.NodeID

	// RunID identifies this simulation run on the per-round log line; it
	// has no bearing on the protocol itself.
	RunID uuid.UUID

	rng     *rand.Rand
	round   int
	log     fpcslog.Logger
	metrics *metrics.Metrics
}

// New constructs a Database: total_nodes nodes of which faulty are
// Faulty and malicious are Malicious (the rest Regular), a complete
// node graph, a conflict graph of txCount transactions shaped by
// txGraph, and initial opinions seeded per dist. faulty+malicious must
// be strictly less than total (configuration error otherwise, §7).
func New(
	rng *rand.Rand,
	params config.Parameters,
	total, faulty, malicious int,
	nodeGraph graph.NodeTopology,
	txCount int,
	txGraph graph.TxTopology,
	dist vision.LikeDistribution,
	reg prometheus.Registerer,
	log fpcslog.Logger,
) (*Database, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if err := config.ValidateMembership(total, faulty, malicious); err != nil {
		return nil, err
	}
	if nodeGraph != graph.CompleteNodes {
		return nil, fmt.Errorf("database: unsupported node topology %v", nodeGraph)
	}

	var universe *graph.Universe
	var conflict map[fpcsid.TxID]graph.Conflicts
	switch txGraph {
	case graph.CompleteTx:
		universe, conflict = graph.GenerateComplete(rng, txCount)
	case graph.StarTx:
		universe, conflict = graph.GenerateStar(rng, txCount)
	default:
		return nil, fmt.Errorf("database: unsupported tx topology %v", txGraph)
	}

	if log == nil {
		log = fpcslog.NewNoOp()
	}
	m, err := metrics.New(reg)
	if err != nil {
		return nil, err
	}

	db := &Database{
		params:   params,
		universe: universe,
		conflict: conflict,
		nodes:    make(map[fpcsid.NodeID]*vision.Node, total),
		RunID:    uuid.New(),
		rng:      rng,
		log:      log,
		metrics:  m,
	}

	ids := make([]fpcsid.NodeID, 0, total)
	for i := 0; i < total; i++ {
		id := fpcsid.NewNodeID(rng)
		ids = append(ids, id)
	}

	for i, id := range ids {
		nodeType := vision.Regular
		switch {
		case i < faulty:
			nodeType = vision.Faulty
		case i < faulty+malicious:
			nodeType = vision.Malicious
		}

		node := &vision.Node{
			ID:     id,
			Vision: vision.New(universe, conflict),
			Type:   nodeType,
			Status: vision.NotFinalized,
		}
		db.nodes[id] = node
		db.nodeSet = append(db.nodeSet, &nodeEntry{id: id, nodeType: nodeType, status: vision.NotFinalized})
	}

	for _, id := range ids {
		node := db.nodes[id]
		neighborhood := make([]fpcsid.NodeID, 0, total-1)
		for _, other := range ids {
			if other != id {
				neighborhood = append(neighborhood, other)
			}
		}
		node.Neighborhood = neighborhood
	}

	for _, tx := range universe.Txs() {
		db.txSet = append(db.txSet, &txEntry{id: tx, status: TxNotFinalized})
	}

	var honestNodes []*vision.Node
	for _, id := range ids {
		node := db.nodes[id]
		if node.IsRegular() {
			db.honestIDs = append(db.honestIDs, id)
			honestNodes = append(honestNodes, node)
		}
	}

	if err := vision.SeedInitialOpinions(universe.Txs(), honestNodes, dist); err != nil {
		return nil, err
	}

	return db, nil
}

// IsFinal reports whether every honest node has fully finalized its vision.
func (db *Database) IsFinal() bool {
	for _, id := range db.honestIDs {
		if db.nodes[id].Status != vision.Finalized {
			return false
		}
	}
	return len(db.honestIDs) > 0
}

// RunRound advances one synchronous round (§4.F): draws the shared
// random, updates every unfinalized honest node in node_set order using
// the already-updated visions of earlier-processed nodes in the same
// round, then rescans global transaction status.
func (db *Database) RunRound() (RoundObservation, error) {
	db.round++

	r0 := db.rng.Uint32()
	beta := db.params.Beta
	span := 1 - 2*beta
	r := uint32(float64(r0)*span + float64(uint64(1)<<32)*beta)

	lookup := func(id fpcsid.NodeID) (*vision.Node, bool) {
		n, ok := db.nodes[id]
		return n, ok
	}

	for _, id := range db.honestIDs {
		node := db.nodes[id]
		if node.Status == vision.Finalized {
			continue
		}

		likePrime, err := eta.Update(db.rng, node, r, db.params.K, lookup)
		if err != nil {
			return RoundObservation{}, err
		}

		for _, tx := range node.Vision.Txs() {
			if err := finalize.Apply(node, tx, likePrime[tx], db.params.L); err != nil {
				return RoundObservation{}, err
			}
		}

		node.RefreshStatus()
	}

	var newlyFinalized []fpcsid.TxID
	for _, entry := range db.txSet {
		if entry.status == TxFinalized {
			continue
		}
		if db.txIsGloballyFinal(entry.id) {
			entry.status = TxFinalized
			newlyFinalized = append(newlyFinalized, entry.id)
			likedByAll := db.observeAgreement(entry.id)
			db.log.WithFields(fpcslog.TxFields(entry.id, likedByAll)...).Info("transaction finalized")
			if db.metrics != nil && db.metrics.FinalizedTxs != nil {
				db.metrics.FinalizedTxs.Inc()
			}
		}
	}

	for _, entry := range db.nodeSet {
		entry.status = db.nodes[entry.id].Status
	}

	if db.metrics != nil && db.metrics.Rounds != nil {
		db.metrics.Rounds.Inc()
	}
	db.log.WithFields(fpcslog.RoundFields(db.round, r)...).
		Info("round complete", "run", db.RunID, "newly_finalized", len(newlyFinalized))

	return RoundObservation{
		Round:          db.round,
		R:              r,
		NewlyFinalized: newlyFinalized,
		AllHonestDone:  db.IsFinal(),
	}, nil
}

func (db *Database) txIsGloballyFinal(tx fpcsid.TxID) bool {
	for _, id := range db.honestIDs {
		op, err := db.nodes[id].Vision.Opinion(tx)
		if err != nil || !op.IsFinal() {
			return false
		}
	}
	return true
}

// observeAgreement records max(likes, H-likes)/H for tx's finalization
// and reports whether the "like" side is what the honest set settled on.
func (db *Database) observeAgreement(tx fpcsid.TxID) bool {
	h := len(db.honestIDs)
	if h == 0 {
		return false
	}
	likes := 0
	for _, id := range db.honestIDs {
		op, err := db.nodes[id].Vision.Opinion(tx)
		if err == nil && op.IsLike() {
			likes++
		}
	}
	likedByAll := likes > h-likes

	if db.metrics != nil && db.metrics.AgreementRate != nil {
		rate := float64(likes)
		if h-likes > likes {
			rate = float64(h - likes)
		}
		db.metrics.AgreementRate.Observe(rate / float64(h))
	}
	return likedByAll
}

// PrintResults writes a debug dump of every honest node's vision,
// ordered by vision iteration order, in the teacher's String()-method idiom.
func (db *Database) PrintResults(w io.Writer) {
	ids := append([]fpcsid.NodeID(nil), db.honestIDs...)
	sort.Slice(ids, func(i, j int) bool {
		return fpcsid.NodeUint32(ids[i]) < fpcsid.NodeUint32(ids[j])
	})

	for _, id := range ids {
		node := db.nodes[id]
		fmt.Fprintf(w, "node %s [%s]:\n", id, node.Status)
		for _, tx := range node.Vision.Txs() {
			op, err := node.Vision.Opinion(tx)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  tx %s -> %s\n", tx, op)
		}
	}
}

// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package fpcs

import (
	"math/rand"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/luxfi/fpcs/config"
	"github.com/luxfi/fpcs/database"
	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/fpcslog"
	"github.com/luxfi/fpcs/graph"
	"github.com/luxfi/fpcs/vision"
)

type (
	// Database is the round driver: it owns every node and advances
	// synchronous rounds of the opinion update and finalization pipeline.
	Database = database.Database
	// RoundObservation summarizes one call to Database.RunRound.
	RoundObservation = database.RoundObservation

	// Parameters holds the protocol's tunables: K, L, Beta.
	Parameters = config.Parameters

	// TxID identifies a transaction in the conflict graph.
	TxID = fpcsid.TxID
	// NodeID identifies a node in the simulated network.
	NodeID = fpcsid.NodeID

	// NodeType selects a node's behavior when queried.
	NodeType = vision.NodeType
	// NodeStatus tracks a node's finalization progress.
	NodeStatus = vision.NodeStatus
	// Opinion is a node's tagged opinion on one transaction.
	Opinion = vision.Opinion
	// LikeDistribution selects how initial opinions are seeded.
	LikeDistribution = vision.LikeDistribution

	// NodeTopology selects the shape of the node-to-node graph.
	NodeTopology = graph.NodeTopology
	// TxTopology selects the shape of the conflict graph.
	TxTopology = graph.TxTopology

	// Logger is the structured logger Database accepts.
	Logger = fpcslog.Logger
)

const (
	Regular   = vision.Regular
	Faulty    = vision.Faulty
	Malicious = vision.Malicious

	NotFinalized = vision.NotFinalized
	Finalized    = vision.Finalized

	CompleteNodes = graph.CompleteNodes

	CompleteTx = graph.CompleteTx
	StarTx     = graph.StarTx
)

// DefaultParameters returns the reference constants K=5, L=5, Beta=0.1.
func DefaultParameters() Parameters {
	return config.Default()
}

// Equal distributes starting likes across every transaction.
func Equal() LikeDistribution {
	return vision.Equal()
}

// Concentrated distributes starting likes across only the first m
// transactions in generation order.
func Concentrated(m int) LikeDistribution {
	return vision.Concentrated(m)
}

// NewDatabase constructs a round driver: total nodes of which faulty
// behave as Faulty and malicious as Malicious (the remainder Regular),
// a complete node graph, a conflict graph of txCount transactions
// shaped by txGraph, with initial opinions seeded per dist.
func NewDatabase(
	rng *rand.Rand,
	params Parameters,
	total, faulty, malicious int,
	nodeGraph NodeTopology,
	txCount int,
	txGraph TxTopology,
	dist LikeDistribution,
	reg prometheus.Registerer,
	log Logger,
) (*Database, error) {
	return database.New(rng, params, total, faulty, malicious, nodeGraph, txCount, txGraph, dist, reg, log)
}

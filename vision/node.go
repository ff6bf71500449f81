// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vision

import "github.com/luxfi/fpcs/fpcsid"

// NodeType selects how a node behaves when queried (§4.D.2).
type NodeType uint8

const (
	// Regular nodes participate normally: honest tally contribution.
	Regular NodeType = iota
	// Faulty nodes are never queried meaningfully and never update;
	// their replies contribute nothing but still cost the query slot.
	Faulty
	// Malicious nodes mimic the querying node's own opinion back to it.
	Malicious
)

func (t NodeType) String() string {
	switch t {
	case Regular:
		return "Regular"
	case Faulty:
		return "Faulty"
	case Malicious:
		return "Malicious"
	default:
		return "Unknown"
	}
}

// NodeStatus tracks whether a node has finalized every opinion in its vision.
type NodeStatus uint8

const (
	NotFinalized NodeStatus = iota
	Finalized
)

func (s NodeStatus) String() string {
	if s == Finalized {
		return "Finalized"
	}
	return "NotFinalized"
}

// Node is one participant's state: its own vision, its neighborhood
// (ordered NodeIds it can query), its finalization status, and its
// behavioral type.
type Node struct {
	ID           fpcsid.NodeID
	Vision       *Vision
	Neighborhood []fpcsid.NodeID
	Status       NodeStatus
	Type         NodeType
}

// IsRegular reports whether this is an honest node.
func (n *Node) IsRegular() bool {
	return n.Type == Regular
}

// IsFaulty reports whether this node is faulty.
func (n *Node) IsFaulty() bool {
	return n.Type == Faulty
}

// IsMalicious reports whether this node is a mimicking adversary.
func (n *Node) IsMalicious() bool {
	return n.Type == Malicious
}

// RefreshStatus recomputes Status from the current vision contents
// (invariant I3: Finalized iff every opinion in the vision is Final).
func (n *Node) RefreshStatus() {
	if n.Vision.HasFullyFinalized() {
		n.Status = Finalized
	} else {
		n.Status = NotFinalized
	}
}

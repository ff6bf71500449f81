// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package finalize implements the per-(node, transaction) finalization
// state machine: streak advancement and the transition to a terminal
// opinion, in the style of the teacher's unary-consensus Photon —
// confidence counter against a beta threshold — specialized to a
// two-sided, per-tx streak rather than a single running choice.
package finalize

import (
	"github.com/cockroachdb/errors"

	"github.com/luxfi/fpcs/fpcsid"
	"github.com/luxfi/fpcs/vision"
)

// Apply advances node's opinion on tx given the new auxiliary like' value,
// following the finalization table: a Pending like whose streak has
// reached L-1 and that like' confirms again becomes Final(true), at which
// point every transaction in tx's conflict set is eagerly cascaded to
// Final(false). A Pending dislike only advances its streak and never
// finalizes directly. A Final opinion never changes.
func Apply(node *vision.Node, tx fpcsid.TxID, likePrime bool, l uint32) error {
	cur, err := node.Vision.Opinion(tx)
	if err != nil {
		return err
	}

	switch {
	case cur.IsFinal():
		return nil

	case cur.IsNone():
		return nil

	case cur.IsPending():
		if cur.IsLike() == likePrime {
			if likePrime && cur.Streak() >= l-1 {
				return finalizeAndCascade(node, tx, true)
			}
			return node.Vision.SetOpinion(tx, vision.Pending(likePrime, cur.Streak()+1))
		}
		return node.Vision.SetOpinion(tx, vision.Pending(likePrime, 0))

	default:
		return errors.AssertionFailedf("finalize: unreachable opinion state for tx %s", tx)
	}
}

// finalizeAndCascade commits tx to Final(like) and, if it was liked,
// eagerly commits every conflicting transaction to Final(false) regardless
// of its current streak (§4.E, §9 cascade write-through). A conflicter
// already Final(true) is an invariant violation: Vision.SetOpinion panics
// rather than silently letting the write stand.
func finalizeAndCascade(node *vision.Node, tx fpcsid.TxID, like bool) error {
	if err := node.Vision.SetOpinion(tx, vision.Final(like)); err != nil {
		return err
	}
	if !like {
		return nil
	}

	conflicts, err := node.Vision.Conflicts(tx)
	if err != nil {
		return err
	}
	for _, c := range conflicts.List() {
		if err := node.Vision.SetOpinion(c, vision.Final(false)); err != nil {
			return err
		}
	}
	return nil
}

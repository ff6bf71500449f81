// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package vision

import "fmt"

type opinionKind uint8

const (
	kindNone opinionKind = iota
	kindPending
	kindFinal
)

// Opinion is the tagged variant a node holds for one transaction: None
// (uninitialized), Pending(like, streak) (current binary opinion and the
// count of consecutive rounds it has held), or Final(like) (terminal,
// must never transition away — invariant I5).
type Opinion struct {
	kind   opinionKind
	like   bool
	streak uint32
}

// None returns the uninitialized opinion.
func None() Opinion {
	return Opinion{kind: kindNone}
}

// Pending returns a pending opinion with the given like value and streak.
func Pending(like bool, streak uint32) Opinion {
	return Opinion{kind: kindPending, like: like, streak: streak}
}

// Final returns a terminal opinion.
func Final(like bool) Opinion {
	return Opinion{kind: kindFinal, like: like}
}

// IsNone reports whether the opinion is still uninitialized.
func (o Opinion) IsNone() bool {
	return o.kind == kindNone
}

// IsPending reports whether the opinion is pending.
func (o Opinion) IsPending() bool {
	return o.kind == kindPending
}

// IsFinal reports whether the opinion is terminal.
func (o Opinion) IsFinal() bool {
	return o.kind == kindFinal
}

// IsLike returns the boolean payload for Pending and Final, and false for None.
func (o Opinion) IsLike() bool {
	switch o.kind {
	case kindFinal, kindPending:
		return o.like
	default:
		return false
	}
}

// Streak returns the consecutive-agreement counter. Meaningless for None/Final.
func (o Opinion) Streak() uint32 {
	return o.streak
}

func (o Opinion) String() string {
	switch o.kind {
	case kindFinal:
		return fmt.Sprintf("Final(%v)", o.like)
	case kindPending:
		return fmt.Sprintf("Pending(%v, %d)", o.like, o.streak)
	default:
		return "None"
	}
}

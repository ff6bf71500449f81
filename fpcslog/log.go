// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fpcslog wraps github.com/luxfi/log with the structured
// zap.Field helpers the round driver and opinion update pipeline log
// with, plus a no-op implementation for tests and headless runs.
package fpcslog

import (
	"fmt"

	luxlog "github.com/luxfi/log"
	"go.uber.org/zap"
)

// Logger is the structured logger the round driver (database.New) accepts.
type Logger = luxlog.Logger

// NewNoOp returns a logger that discards everything, for tests and
// callers that don't want round-by-round chatter.
func NewNoOp() Logger {
	return luxlog.NewNoOpLogger()
}

// RoundFields builds the structured fields a round-transition log line
// carries: the round number and the shared random drawn for it.
func RoundFields(round int, r uint32) []zap.Field {
	return []zap.Field{
		zap.Int("round", round),
		zap.Uint32("r", r),
	}
}

// TxFields builds the structured fields a per-transaction finalization
// log line carries.
func TxFields(tx fmt.Stringer, like bool) []zap.Field {
	return []zap.Field{
		zap.String("tx", tx.String()),
		zap.Bool("like", like),
	}
}

// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package fpcs re-exports the FPCS simulator's public surface: the round
// driver in database, the tunables in config, the node and conflict
// graph topologies in graph, and the node/opinion types in vision. Most
// callers only need this package; database, config, graph, vision,
// fpcsid, finalize, protocol/eta, fpcslog, and metrics remain importable
// directly for callers that need finer-grained access.
package fpcs

// Copyright (C) 2020-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package metrics exposes the round driver's Prometheus instrumentation:
// how many rounds have run, how many transactions have finalized, and
// the agreement-rate distribution at finalization time.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds the round driver's Prometheus collectors.
type Metrics struct {
	Registry prometheus.Registerer

	// Rounds counts completed calls to RunRound.
	Rounds prometheus.Counter
	// FinalizedTxs counts transactions that have reached global finality.
	FinalizedTxs prometheus.Counter
	// AgreementRate observes max(likes, H-likes)/H at each transaction's
	// finalization, per spec §4.F step 4 / §7 of SPEC_FULL.md.
	AgreementRate prometheus.Histogram
}

// New creates and registers the round driver's metrics against reg. A
// nil reg is valid and yields collectors that are simply never scraped.
func New(reg prometheus.Registerer) (*Metrics, error) {
	m := &Metrics{
		Registry: reg,
		Rounds: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fpcs",
			Name:      "rounds_total",
			Help:      "Number of rounds the round driver has run.",
		}),
		FinalizedTxs: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "fpcs",
			Name:      "finalized_txs_total",
			Help:      "Number of transactions that have reached global finality.",
		}),
		AgreementRate: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "fpcs",
			Name:      "agreement_rate",
			Help:      "max(likes, honest-likes)/honest observed at each transaction's finalization.",
			Buckets:   prometheus.LinearBuckets(0.5, 0.05, 11),
		}),
	}

	if reg == nil {
		return m, nil
	}
	for _, c := range []prometheus.Collector{m.Rounds, m.FinalizedTxs, m.AgreementRate} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

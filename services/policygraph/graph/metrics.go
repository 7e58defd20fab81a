// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package graph

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for graph construction.
var meter = otel.Meter("policytrace.graph")

var (
	buildLatency metric.Float64Histogram
	nodesBuilt   metric.Int64Counter
	edgesBuilt   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		buildLatency, err = meter.Float64Histogram(
			"graph_build_duration_seconds",
			metric.WithDescription("Duration of graph build operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		nodesBuilt, err = meter.Int64Counter(
			"graph_nodes_built_total",
			metric.WithDescription("Total nodes added across graph builds"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		edgesBuilt, err = meter.Int64Counter(
			"graph_edges_built_total",
			metric.WithDescription("Total edges added across graph builds"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordBuild records one completed build. Works as a no-op when no meter
// provider is installed.
func recordBuild(g *Graph, elapsed time.Duration) {
	if initMetrics() != nil {
		return
	}
	ctx := context.Background()
	buildLatency.Record(ctx, elapsed.Seconds())
	nodesBuilt.Add(ctx, int64(g.NumNodes()))
	edgesBuilt.Add(ctx, int64(g.NumEdges()))
}

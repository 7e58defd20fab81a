// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package analyzer

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Package-level meter for test source analysis.
var meter = otel.Meter("policytrace.analyzer")

var (
	parseLatency metric.Float64Histogram
	parseTotal   metric.Int64Counter

	metricsOnce sync.Once
	metricsErr  error
)

// initMetrics initializes the metrics. Safe to call multiple times.
func initMetrics() error {
	metricsOnce.Do(func() {
		var err error

		parseLatency, err = meter.Float64Histogram(
			"analyzer_parse_duration_seconds",
			metric.WithDescription("Duration of test source parse operations"),
			metric.WithUnit("s"),
		)
		if err != nil {
			metricsErr = err
			return
		}

		parseTotal, err = meter.Int64Counter(
			"analyzer_parse_total",
			metric.WithDescription("Total test source files parsed, by outcome"),
		)
		if err != nil {
			metricsErr = err
			return
		}
	})
	return metricsErr
}

// recordParse records one file parse. Metrics failures are ignored; the
// analyzer must keep working when no meter provider is installed.
func recordParse(ctx context.Context, file string, elapsed time.Duration, ok bool) {
	if initMetrics() != nil {
		return
	}
	outcome := "ok"
	if !ok {
		outcome = "parse_failure"
	}
	attrs := metric.WithAttributes(
		attribute.String("file", file),
		attribute.String("outcome", outcome),
	)
	parseTotal.Add(ctx, 1, attrs)
	parseLatency.Record(ctx, elapsed.Seconds(), attrs)
}

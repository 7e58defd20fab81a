// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policygraph

import (
	"time"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/graph"
)

// ServiceVersion is the policy graph service version.
const ServiceVersion = "0.1.0"

// ErrorResponse is the error payload for all endpoints.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// GraphResponse is the full-graph payload: the complete node and edge
// tables, the findings list, and summary stats.
type GraphResponse struct {
	Meta     graph.Meta        `json:"meta"`
	Nodes    []*graph.Node     `json:"nodes"`
	Edges    []graph.Edge      `json:"edges"`
	Stats    graph.Stats       `json:"stats"`
	Findings []finding.Finding `json:"findings"`
}

// FindingsResponse is the findings list with severity counts.
type FindingsResponse struct {
	Findings []finding.Finding `json:"findings"`
	Warnings int               `json:"warnings"`
	Errors   int               `json:"errors"`
}

// HealthResponse reports liveness.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service"`
	Version string `json:"version"`
}

// ReadyResponse reports whether the graph snapshot has been built.
type ReadyResponse struct {
	Ready   bool      `json:"ready"`
	BuiltAt time.Time `json:"built_at,omitempty"`
	Nodes   int       `json:"nodes,omitempty"`
	Edges   int       `json:"edges,omitempty"`
}

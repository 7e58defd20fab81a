// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package graph builds and serves the unified contract graph.
//
// Nodes come from three independently maintained sources of truth: the
// statute table, the contract's benefit sections, and the statically
// analyzed test suite. The builder reconciles them into one directed
// multigraph with four node kinds (statute, section, test, quirk) and
// three edge kinds (governs, verifies, affects).
//
// # Ownership Model
//
// The graph owns its nodes as value data. Once Build returns, the graph is
// self-contained: nothing in it points back at the registry, extractor, or
// analyzer that produced its inputs, and it can be serialized on its own.
//
// # Lifecycle
//
// A graph is built once and frozen before it is handed to anyone:
//  1. Build(BuildInput) adds nodes, resolves edges, records findings
//  2. Freeze() flips it read-only
//  3. Nodes(), Edges(), NodeDetail() serve any number of concurrent readers
//
// There is no unfreeze. New inputs mean a new graph.
package graph

import "errors"

// Sentinel errors for graph operations.
var (
	// ErrGraphFrozen is returned when attempting to modify a frozen graph.
	ErrGraphFrozen = errors.New("graph is frozen and cannot be modified")

	// ErrNodeNotFound is returned when an edge references a non-existent
	// node. The builder converts this into an unresolved-reference
	// finding; it only surfaces as an error on direct misuse of AddEdge.
	ErrNodeNotFound = errors.New("node not found")

	// ErrDuplicateNode is returned when adding a node whose (kind, id)
	// pair already exists.
	ErrDuplicateNode = errors.New("duplicate node key")

	// ErrInvalidNode is returned when adding a node with an empty ID or
	// unknown kind.
	ErrInvalidNode = errors.New("invalid node")
)

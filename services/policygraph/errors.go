// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package policygraph is the Contract Graph Engine service.
//
// It reconciles three independently maintained sources of truth (the
// regulatory statute table, the contract's benefit-section graph, and the
// statically analyzed verification test suite) into one immutable graph,
// and serves that graph read-only over HTTP.
//
// The pipeline runs once per process lifetime: load, extract, analyze (in
// parallel), build, validate, freeze. Operators who need a fresh graph
// restart the process.
package policygraph

import "errors"

// Sentinel errors for the policy graph service.
var (
	// ErrNotBuilt is returned by queries before Build has completed.
	ErrNotBuilt = errors.New("graph snapshot not built yet")

	// ErrAlreadyBuilt is returned when Build is called twice. The
	// snapshot lives for the whole process; restart to rebuild.
	ErrAlreadyBuilt = errors.New("graph snapshot already built")

	// ErrNoInputs is returned when all three input sources are missing.
	// Any single missing source degrades to findings; losing all three
	// leaves nothing to build.
	ErrNoInputs = errors.New("no usable input sources")

	// ErrUnknownNodeKind is returned for node lookups with a kind outside
	// statute/section/test/quirk.
	ErrUnknownNodeKind = errors.New("unknown node kind")
)

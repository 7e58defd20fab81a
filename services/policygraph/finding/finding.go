// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

// Package finding defines the non-fatal diagnostic type shared by every
// stage of the policy graph pipeline.
//
// A Finding is data, not an error: a statute record that fails to parse, a
// test file with broken syntax, or a section nobody tests all become
// findings in the served payload. Only the total absence of all inputs is a
// real error, and that is signalled through normal Go error returns.
//
// Each pipeline stage produces its own isolated finding list. Lists are
// concatenated after the parallel input phase joins, so no stage ever
// writes to a shared slice.
package finding

import "fmt"

// Severity classifies how seriously a finding should be treated.
type Severity string

const (
	// SeverityWarning marks advisory findings (e.g. a section with no
	// verifying test).
	SeverityWarning Severity = "warning"

	// SeverityError marks findings that indicate broken source data
	// (e.g. a statute with no citation, an unresolvable edge endpoint).
	SeverityError Severity = "error"
)

// Kind identifies the failure taxonomy bucket a finding belongs to.
type Kind string

const (
	// KindMalformedRecord is a single unparsable statute table entry.
	KindMalformedRecord Kind = "malformed_record"

	// KindDuplicateRecord is a statute table entry whose ID collides with
	// an earlier entry (last write wins).
	KindDuplicateRecord Kind = "duplicate_record"

	// KindParseFailure is a test source file that could not be parsed.
	KindParseFailure Kind = "parse_failure"

	// KindUnresolvedReference is an edge endpoint that matched no node.
	KindUnresolvedReference Kind = "unresolved_reference"

	// KindAmbiguousReference is an alias that matched more than one
	// section during reconciliation.
	KindAmbiguousReference Kind = "ambiguous_reference"

	// KindUnlinkedTest is a test class with no recognizable section link.
	KindUnlinkedTest Kind = "unlinked_test"

	// KindValidation covers post-build integrity checks.
	KindValidation Kind = "validation"
)

// Finding is a single non-fatal diagnostic.
//
// NodeKind/NodeID are optional; when set they reference the graph node the
// finding is about, using the same disjoint kind namespaces as the graph
// node table.
type Finding struct {
	Severity Severity `json:"severity"`
	Kind     Kind     `json:"kind"`
	Message  string   `json:"message"`
	NodeKind string   `json:"node_kind,omitempty"`
	NodeID   string   `json:"node_id,omitempty"`
}

// String renders the finding for logs and CLI output.
func (f Finding) String() string {
	if f.NodeID != "" {
		return fmt.Sprintf("[%s] %s (%s %s): %s", f.Severity, f.Kind, f.NodeKind, f.NodeID, f.Message)
	}
	return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Kind, f.Message)
}

// Warningf builds a warning finding with a formatted message.
func Warningf(kind Kind, format string, args ...any) Finding {
	return Finding{Severity: SeverityWarning, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Errorf builds an error finding with a formatted message.
func Errorf(kind Kind, format string, args ...any) Finding {
	return Finding{Severity: SeverityError, Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// WithNode returns a copy of the finding referencing the given node.
func (f Finding) WithNode(kind, id string) Finding {
	f.NodeKind = kind
	f.NodeID = id
	return f
}

// CountBySeverity returns the number of warnings and errors in the list.
func CountBySeverity(list []Finding) (warnings, errors int) {
	for _, f := range list {
		switch f.Severity {
		case SeverityError:
			errors++
		default:
			warnings++
		}
	}
	return warnings, errors
}

// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.
//
// NOTE: This work is subject to additional terms under AGPL v3 Section 7.
// See the NOTICE.txt file for details regarding AI system attribution.

package policy

import (
	"strings"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
)

// SectionNode is one extracted benefit section, as declared.
//
// Extraction produces facts about sections-as-declared only. The set of
// statutes governing a section is reconciliation output and lives on the
// graph node, never here.
type SectionNode struct {
	// ID derives deterministically from the section's position and name
	// in the contract tree: the path names joined with underscores.
	ID string `json:"id"`

	Label string `json:"label"`

	// QuirkIDs lists the quirks attached to this section, in declaration
	// order.
	QuirkIDs []string `json:"quirk_ids,omitempty"`

	// Depth is 0 for top-level sections, 1 for their children, and so on.
	Depth int `json:"depth"`
}

// QuirkNode is one extracted quirk.
type QuirkNode struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Risk        string `json:"risk,omitempty"`

	// AffectedServices are the service names the quirk declares, verbatim.
	AffectedServices []string `json:"affected_services,omitempty"`

	// DeclaredIn is the ID of the section the quirk was attached to, or
	// empty for plan-level network quirks.
	DeclaredIn string `json:"declared_in,omitempty"`
}

// ExtractResult is the ordered output of one extraction pass.
type ExtractResult struct {
	Sections []SectionNode
	Quirks   []QuirkNode
	Findings []finding.Finding
}

// Extract walks the contract and produces its section and quirk nodes.
//
// The walk is the Visitor in model.go, so extraction is structural: any
// element with a section shape becomes a SectionNode regardless of which
// benefit category it describes. Identifiers depend only on declaration
// order and names, so repeated runs over the same contract are
// byte-identical.
func Extract(c *Contract) ExtractResult {
	ex := &extractor{seenSections: make(map[string]bool), seenQuirks: make(map[string]bool)}
	// Walk only fails when a visitor returns an error, and extractor
	// callbacks never do: malformed shapes become findings instead.
	_ = Walk(c, ex)
	return ExtractResult{Sections: ex.sections, Quirks: ex.quirks, Findings: ex.findings}
}

type extractor struct {
	sections []SectionNode
	quirks   []QuirkNode
	findings []finding.Finding

	seenSections map[string]bool
	seenQuirks   map[string]bool
}

// VisitSection implements Visitor.
func (ex *extractor) VisitSection(path []string, s *Section) error {
	id := SectionID(path)
	if id == "" {
		ex.findings = append(ex.findings, finding.Errorf(finding.KindMalformedRecord,
			"contract section with empty name skipped"))
		return nil
	}
	if ex.seenSections[id] {
		ex.findings = append(ex.findings, finding.Warningf(finding.KindDuplicateRecord,
			"contract declares section %q more than once; keeping the first", id).
			WithNode("section", id))
		return nil
	}
	ex.seenSections[id] = true

	node := SectionNode{
		ID:    id,
		Label: s.DisplayLabel(),
		Depth: len(path) - 1,
	}
	for _, q := range s.Quirks {
		node.QuirkIDs = append(node.QuirkIDs, q.ID)
	}
	ex.sections = append(ex.sections, node)
	return nil
}

// VisitQuirk implements Visitor.
func (ex *extractor) VisitQuirk(path []string, q *Quirk) error {
	if ex.seenQuirks[q.ID] {
		ex.findings = append(ex.findings, finding.Warningf(finding.KindDuplicateRecord,
			"contract declares quirk %q more than once; keeping the first", q.ID).
			WithNode("quirk", q.ID))
		return nil
	}
	ex.seenQuirks[q.ID] = true

	ex.quirks = append(ex.quirks, QuirkNode{
		ID:               q.ID,
		Name:             q.Name,
		Description:      q.Description,
		Risk:             q.Risk,
		AffectedServices: append([]string(nil), q.AffectedServices...),
		DeclaredIn:       SectionID(path),
	})
	return nil
}

// VisitLeaf implements Visitor. Leaf values carry benefit data the graph
// does not reason about, so they are skipped.
func (ex *extractor) VisitLeaf(path []string, f *Field) error {
	return nil
}

// SectionID derives the canonical section identifier for a tree path.
//
// Top-level sections keep their declared name; nested sections join the
// path with underscores ("dental" → "dental_orthodontia"). Names are
// already snake_case by convention, but stray spaces and dashes are folded
// so the derivation cannot produce two spellings of the same identifier.
func SectionID(path []string) string {
	if len(path) == 0 {
		return ""
	}
	parts := make([]string, 0, len(path))
	for _, p := range path {
		p = strings.ToLower(strings.TrimSpace(p))
		p = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(p)
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "_")
}

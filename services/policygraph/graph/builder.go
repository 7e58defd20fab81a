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
	"sort"
	"strings"
	"time"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/analyzer"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/finding"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/policy"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/statute"
)

// Mappings are the declared reconciliation tables. They are configuration,
// not heuristics: the builder never guesses a service→section or alias
// correspondence that is not written down here.
type Mappings struct {
	// ServiceSections maps a quirk's affected-service name to the section
	// that service bills under.
	ServiceSections map[string]string `yaml:"service_sections"`

	// SectionAliases maps alternative benefit-area spellings to canonical
	// section identifiers. Both sides are normalized before matching.
	SectionAliases map[string]string `yaml:"section_aliases"`

	// SensitiveSections lists section identifiers that regulatory
	// language implies must have a governing statute. Used by Validate.
	SensitiveSections []string `yaml:"sensitive_sections"`
}

// BuildInput is everything the builder consumes. The three node streams
// have no ordering contract between them; the builder imposes its own
// order, so permuting how the streams were produced or delivered cannot
// change the output.
type BuildInput struct {
	Meta     Meta
	Statutes []*statute.Statute
	Sections []policy.SectionNode
	Quirks   []policy.QuirkNode
	Tests    []analyzer.TestUnit
	Mappings Mappings
}

// Build merges the three node streams into one frozen graph.
//
// Node order is fixed: statutes (table order), sections (extraction
// order), tests (file then declaration order), quirks. Edges are resolved
// only after every node exists. Edge attempts whose target cannot be
// matched are logged on the graph and reported as findings, never
// silently dropped and never fatal.
func Build(in BuildInput) (*Graph, []finding.Finding) {
	start := time.Now()
	g := NewGraph(in.Meta)
	var findings []finding.Finding

	for _, st := range in.Statutes {
		// Duplicate IDs were already collapsed by the loader; a collision
		// here would be a bug, so the error is not worth threading out.
		_ = g.AddNode(&Node{Kind: KindStatute, ID: st.ID, Label: st.Name, Statute: st})
	}
	for i := range in.Sections {
		sec := in.Sections[i]
		_ = g.AddNode(&Node{Kind: KindSection, ID: sec.ID, Label: sec.Label, Section: &sec})
	}
	for i := range in.Tests {
		tu := in.Tests[i]
		_ = g.AddNode(&Node{Kind: KindTest, ID: tu.ID, Label: strings.TrimPrefix(tu.Class, "Test"), Test: &tu})
	}
	for i := range in.Quirks {
		q := in.Quirks[i]
		_ = g.AddNode(&Node{Kind: KindQuirk, ID: q.ID, Label: q.Name, Quirk: &q})
	}

	res := newResolver(in.Sections, in.Mappings.SectionAliases)

	// governs: statute → declared benefit areas.
	for _, st := range in.Statutes {
		from := NodeKey{Kind: KindStatute, ID: st.ID}
		for _, area := range st.Governs {
			findings = append(findings, linkSection(g, res, from, area, EdgeGoverns)...)
		}
	}

	// verifies: test class → hinted sections.
	for i := range in.Tests {
		tu := in.Tests[i]
		from := NodeKey{Kind: KindTest, ID: tu.ID}
		for _, hint := range tu.SectionHints {
			findings = append(findings, linkSection(g, res, from, hint, EdgeVerifies)...)
		}
	}

	// affects: quirk → declaring section plus mapped services.
	for i := range in.Quirks {
		q := in.Quirks[i]
		from := NodeKey{Kind: KindQuirk, ID: q.ID}
		seen := make(map[string]bool)
		targets := make([]string, 0, len(q.AffectedServices)+1)
		if q.DeclaredIn != "" && !seen[q.DeclaredIn] {
			seen[q.DeclaredIn] = true
			targets = append(targets, q.DeclaredIn)
		}
		for _, svc := range q.AffectedServices {
			target, ok := in.Mappings.ServiceSections[svc]
			if !ok {
				// An unmapped service is a declared-data gap, not a
				// resolution failure: the quirk names a service the
				// mapping table has never heard of.
				findings = append(findings, finding.Warningf(finding.KindUnresolvedReference,
					"quirk %s affects service %q which has no section mapping", q.ID, svc).
					WithNode(string(KindQuirk), q.ID))
				continue
			}
			if !seen[target] {
				seen[target] = true
				targets = append(targets, target)
			}
		}
		for _, target := range targets {
			findings = append(findings, linkSection(g, res, from, target, EdgeAffects)...)
		}
	}

	g.Freeze()
	recordBuild(g, time.Since(start))
	return g, findings
}

// linkSection resolves ref to a section node and adds one edge. Failures
// become findings and a logged unresolved attempt.
func linkSection(g *Graph, res *resolver, from NodeKey, ref string, kind EdgeKind) []finding.Finding {
	matches := res.resolve(ref)
	switch len(matches) {
	case 1:
		_ = g.AddEdge(from, NodeKey{Kind: KindSection, ID: matches[0]}, kind)
		return nil
	case 0:
		g.recordUnresolved(UnresolvedRef{From: from, TargetRef: ref, Kind: kind, Reason: "unresolved"})
		return []finding.Finding{finding.Warningf(finding.KindUnresolvedReference,
			"%s edge from %s: no section matches %q", kind, from, ref).
			WithNode(string(from.Kind), from.ID)}
	default:
		// More than one section answers to this alias. Guessing a winner
		// would silently misattribute regulatory coverage, so no edge is
		// created.
		g.recordUnresolved(UnresolvedRef{From: from, TargetRef: ref, Kind: kind, Reason: "ambiguous"})
		return []finding.Finding{finding.Warningf(finding.KindAmbiguousReference,
			"%s edge from %s: %q matches %d sections (%s)", kind, from, ref,
			len(matches), strings.Join(matches, ", ")).
			WithNode(string(from.Kind), from.ID)}
	}
}

// resolver performs case- and format-tolerant matching of benefit-area
// references against canonical section identifiers.
type resolver struct {
	// byNorm maps a normalized spelling to the canonical section IDs it
	// could mean, in extraction order.
	byNorm map[string][]string
}

func newResolver(sections []policy.SectionNode, aliases map[string]string) *resolver {
	r := &resolver{byNorm: make(map[string][]string)}
	canonical := make(map[string]bool, len(sections))
	for _, sec := range sections {
		canonical[sec.ID] = true
		r.add(sec.ID, sec.ID)
	}
	// Alias insertion order decides candidate order when spellings
	// collide, so it cannot follow map iteration order.
	names := make([]string, 0, len(aliases))
	for alias := range aliases {
		names = append(names, alias)
	}
	sort.Strings(names)
	for _, alias := range names {
		if target := aliases[alias]; canonical[target] {
			r.add(alias, target)
		}
	}
	return r
}

func (r *resolver) add(spelling, canonical string) {
	norm := Normalize(spelling)
	for _, existing := range r.byNorm[norm] {
		if existing == canonical {
			return
		}
	}
	r.byNorm[norm] = append(r.byNorm[norm], canonical)
}

// resolve returns the canonical section IDs a reference could mean.
func (r *resolver) resolve(ref string) []string {
	return r.byNorm[Normalize(ref)]
}

// Normalize folds case and separator conventions so that "Mental-Health",
// "mental health", and "mental_health" all compare equal. Applied to both
// sides of every match, per the reconciliation contract.
func Normalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_", ".", "_").Replace(s)
}

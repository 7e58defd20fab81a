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
	"fmt"

	"github.com/AleutianAI/PolicyTrace/services/policygraph/analyzer"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/policy"
	"github.com/AleutianAI/PolicyTrace/services/policygraph/statute"
)

// NodeKind identifies which source of truth a node came from. Kinds are
// disjoint namespaces: a statute "ACA" and a section "ACA" never collide.
type NodeKind string

const (
	KindStatute NodeKind = "statute"
	KindSection NodeKind = "section"
	KindTest    NodeKind = "test"
	KindQuirk   NodeKind = "quirk"
)

// ValidNodeKind reports whether k is one of the four node kinds.
func ValidNodeKind(k NodeKind) bool {
	switch k {
	case KindStatute, KindSection, KindTest, KindQuirk:
		return true
	}
	return false
}

// EdgeKind is the relationship a directed edge asserts.
type EdgeKind string

const (
	// EdgeGoverns is statute→section: the statute regulates that benefit
	// area.
	EdgeGoverns EdgeKind = "governs"

	// EdgeVerifies is test→section: the test class exercises that benefit
	// area.
	EdgeVerifies EdgeKind = "verifies"

	// EdgeAffects is quirk→section: the documented edge case impacts that
	// benefit area.
	EdgeAffects EdgeKind = "affects"
)

// NodeKey is the (kind, identifier) pair that keys the node table.
type NodeKey struct {
	Kind NodeKind `json:"kind"`
	ID   string   `json:"id"`
}

// String renders the key as "kind/id".
func (k NodeKey) String() string { return fmt.Sprintf("%s/%s", k.Kind, k.ID) }

// Node is one entry in the node table. Exactly one of the payload fields
// is set, matching Kind.
type Node struct {
	Kind  NodeKind `json:"kind"`
	ID    string   `json:"id"`
	Label string   `json:"label"`

	Statute *statute.Statute    `json:"statute,omitempty"`
	Section *policy.SectionNode `json:"section,omitempty"`
	Quirk   *policy.QuirkNode   `json:"quirk,omitempty"`
	Test    *analyzer.TestUnit  `json:"test,omitempty"`
}

// Key returns the node's table key.
func (n *Node) Key() NodeKey { return NodeKey{Kind: n.Kind, ID: n.ID} }

// Edge is one (source, destination, kind) triple. Both endpoints are
// guaranteed to exist in the node table; attempts that could not be
// resolved are recorded on the graph as UnresolvedRefs instead.
type Edge struct {
	From NodeKey  `json:"from"`
	To   NodeKey  `json:"to"`
	Kind EdgeKind `json:"kind"`
}

// UnresolvedRef is a logged edge attempt whose target could not be matched
// to a node. The edge is omitted from the edge table; the validator
// escalates every recorded attempt to an error finding.
type UnresolvedRef struct {
	From      NodeKey  `json:"from"`
	TargetRef string   `json:"target_ref"`
	Kind      EdgeKind `json:"kind"`

	// Reason is "unresolved" when nothing matched, "ambiguous" when an
	// alias matched more than one section.
	Reason string `json:"reason"`
}

// Meta carries contract header data through to the served payload.
type Meta struct {
	PlanName      string `json:"plan_name,omitempty"`
	PolicyNumber  string `json:"policy_number,omitempty"`
	PlanType      string `json:"plan_type,omitempty"`
	SBCVersion    string `json:"sbc_version,omitempty"`
	PlanYearStart string `json:"plan_year_start,omitempty"`
	PlanYearEnd   string `json:"plan_year_end,omitempty"`
}

// Stats is the summary block on the full-graph payload.
type Stats struct {
	Statutes    int `json:"statutes"`
	Sections    int `json:"sections"`
	TestClasses int `json:"test_classes"`
	TotalTests  int `json:"total_tests"`
	Quirks      int `json:"quirks"`
	Edges       int `json:"edges"`
}

// Graph is the reconciled contract graph.
//
// Thread Safety: not safe for concurrent use while building. After
// Freeze() it is immutable and safe for any number of concurrent readers;
// the read path takes no locks.
type Graph struct {
	frozen bool

	nodes map[NodeKey]*Node
	order []NodeKey
	edges []Edge

	outgoing map[NodeKey][]int
	incoming map[NodeKey][]int

	unresolved []UnresolvedRef
	meta       Meta
}

// NewGraph creates an empty graph in the building state.
func NewGraph(meta Meta) *Graph {
	return &Graph{
		nodes:    make(map[NodeKey]*Node),
		outgoing: make(map[NodeKey][]int),
		incoming: make(map[NodeKey][]int),
		meta:     meta,
	}
}

// AddNode inserts a node into the table.
func (g *Graph) AddNode(n *Node) error {
	if g.frozen {
		return ErrGraphFrozen
	}
	if n == nil || n.ID == "" || !ValidNodeKind(n.Kind) {
		return ErrInvalidNode
	}
	key := n.Key()
	if _, exists := g.nodes[key]; exists {
		return fmt.Errorf("%w: %s", ErrDuplicateNode, key)
	}
	g.nodes[key] = n
	g.order = append(g.order, key)
	return nil
}

// AddEdge inserts an edge whose endpoints must already exist. Identical
// triples are collapsed to one edge.
func (g *Graph) AddEdge(from, to NodeKey, kind EdgeKind) error {
	if g.frozen {
		return ErrGraphFrozen
	}
	if _, ok := g.nodes[from]; !ok {
		return fmt.Errorf("%w: edge source %s", ErrNodeNotFound, from)
	}
	if _, ok := g.nodes[to]; !ok {
		return fmt.Errorf("%w: edge target %s", ErrNodeNotFound, to)
	}
	for _, e := range g.edges {
		if e.From == from && e.To == to && e.Kind == kind {
			return nil
		}
	}
	idx := len(g.edges)
	g.edges = append(g.edges, Edge{From: from, To: to, Kind: kind})
	g.outgoing[from] = append(g.outgoing[from], idx)
	g.incoming[to] = append(g.incoming[to], idx)
	return nil
}

// recordUnresolved logs an edge attempt that could not be completed.
func (g *Graph) recordUnresolved(ref UnresolvedRef) {
	g.unresolved = append(g.unresolved, ref)
}

// Freeze flips the graph read-only. Idempotent.
func (g *Graph) Freeze() { g.frozen = true }

// Frozen reports whether the graph is read-only.
func (g *Graph) Frozen() bool { return g.frozen }

// GetNode looks up one node by key.
func (g *Graph) GetNode(key NodeKey) (*Node, bool) {
	n, ok := g.nodes[key]
	return n, ok
}

// Nodes returns all nodes in insertion order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.order))
	for _, key := range g.order {
		out = append(out, g.nodes[key])
	}
	return out
}

// Edges returns all edges in insertion order.
func (g *Graph) Edges() []Edge {
	out := make([]Edge, len(g.edges))
	copy(out, g.edges)
	return out
}

// Unresolved returns the logged edge attempts that produced no edge.
func (g *Graph) Unresolved() []UnresolvedRef {
	out := make([]UnresolvedRef, len(g.unresolved))
	copy(out, g.unresolved)
	return out
}

// Meta returns the contract header data.
func (g *Graph) Meta() Meta { return g.meta }

// NumNodes returns the node count.
func (g *Graph) NumNodes() int { return len(g.order) }

// NumEdges returns the edge count.
func (g *Graph) NumEdges() int { return len(g.edges) }

// Stats computes the summary block.
func (g *Graph) Stats() Stats {
	var s Stats
	for _, key := range g.order {
		switch key.Kind {
		case KindStatute:
			s.Statutes++
		case KindSection:
			s.Sections++
		case KindTest:
			s.TestClasses++
			if n := g.nodes[key]; n.Test != nil {
				s.TotalTests += len(n.Test.Methods)
			}
		case KindQuirk:
			s.Quirks++
		}
	}
	s.Edges = len(g.edges)
	return s
}
